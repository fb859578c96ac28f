package weather

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedFamily is returned when a payload is offered for a dimension
	// the upstream service does not report.
	ErrUnsupportedFamily = errors.New("unsupported metric family")
	// ErrNoConditions is returned for a payload without any condition.
	ErrNoConditions = errors.New("payload has no conditions")
)

// LiveMetric is a converted live metric tagged with its dimension.
type LiveMetric struct {
	Dimension Dimension
	Metric    NormalizedMetric
}

// ConvertMetric turns one upstream payload into a LIVE NormalizedMetric.
//
// The probability and display range come from the locally selected most probable
// condition. The description names the condition upstream declared as most likely,
// which may differ.
func ConvertMetric(family Dimension, payload RawMetricPayload, loc *Localizer) (NormalizedMetric, error) {
	unit, ok := UnitFor(family)
	if !ok {
		return NormalizedMetric{}, fmt.Errorf("%w: %s", ErrUnsupportedFamily, family)
	}
	selected, ok := SelectMostLikely(payload.Conditions)
	if !ok {
		return NormalizedMetric{}, fmt.Errorf("convert %s: %w", family, ErrNoConditions)
	}

	label := loc.Condition(family, payload.MostLikelyCondition)
	conditions := make(Conditions, len(payload.Conditions))
	copy(conditions, payload.Conditions)

	return NormalizedMetric{
		Probability:         clampPercent(ParseProbability(selected.Entry.Probability)),
		DisplayRange:        ParseThreshold(selected.Entry.Threshold, unit),
		Description:         loc.MostLikely(label),
		MostLikelyCondition: payload.MostLikelyCondition,
		SelectedCondition:   selected.Name,
		SourceConditions:    conditions,
		Origin:              OriginLive,
		RawSourceLabel:      payload.SourceLabel,
	}, nil
}

// ConvertTemperature converts a temperature payload.
func ConvertTemperature(p RawMetricPayload, loc *Localizer) (NormalizedMetric, error) {
	return ConvertMetric(DimensionTemperature, p, loc)
}

// ConvertPrecipitation converts a precipitation payload.
func ConvertPrecipitation(p RawMetricPayload, loc *Localizer) (NormalizedMetric, error) {
	return ConvertMetric(DimensionPrecipitation, p, loc)
}

// ConvertHumidity converts a humidity payload.
func ConvertHumidity(p RawMetricPayload, loc *Localizer) (NormalizedMetric, error) {
	return ConvertMetric(DimensionHumidity, p, loc)
}

func clampPercent(v float64) int {
	n := int(math.Round(v))
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}
