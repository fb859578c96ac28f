package weather

// Merge overlays live metrics on a synthetic record. Each LIVE metric replaces only
// its own dimension; every other dimension keeps its synthetic value. Metrics that
// are not LIVE are ignored.
func Merge(synthetic WeatherRecord, live ...LiveMetric) WeatherRecord {
	merged := synthetic
	for _, lm := range live {
		if lm.Metric.Origin != OriginLive {
			continue
		}
		merged = merged.With(lm.Dimension, lm.Metric)
	}
	return merged
}

// ChartPoint is one bar of the probability chart.
type ChartPoint struct {
	Dimension   Dimension `json:"dimension"`
	Metric      string    `json:"metric"`
	Probability int       `json:"probability"`
	Origin      Origin    `json:"origin"`
}

// ProbabilityChart projects a record onto chart rows in display order.
func ProbabilityChart(rec WeatherRecord, loc *Localizer) []ChartPoint {
	points := make([]ChartPoint, 0, len(Dimensions))
	for _, d := range Dimensions {
		m := rec.Metric(d)
		points = append(points, ChartPoint{
			Dimension:   d,
			Metric:      loc.Dimension(d),
			Probability: m.Probability,
			Origin:      m.Origin,
		})
	}
	return points
}
