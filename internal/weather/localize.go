package weather

import (
	"fmt"

	"golang.org/x/text/language"
)

// Tier is a rung of a description ladder.
type Tier int

const (
	TierHigh Tier = iota
	TierModerate
	TierLow
)

// catalog holds the display strings of one language.
type catalog struct {
	// conditions maps canonical condition identifiers to labels, per family.
	conditions map[Dimension]map[string]string
	dimensions map[Dimension]string
	mostLikely string
	ladders    map[Dimension][3]string
}

var english = catalog{
	dimensions: map[Dimension]string{
		DimensionTemperature:   "Temperature",
		DimensionPrecipitation: "Precipitation",
		DimensionWindSpeed:     "Wind",
		DimensionAirQuality:    "Air Quality",
		DimensionHumidity:      "Humidity",
		DimensionVisibility:    "Visibility",
	},
	mostLikely: "%s is the most likely condition",
	ladders: map[Dimension][3]string{
		DimensionTemperature: {
			"High probability of temperatures in the expected range",
			"Moderate probability of temperatures in the expected range",
			"Low probability of temperatures in the expected range",
		},
		DimensionPrecipitation: {"High chance of precipitation", "Moderate chance of rain", "Low probability of precipitation"},
		DimensionWindSpeed:     {"Strong winds expected", "Moderate winds", "Light or calm winds"},
		DimensionAirQuality:    {"Excellent air quality expected", "Good air quality", "Air quality may be moderate"},
		DimensionHumidity:      {"High relative humidity", "Moderate humidity", "Low humidity"},
		DimensionVisibility:    {"Excellent visibility", "Good visibility", "Visibility may be reduced"},
	},
}

var portuguese = catalog{
	conditions: map[Dimension]map[string]string{
		DimensionPrecipitation: {
			"Dry Day":       "Dia Seco",
			"Heavy Rain":    "Chuva Intensa",
			"Light Rain":    "Chuva Leve",
			"Moderate Rain": "Chuva Moderada",
		},
		DimensionHumidity: {
			"High Humidity":      "Umidade Alta",
			"Low Humidity":       "Umidade Baixa",
			"Normal Humidity":    "Umidade Normal",
			"Very High Humidity": "Umidade Muito Alta",
		},
		DimensionAirQuality: {
			"Good":     "Bom",
			"Moderate": "Moderado",
		},
	},
	dimensions: map[Dimension]string{
		DimensionTemperature:   "Temperatura",
		DimensionPrecipitation: "Precipitação",
		DimensionWindSpeed:     "Vento",
		DimensionAirQuality:    "Qualidade do Ar",
		DimensionHumidity:      "Umidade",
		DimensionVisibility:    "Visibilidade",
	},
	mostLikely: "%s é a condição mais provável",
	ladders: map[Dimension][3]string{
		DimensionTemperature: {
			"Alta probabilidade de temperaturas na faixa prevista",
			"Probabilidade moderada de temperaturas na faixa prevista",
			"Baixa probabilidade de temperaturas na faixa prevista",
		},
		DimensionPrecipitation: {"Alta chance de precipitação", "Possibilidade moderada de chuva", "Baixa probabilidade de precipitação"},
		DimensionWindSpeed:     {"Ventos fortes esperados", "Ventos moderados", "Ventos fracos ou calmos"},
		DimensionAirQuality:    {"Excelente qualidade do ar esperada", "Boa qualidade do ar", "Qualidade do ar pode ser moderada"},
		DimensionHumidity:      {"Alta umidade relativa", "Umidade moderada", "Baixa umidade"},
		DimensionVisibility:    {"Excelente visibilidade", "Boa visibilidade", "Visibilidade pode ser reduzida"},
	},
}

var (
	supportedTags = []language.Tag{language.BrazilianPortuguese, language.English}
	catalogs      = []catalog{portuguese, english}
	tagMatcher    = language.NewMatcher(supportedTags)
)

// Localizer renders condition labels and descriptions for one language.
type Localizer struct {
	tag language.Tag
	cat catalog
}

// NewLocalizer returns a Localizer for the closest supported language to tag.
// Brazilian Portuguese is preferred when nothing matches.
func NewLocalizer(tag language.Tag) *Localizer {
	_, idx, conf := tagMatcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	return &Localizer{tag: supportedTags[idx], cat: catalogs[idx]}
}

// ParseLocalizer parses a BCP 47 locale string such as "pt-BR" or "en".
func ParseLocalizer(locale string) (*Localizer, error) {
	if locale == "" {
		return NewLocalizer(language.BrazilianPortuguese), nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return NewLocalizer(tag), nil
}

// Tag returns the language the Localizer renders.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Condition returns the display label of a condition identifier within family.
// Unknown identifiers are returned unchanged.
func (l *Localizer) Condition(family Dimension, id string) string {
	if label, ok := l.cat.conditions[family][id]; ok {
		return label
	}
	return id
}

// Dimension returns the chart label of a dimension.
func (l *Localizer) Dimension(d Dimension) string {
	if label, ok := l.cat.dimensions[d]; ok {
		return label
	}
	return string(d)
}

// MostLikely renders the "most likely condition" sentence for a label.
func (l *Localizer) MostLikely(label string) string {
	return fmt.Sprintf(l.cat.mostLikely, label)
}

// Ladder returns the qualitative phrase of a dimension's description tier.
func (l *Localizer) Ladder(d Dimension, t Tier) string {
	phrases, ok := l.cat.ladders[d]
	if !ok || t < TierHigh || t > TierLow {
		return ""
	}
	return phrases[t]
}
