package weather

import (
	"regexp"
)

// NotAvailable is the display value used when a threshold cannot be parsed.
const NotAvailable = "N/A"

// Unit describes how a metric family writes its threshold values.
type Unit struct {
	Symbol string
	// Spaced units are written "10 mm" and ranges "5 - 10 mm"; unspaced units are
	// written "10°C" and ranges "5°C - 10°C".
	Spaced bool

	matchers []thresholdMatcher
}

var (
	UnitCelsius       = newUnit("°C", false)
	UnitMillimetre    = newUnit("mm", true)
	UnitConcentration = newUnit("kg/kg", true)
)

// UnitFor returns the threshold unit of a live metric family.
func UnitFor(d Dimension) (Unit, bool) {
	switch d {
	case DimensionTemperature:
		return UnitCelsius, true
	case DimensionPrecipitation:
		return UnitMillimetre, true
	case DimensionHumidity:
		return UnitConcentration, true
	default:
		return Unit{}, false
	}
}

// thresholdMatcher returns the display string for text, or false when it does not apply.
type thresholdMatcher func(text string) (string, bool)

const number = `(-?\d+(?:\.\d+)?)`

func newUnit(symbol string, spaced bool) Unit {
	u := Unit{Symbol: symbol, Spaced: spaced}
	sym := regexp.QuoteMeta(symbol)

	// The lower bound of a "between" may omit the unit: "between 0.002 and 0.004 kg/kg".
	between := regexp.MustCompile(`between\s+` + number + `\s*(?:` + sym + `)?\s+and\s+` + number + `\s*` + sym)
	below := regexp.MustCompile(`<\s*` + number + `\s*` + sym)
	above := regexp.MustCompile(`>\s*` + number + `\s*` + sym)

	u.matchers = []thresholdMatcher{
		func(text string) (string, bool) {
			m := between.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return u.rangeOf(m[1], m[2]), true
		},
		func(text string) (string, bool) {
			m := below.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return "< " + u.value(m[1]), true
		},
		func(text string) (string, bool) {
			m := above.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return "> " + u.value(m[1]), true
		},
	}
	return u
}

func (u Unit) value(v string) string {
	if u.Spaced {
		return v + " " + u.Symbol
	}
	return v + u.Symbol
}

func (u Unit) rangeOf(lo, hi string) string {
	if u.Spaced {
		return lo + " - " + hi + " " + u.Symbol
	}
	return u.value(lo) + " - " + u.value(hi)
}

// ParseThreshold extracts a display range from a free-text threshold description.
// Matchers are tried in order (between, below, above); the first match wins and
// NotAvailable is returned when none applies.
func ParseThreshold(text string, unit Unit) string {
	for _, match := range unit.matchers {
		if out, ok := match(text); ok {
			return out
		}
	}
	return NotAvailable
}
