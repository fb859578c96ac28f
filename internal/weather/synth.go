package weather

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// profile is the synthesis configuration of one dimension: the base probability is
// drawn uniformly from [base, base+spread] and the description tier is chosen by
// comparing it against the high and moderate cut points.
type profile struct {
	base, spread   float64
	high, moderate float64
}

func (p profile) tier(v float64) Tier {
	switch {
	case v > p.high:
		return TierHigh
	case v > p.moderate:
		return TierModerate
	default:
		return TierLow
	}
}

var profiles = map[Dimension]profile{
	DimensionTemperature:   {base: 65, spread: 30, high: 70, moderate: 50},
	DimensionPrecipitation: {base: 40, spread: 40, high: 60, moderate: 30},
	DimensionWindSpeed:     {base: 50, spread: 35, high: 70, moderate: 40},
	DimensionAirQuality:    {base: 70, spread: 25, high: 80, moderate: 60},
	DimensionHumidity:      {base: 55, spread: 35, high: 70, moderate: 40},
	DimensionVisibility:    {base: 75, spread: 20, high: 80, moderate: 60},
}

const (
	airQualityGood     = "Good"
	airQualityModerate = "Moderate"
)

// Generator synthesizes plausible weather records for dimensions without live data.
// Values are biased by latitude and season. Output is only reproducible with a
// seeded source.
type Generator struct {
	loc *Localizer
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing from the global random source. It is safe
// for concurrent use.
func NewGenerator(loc *Localizer) *Generator {
	return &Generator{loc: loc}
}

// NewSeededGenerator returns a Generator drawing from src. The returned Generator is
// not safe for concurrent use.
func NewSeededGenerator(loc *Localizer, src rand.Source) *Generator {
	return &Generator{loc: loc, rng: rand.New(src)}
}

func (g *Generator) sample() float64 {
	if g.rng == nil {
		return rand.Float64()
	}
	return g.rng.Float64()
}

// LatitudeFactor is 0 at the equator and 1 at the poles.
func LatitudeFactor(lat float64) float64 {
	return math.Abs(lat) / 90
}

// SeasonFactor is a coarse seasonal position in [-1, 1] for a zero-based month index.
func SeasonFactor(month int) float64 {
	return math.Sin(float64(month) / 12 * 2 * math.Pi)
}

// monthIndex returns the zero-based month of a calendar date, or 0 when it does not parse.
func monthIndex(date string) int {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0
	}
	return int(t.Month()) - 1
}

// Generate returns a full record with every dimension marked SYNTHETIC.
func (g *Generator) Generate(loc Location, dr DateRange) WeatherRecord {
	lf := LatitudeFactor(loc.Latitude)
	sf := SeasonFactor(monthIndex(dr.StartDate))

	var rec WeatherRecord
	for _, d := range Dimensions {
		p := profiles[d]
		base := p.base + g.sample()*p.spread
		rec = rec.With(d, NormalizedMetric{
			Probability:  clampPercent(base),
			DisplayRange: g.display(d, lf, sf),
			Description:  g.loc.Ladder(d, p.tier(base)),
			Origin:       OriginSynthetic,
		})
	}
	return rec
}

func (g *Generator) display(d Dimension, lf, sf float64) string {
	switch d {
	case DimensionTemperature:
		lo := round(20 - lf*10 + sf*8)
		hi := round(28 - lf*8 + sf*10)
		return fmt.Sprintf("%d°C - %d°C", lo, hi)
	case DimensionPrecipitation:
		lo, hi := ordered(round(g.sample()*25), round(15+g.sample()*35))
		return fmt.Sprintf("%dmm - %dmm", lo, hi)
	case DimensionWindSpeed:
		lo := round(5 + g.sample()*15)
		hi := round(20 + g.sample()*25)
		return fmt.Sprintf("%dkm/h - %dkm/h", lo, hi)
	case DimensionAirQuality:
		return g.loc.Condition(DimensionAirQuality, g.airQuality())
	case DimensionHumidity:
		lo := clampPercent(45 + g.sample()*35 - lf*10 + sf*5)
		hi := clampPercent(70 + g.sample()*25 - lf*5 + sf*5)
		lo, hi = ordered(lo, hi)
		return fmt.Sprintf("%d%% - %d%%", lo, hi)
	case DimensionVisibility:
		lo := round(8 + g.sample()*7)
		hi := round(15 + g.sample()*10)
		return fmt.Sprintf("%dkm - %dkm", lo, hi)
	default:
		return NotAvailable
	}
}

func (g *Generator) airQuality() string {
	if g.sample() > 0.7 {
		return airQualityModerate
	}
	return airQualityGood
}

// Daily returns one forecast row per calendar day of dr. An invalid range yields no rows.
func (g *Generator) Daily(loc Location, dr DateRange) []DailyForecast {
	if err := dr.Validate(); err != nil {
		return nil
	}
	start, end, _ := dr.Bounds()
	lf := LatitudeFactor(loc.Latitude)

	var rows []DailyForecast
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		sf := SeasonFactor(int(day.Month()) - 1)
		mid := (20 - lf*10 + sf*8 + 28 - lf*8 + sf*10) / 2
		rows = append(rows, DailyForecast{
			Date:          day.Format(DateLayout),
			Temperature:   round(mid + (g.sample()-0.5)*6),
			Precipitation: round(g.sample() * 25),
			WindSpeed:     round(5 + g.sample()*20),
			Humidity:      clampPercent(55 + g.sample()*30 - lf*10 + sf*5),
			AirQuality:    g.airQuality(),
		})
	}
	return rows
}

func round(v float64) int {
	return int(math.Round(v))
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
