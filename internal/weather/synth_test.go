package weather

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func seededGenerator(seed uint64) *Generator {
	return NewSeededGenerator(NewLocalizer(language.BrazilianPortuguese), rand.NewPCG(seed, seed+1))
}

func TestGenerate_AllDimensionsPopulated(t *testing.T) {
	locations := []Location{
		{Name: "Uberlândia", Latitude: -18.92, Longitude: -48.28},
		{Name: "Equator", Latitude: 0, Longitude: 0},
		{Name: "North Pole", Latitude: 90, Longitude: 0},
		{Name: "South Pole", Latitude: -90, Longitude: 180},
	}
	ranges := []DateRange{
		{StartDate: "2025-01-15", EndDate: "2025-01-15"},
		{StartDate: "2025-06-01", EndDate: "2025-06-30"},
		{StartDate: "2025-12-31", EndDate: "2025-12-31"},
	}

	g := seededGenerator(42)
	for _, loc := range locations {
		for _, dr := range ranges {
			for i := 0; i < 20; i++ {
				rec := g.Generate(loc, dr)
				for _, d := range Dimensions {
					m := rec.Metric(d)
					assert.GreaterOrEqual(t, m.Probability, 0, d)
					assert.LessOrEqual(t, m.Probability, 100, d)
					assert.NotEmpty(t, m.DisplayRange, d)
					assert.NotEqual(t, NotAvailable, m.DisplayRange, d)
					assert.NotEmpty(t, m.Description, d)
					assert.Equal(t, OriginSynthetic, m.Origin, d)
				}
			}
		}
	}
}

func TestGenerate_ProbabilityWithinProfile(t *testing.T) {
	g := seededGenerator(7)
	loc := Location{Latitude: -23.55, Longitude: -46.63}
	dr := DateRange{StartDate: "2025-03-10", EndDate: "2025-03-10"}

	for i := 0; i < 50; i++ {
		rec := g.Generate(loc, dr)
		for _, d := range Dimensions {
			p := profiles[d]
			got := rec.Metric(d).Probability
			assert.GreaterOrEqual(t, got, int(p.base), d)
			assert.LessOrEqual(t, got, int(p.base+p.spread), d)
		}
	}
}

func TestGenerate_SameSeedSameRecord(t *testing.T) {
	loc := Location{Latitude: 10, Longitude: 10}
	dr := DateRange{StartDate: "2025-06-01", EndDate: "2025-06-01"}
	assert.Equal(t, seededGenerator(3).Generate(loc, dr), seededGenerator(3).Generate(loc, dr))
}

func TestGenerate_AirQualityIsLocalized(t *testing.T) {
	g := seededGenerator(11)
	rec := g.Generate(Location{}, DateRange{StartDate: "2025-06-01", EndDate: "2025-06-01"})
	assert.Contains(t, []string{"Bom", "Moderado"}, rec.AirQuality.DisplayRange)
}

func TestFactors(t *testing.T) {
	assert.Equal(t, 0.0, LatitudeFactor(0))
	assert.Equal(t, 1.0, LatitudeFactor(-90))
	assert.InDelta(t, 0.2102, LatitudeFactor(-18.92), 1e-4)

	assert.Equal(t, 0.0, SeasonFactor(0))
	assert.InDelta(t, 1.0, SeasonFactor(3), 1e-9)
	assert.InDelta(t, -1.0, SeasonFactor(9), 1e-9)

	assert.Equal(t, 5, monthIndex("2025-06-01"))
	assert.Equal(t, 0, monthIndex("garbage"))
}

func TestDaily(t *testing.T) {
	g := seededGenerator(5)
	rows := g.Daily(Location{Latitude: -18.92}, DateRange{StartDate: "2025-06-28", EndDate: "2025-07-04"})

	require.Len(t, rows, 7)
	assert.Equal(t, "2025-06-28", rows[0].Date)
	assert.Equal(t, "2025-07-04", rows[6].Date)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Humidity, 0)
		assert.LessOrEqual(t, r.Humidity, 100)
		assert.Contains(t, []string{"Good", "Moderate"}, r.AirQuality)
	}

	assert.Nil(t, g.Daily(Location{}, DateRange{StartDate: "2025-07-04", EndDate: "2025-06-28"}))
}
