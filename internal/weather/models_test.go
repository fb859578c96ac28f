package weather

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uberlandiaConditions = `{
	"Cold": {"probability": "10%", "threshold": "< 15.0°C"},
	"Hot": {"probability": "62%", "threshold": "between 20.0°C and 28.0°C"},
	"Very Cold": {"probability": "5%", "threshold": "< 5.0°C"},
	"Very Hot": {"probability": "23%", "threshold": "> 30.0°C"}
}`

func TestConditions_UnmarshalKeepsDocumentOrder(t *testing.T) {
	var conds Conditions
	require.NoError(t, json.Unmarshal([]byte(uberlandiaConditions), &conds))

	assert.Equal(t, []string{"Cold", "Hot", "Very Cold", "Very Hot"}, conds.Names())
	hot, ok := conds.Get("Hot")
	require.True(t, ok)
	assert.Equal(t, "between 20.0°C and 28.0°C", hot.Threshold)
}

func TestConditions_RepeatedKey(t *testing.T) {
	var conds Conditions
	data := `{"A":{"probability":"1%"},"B":{"probability":"2%"},"A":{"probability":"3%"}}`
	require.NoError(t, json.Unmarshal([]byte(data), &conds))

	assert.Equal(t, []string{"A", "B"}, conds.Names())
	a, _ := conds.Get("A")
	assert.Equal(t, "3%", a.Probability)
}

func TestConditions_Invalid(t *testing.T) {
	var conds Conditions
	assert.Error(t, json.Unmarshal([]byte(`["Hot"]`), &conds))

	require.NoError(t, json.Unmarshal([]byte(`null`), &conds))
	assert.Empty(t, conds)
}

func TestConditions_MarshalKeepsOrder(t *testing.T) {
	conds := Conditions{cond("Z", "1%"), cond("A", "2%")}
	b, err := json.Marshal(conds)
	require.NoError(t, err)
	assert.Equal(t, `{"Z":{"probability":"1%","threshold":""},"A":{"probability":"2%","threshold":""}}`, string(b))
}

func TestWeatherRecord_WithDoesNotMutate(t *testing.T) {
	var rec WeatherRecord
	updated := rec.With(DimensionHumidity, NormalizedMetric{Probability: 40, Origin: OriginLive})

	assert.Equal(t, 40, updated.Humidity.Probability)
	assert.Zero(t, rec.Humidity.Probability)
	assert.Equal(t, []Dimension{DimensionHumidity}, updated.LiveDimensions())
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("windSpeed")
	require.NoError(t, err)
	assert.Equal(t, DimensionWindSpeed, d)

	_, err = ParseDimension("pressure")
	assert.Error(t, err)
}

func TestLocation_Validate(t *testing.T) {
	assert.NoError(t, Location{Latitude: -18.92, Longitude: -48.28}.Validate())
	assert.ErrorIs(t, Location{Latitude: 91}.Validate(), ErrInvalidLocation)
	assert.ErrorIs(t, Location{Longitude: -180.5}.Validate(), ErrInvalidLocation)
}

func TestDateRange_Validate(t *testing.T) {
	hour := func(h int) *int { return &h }

	tests := []struct {
		name    string
		dr      DateRange
		wantErr bool
	}{
		{"single day", DateRange{StartDate: "2025-06-01", EndDate: "2025-06-01"}, false},
		{"with hour", DateRange{StartDate: "2025-06-01", EndDate: "2025-06-01", Hour: hour(23)}, false},
		{"full year", DateRange{StartDate: "2025-01-01", EndDate: "2025-12-31"}, false},
		{"too long", DateRange{StartDate: "2024-01-01", EndDate: "2024-12-31"}, true},
		{"inverted", DateRange{StartDate: "2025-06-02", EndDate: "2025-06-01"}, true},
		{"bad start", DateRange{StartDate: "01/06/2025", EndDate: "2025-06-01"}, true},
		{"bad end", DateRange{StartDate: "2025-06-01", EndDate: ""}, true},
		{"hour too large", DateRange{StartDate: "2025-06-01", EndDate: "2025-06-01", Hour: hour(24)}, true},
		{"negative hour", DateRange{StartDate: "2025-06-01", EndDate: "2025-06-01", Hour: hour(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dr.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}
