package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Dimension identifies one tracked weather metric family.
type Dimension string

const (
	DimensionTemperature   Dimension = "temperature"
	DimensionPrecipitation Dimension = "precipitation"
	DimensionWindSpeed     Dimension = "windSpeed"
	DimensionAirQuality    Dimension = "airQuality"
	DimensionHumidity      Dimension = "humidity"
	DimensionVisibility    Dimension = "visibility"
)

// Dimensions lists every dimension of a WeatherRecord in display order.
var Dimensions = []Dimension{
	DimensionTemperature,
	DimensionPrecipitation,
	DimensionWindSpeed,
	DimensionAirQuality,
	DimensionHumidity,
	DimensionVisibility,
}

// LiveFamilies are the dimensions the upstream probability service can report.
var LiveFamilies = []Dimension{
	DimensionTemperature,
	DimensionPrecipitation,
	DimensionHumidity,
}

// ParseDimension maps a dimension name to its Dimension.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// Origin tags a metric with its provenance.
type Origin string

const (
	OriginLive      Origin = "LIVE"
	OriginSynthetic Origin = "SYNTHETIC"
)

// RawConditionEntry is a single condition as reported upstream, e.g. {"62.5%", "between ..."}.
type RawConditionEntry struct {
	Probability string `json:"probability"`
	Threshold   string `json:"threshold"`
}

// NamedCondition pairs a condition name with its entry.
type NamedCondition struct {
	Name  string
	Entry RawConditionEntry
}

// Conditions is an ordered mapping of condition name to entry. The order is the
// one declared by the payload and decides ties in SelectMostLikely.
type Conditions []NamedCondition

// Get returns the entry for name.
func (c Conditions) Get(name string) (RawConditionEntry, bool) {
	for _, nc := range c {
		if nc.Name == name {
			return nc.Entry, true
		}
	}
	return RawConditionEntry{}, false
}

// Names returns the condition names in declared order.
func (c Conditions) Names() []string {
	names := make([]string, 0, len(c))
	for _, nc := range c {
		names = append(names, nc.Name)
	}
	return names
}

// MarshalJSON encodes the conditions as a JSON object keeping declared order.
func (c Conditions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, nc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(nc.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(nc.Entry)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, recording keys in document order.
// A repeated key keeps its first position and takes the last value.
func (c *Conditions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("conditions: expected JSON object")
	}

	var out Conditions
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("conditions: unexpected key token %v", tok)
		}
		var entry RawConditionEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("conditions: decode %q: %w", name, err)
		}
		if i, seen := index[name]; seen {
			out[i].Entry = entry
			continue
		}
		index[name] = len(out)
		out = append(out, NamedCondition{Name: name, Entry: entry})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// RawMetricPayload is one upstream probability analysis for a single metric family.
type RawMetricPayload struct {
	Conditions          Conditions `json:"conditions"`
	MostLikelyCondition string     `json:"mostLikelyCondition"`
	SourceLabel         string     `json:"sourceLabel"`
}

// NormalizedMetric is the unit of merging: one dimension of a WeatherRecord.
type NormalizedMetric struct {
	Probability  int    `json:"probability"`
	DisplayRange string `json:"displayRange"`
	Description  string `json:"description"`

	// MostLikelyCondition is the condition declared by upstream; SelectedCondition is
	// the local argmax. The two may disagree and are reported separately.
	MostLikelyCondition string `json:"mostLikelyCondition,omitempty"`
	SelectedCondition   string `json:"selectedCondition,omitempty"`

	SourceConditions Conditions `json:"sourceConditions,omitempty"`
	Origin           Origin     `json:"origin"`
	RawSourceLabel   string     `json:"rawSourceLabel,omitempty"`
}

// WeatherRecord holds one metric per tracked dimension.
type WeatherRecord struct {
	Temperature   NormalizedMetric `json:"temperature"`
	Precipitation NormalizedMetric `json:"precipitation"`
	WindSpeed     NormalizedMetric `json:"windSpeed"`
	AirQuality    NormalizedMetric `json:"airQuality"`
	Humidity      NormalizedMetric `json:"humidity"`
	Visibility    NormalizedMetric `json:"visibility"`
}

// Metric returns the metric stored for d.
func (r WeatherRecord) Metric(d Dimension) NormalizedMetric {
	if p := r.slot(d); p != nil {
		return *p
	}
	return NormalizedMetric{}
}

// With returns a copy of r with the metric for d replaced.
func (r WeatherRecord) With(d Dimension, m NormalizedMetric) WeatherRecord {
	if p := r.slot(d); p != nil {
		*p = m
	}
	return r
}

func (r *WeatherRecord) slot(d Dimension) *NormalizedMetric {
	switch d {
	case DimensionTemperature:
		return &r.Temperature
	case DimensionPrecipitation:
		return &r.Precipitation
	case DimensionWindSpeed:
		return &r.WindSpeed
	case DimensionAirQuality:
		return &r.AirQuality
	case DimensionHumidity:
		return &r.Humidity
	case DimensionVisibility:
		return &r.Visibility
	default:
		return nil
	}
}

// LiveDimensions returns the dimensions whose origin is LIVE, in display order.
func (r WeatherRecord) LiveDimensions() []Dimension {
	var live []Dimension
	for _, d := range Dimensions {
		if r.Metric(d).Origin == OriginLive {
			live = append(live, d)
		}
	}
	return live
}

var (
	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrInvalidDateRange is returned for malformed or inverted date ranges.
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Location is a named point on the globe.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Validate checks the coordinate bounds.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidLocation, l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

const (
	// DateLayout is the calendar date format used by DateRange.
	DateLayout = "2006-01-02"
	// MaxRangeDays bounds the length of a DateRange.
	MaxRangeDays = 365
)

// DateRange is an inclusive range of calendar dates with an optional hour of day.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Hour      *int   `json:"hour,omitempty"`
}

// Validate checks formats, ordering, hour bounds and the maximum span.
func (d DateRange) Validate() error {
	start, end, err := d.Bounds()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("%w: endDate %s is before startDate %s", ErrInvalidDateRange, d.EndDate, d.StartDate)
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxRangeDays {
		return fmt.Errorf("%w: range spans %d days, maximum is %d", ErrInvalidDateRange, days, MaxRangeDays)
	}
	if d.Hour != nil && (*d.Hour < 0 || *d.Hour > 23) {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidDateRange, *d.Hour)
	}
	return nil
}

// Bounds parses the start and end dates as UTC midnights.
func (d DateRange) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate: %v", ErrInvalidDateRange, err)
	}
	end, err := time.Parse(DateLayout, d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate: %v", ErrInvalidDateRange, err)
	}
	return start, end, nil
}

// SingleDay reports whether the range selects a single day (or hour).
func (d DateRange) SingleDay() bool {
	return d.StartDate == d.EndDate
}

// DailyForecast is one per-day row of the forecast table.
type DailyForecast struct {
	Date          string `json:"date"`
	Temperature   int    `json:"temperature"`
	Precipitation int    `json:"precipitation"`
	WindSpeed     int    `json:"windSpeed"`
	Humidity      int    `json:"humidity"`
	AirQuality    string `json:"airQuality"`
}
