// Package export renders analyses as downloadable JSON and CSV documents.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/i474232898/climate-probability/internal/common"
	"github.com/i474232898/climate-probability/internal/weather"
)

const (
	Source  = "NASA Earth Observation Data (Mocked)"
	Version = "1.0"

	// TimestampLayout is the exportDate format: UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// CSVHeader is the column row of the tabular export.
var CSVHeader = []string{"Date", "Temperature", "Precipitation", "WindSpeed", "Humidity", "AirQuality"}

type Metadata struct {
	Location   weather.Location  `json:"location"`
	DateRange  weather.DateRange `json:"dateRange"`
	ExportDate string            `json:"exportDate"`
	Source     string            `json:"source"`
	Version    string            `json:"version"`
}

// Document is the structured export of one analysis.
type Document struct {
	Metadata             Metadata                `json:"metadata"`
	WeatherProbabilities weather.WeatherRecord   `json:"weatherProbabilities"`
	DailyForecast        []weather.DailyForecast `json:"dailyForecast"`
}

// Build assembles a Document. The record is embedded unchanged.
func Build(record weather.WeatherRecord, loc weather.Location, dr weather.DateRange, forecast []weather.DailyForecast, exportedAt time.Time) Document {
	if forecast == nil {
		forecast = []weather.DailyForecast{}
	}
	return Document{
		Metadata: Metadata{
			Location:   loc,
			DateRange:  dr,
			ExportDate: exportedAt.UTC().Format(TimestampLayout),
			Source:     Source,
			Version:    Version,
		},
		WeatherProbabilities: record,
		DailyForecast:        forecast,
	}
}

// FromAnalysis builds the Document of an analysis, stamped with its generation time.
func FromAnalysis(a weather.Analysis) Document {
	return Build(a.Record, a.Location, a.DateRange, a.Forecast, a.GeneratedAt)
}

// JSON returns the indented structured export.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// CSV returns the tabular export: five metadata comment lines, a blank line, the
// header and one row per forecast day, joined with "\n".
func (d Document) CSV() string {
	loc := d.Metadata.Location
	lines := []string{
		"# Weather Data Export",
		fmt.Sprintf("# Location: %s (%s, %s)", loc.Name, formatCoord(loc.Latitude), formatCoord(loc.Longitude)),
		fmt.Sprintf("# Date Range: %s to %s", d.Metadata.DateRange.StartDate, d.Metadata.DateRange.EndDate),
		"# Export Date: " + d.Metadata.ExportDate,
		"# Source: " + d.Metadata.Source,
		"",
		strings.Join(CSVHeader, ","),
	}
	for _, day := range d.DailyForecast {
		lines = append(lines, strings.Join([]string{
			day.Date,
			strconv.Itoa(day.Temperature),
			strconv.Itoa(day.Precipitation),
			strconv.Itoa(day.WindSpeed),
			strconv.Itoa(day.Humidity),
			day.AirQuality,
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// SizeBytes is the length of the compact JSON encoding.
func (d Document) SizeBytes() int {
	b, err := json.Marshal(d)
	if err != nil {
		return 0
	}
	return len(b)
}

// Size is SizeBytes in human-readable form, e.g. "2.1 kB".
func (d Document) Size() string {
	return humanize.Bytes(uint64(d.SizeBytes()))
}

// Summary describes an export without its payload.
type Summary struct {
	Location  string `json:"location"`
	Period    string `json:"period"`
	Source    string `json:"source"`
	Size      string `json:"size"`
	SizeBytes int    `json:"sizeBytes"`
	Files     struct {
		JSON string `json:"json"`
		CSV  string `json:"csv"`
	} `json:"files"`
}

// Summarize returns the export summary shown before download.
func (d Document) Summarize() Summary {
	dr := d.Metadata.DateRange
	period := dr.StartDate
	if !dr.SingleDay() {
		period = dr.StartDate + " - " + dr.EndDate
	}
	s := Summary{
		Location:  d.Metadata.Location.Name,
		Period:    period,
		Source:    d.Metadata.Source,
		SizeBytes: d.SizeBytes(),
	}
	s.Size = humanize.Bytes(uint64(s.SizeBytes))
	s.Files.JSON = FileName(d.Metadata.Location, dr.StartDate, "json")
	s.Files.CSV = FileName(d.Metadata.Location, dr.StartDate, "csv")
	return s
}

// FileName suggests the download name, e.g. "weather-data-s_o_paulo__brasil-2024-06-01.csv".
func FileName(loc weather.Location, startDate, ext string) string {
	return fmt.Sprintf("weather-data-%s-%s.%s", common.Slug(loc.Name), startDate, ext)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
