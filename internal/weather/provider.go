package weather

import (
	"context"
)

// Query selects the place and time a probability analysis is requested for.
type Query struct {
	Latitude  float64
	Longitude float64
	Date      string
	Hour      *int
}

// ProbabilitySource abstracts the upstream climate probability service.
type ProbabilitySource interface {
	Name() string
	FetchProbability(ctx context.Context, family Dimension, q Query) (RawMetricPayload, error)
}

// Geocoder resolves a free-text place name to a Location.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (Location, error)
}
