package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/climate-probability/internal/weather"
)

// geocoderMu guards the package-level API key of the geocoder library.
var geocoderMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder creates a Google geocoder for apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey, lookup: geocoder.Geocoding}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

// Geocode resolves query. The underlying library is blocking, so the call is
// abandoned (not cancelled) when ctx ends first.
func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (weather.Location, error) {
	if g.apiKey == "" {
		return weather.Location{}, errors.New("google geocoder: api key not configured")
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		geocoderMu.Lock()
		defer geocoderMu.Unlock()
		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(geocoder.Address{City: query})
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Location{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return weather.Location{}, fmt.Errorf("google geocode %q: %w", query, r.err)
		}
		if r.loc.Latitude == 0 && r.loc.Longitude == 0 {
			return weather.Location{}, fmt.Errorf("google %q: %w", query, ErrNoResults)
		}
		return weather.Location{Name: query, Latitude: r.loc.Latitude, Longitude: r.loc.Longitude}, nil
	}
}
