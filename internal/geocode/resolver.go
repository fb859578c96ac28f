// Package geocode turns free-text place names into coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/i474232898/climate-probability/internal/common"
	"github.com/i474232898/climate-probability/internal/observability"
	"github.com/i474232898/climate-probability/internal/store"
	"github.com/i474232898/climate-probability/internal/weather"
)

var (
	// ErrLocationNotFound is returned when no source knows the query.
	ErrLocationNotFound = errors.New("location not found")
	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("empty location query")
)

// PopularCities are offered as quick picks and matched before any remote lookup.
var PopularCities = []weather.Location{
	{Name: "São Paulo, Brasil", Latitude: -23.55, Longitude: -46.63},
	{Name: "Rio de Janeiro, Brasil", Latitude: -22.9068, Longitude: -43.1729},
	{Name: "Uberlândia, Brasil", Latitude: -18.9165007, Longitude: -48.2812944},
	{Name: "New York, EUA", Latitude: 40.7128, Longitude: -74.0060},
	{Name: "London, Reino Unido", Latitude: 51.5074, Longitude: -0.1278},
	{Name: "Tokyo, Japão", Latitude: 35.6762, Longitude: 139.6503},
	{Name: "Sydney, Austrália", Latitude: -33.8688, Longitude: 151.2093},
	{Name: "Paris, França", Latitude: 48.8566, Longitude: 2.3522},
	{Name: "Berlin, Alemanha", Latitude: 52.5200, Longitude: 13.4050},
	{Name: "Mumbai, Índia", Latitude: 19.0760, Longitude: 72.8777},
	{Name: "Cairo, Egito", Latitude: 30.0444, Longitude: 31.2357},
}

// Cache stores resolved locations by query.
type Cache interface {
	Get(query string) (weather.Location, error)
	Save(query string, loc weather.Location)
}

// Resolver looks a query up in the popular cities, then the cache, then each
// geocoder in order. The first geocoder hit is cached.
type Resolver struct {
	cache     Cache
	geocoders []weather.Geocoder
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(cache Cache, geocoders []weather.Geocoder, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Resolver{
		cache:     cache,
		geocoders: geocoders,
		metrics:   metrics,
		logger:    logger.With("component", "geocode"),
	}
}

// Popular returns a copy of the popular cities.
func (r *Resolver) Popular() []weather.Location {
	return append([]weather.Location(nil), PopularCities...)
}

// FindPopular returns the first popular city whose name contains query, ignoring case.
func FindPopular(query string) (weather.Location, bool) {
	for _, city := range PopularCities {
		if common.ContainsFold(city.Name, query) {
			return city, true
		}
	}
	return weather.Location{}, false
}

// Resolve returns the location for query.
func (r *Resolver) Resolve(ctx context.Context, query string) (weather.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return weather.Location{}, ErrEmptyQuery
	}

	if loc, ok := FindPopular(query); ok {
		r.metrics.GeocodeLookups.WithLabelValues("popular", "hit").Inc()
		return loc, nil
	}

	if r.cache != nil {
		loc, err := r.cache.Get(query)
		if err == nil {
			r.metrics.GeocodeLookups.WithLabelValues("cache", "hit").Inc()
			return loc, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Warn("cache lookup failed", "query", query, "error", err)
		}
		r.metrics.GeocodeLookups.WithLabelValues("cache", "miss").Inc()
	}

	var errs []error
	for _, g := range r.geocoders {
		loc, err := g.Geocode(ctx, query)
		if err != nil {
			r.metrics.GeocodeLookups.WithLabelValues(g.Name(), "error").Inc()
			r.logger.Debug("geocoder failed", "geocoder", g.Name(), "query", query, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if err := loc.Validate(); err != nil {
			r.metrics.GeocodeLookups.WithLabelValues(g.Name(), "error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
			continue
		}
		r.metrics.GeocodeLookups.WithLabelValues(g.Name(), "hit").Inc()
		if r.cache != nil {
			r.cache.Save(query, loc)
		}
		return loc, nil
	}

	if len(errs) > 0 {
		return weather.Location{}, fmt.Errorf("%w: %q: %w", ErrLocationNotFound, query, errors.Join(errs...))
	}
	return weather.Location{}, fmt.Errorf("%w: %q", ErrLocationNotFound, query)
}
