package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/climate-probability/internal/weather"
)

const defaultMapboxURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// MapboxGeocoder implements weather.Geocoder using the Mapbox Geocoding API.
type MapboxGeocoder struct {
	token   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewMapboxGeocoder creates a Mapbox client. An empty baseURL selects the public API.
func NewMapboxGeocoder(token, baseURL string, timeout time.Duration, logger *slog.Logger) *MapboxGeocoder {
	if baseURL == "" {
		baseURL = defaultMapboxURL
	}
	return &MapboxGeocoder{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  &http.Client{Timeout: timeout},
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("mapbox"),
		logger:  logger.With("component", "mapbox"),
	}
}

func (g *MapboxGeocoder) Name() string {
	return "mapbox"
}

// Geocode returns the best match for a free-text place name.
func (g *MapboxGeocoder) Geocode(ctx context.Context, query string) (weather.Location, error) {
	u := fmt.Sprintf("%s/%s.json", g.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {g.token},
		"limit":        {"1"},
		"types":        {"place,locality,region"},
	}
	fullURL := u + "?" + params.Encode()

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	})
	if err != nil {
		return weather.Location{}, fmt.Errorf("mapbox geocode request: %w", err)
	}
	defer resp.Body.Close()

	var body mapboxResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return weather.Location{}, fmt.Errorf("decode mapbox response: %w", err)
	}
	if len(body.Features) == 0 || len(body.Features[0].Center) != 2 {
		return weather.Location{}, fmt.Errorf("mapbox %q: %w", query, ErrNoResults)
	}

	f := body.Features[0]
	name := f.PlaceName
	if name == "" {
		name = query
	}
	g.logger.Debug("geocoded", "query", query, "place", name, "relevance", f.Relevance)
	return weather.Location{Name: name, Latitude: f.Center[1], Longitude: f.Center[0]}, nil
}

// Mapbox API response types.

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxFeature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
