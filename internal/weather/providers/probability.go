package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/climate-probability/internal/weather"
)

// ProbabilityClient implements weather.ProbabilitySource against the climate
// probability HTTP API:
//
//	GET {base}/{family}/daily-probability?lat=&lon=&date=
//	GET {base}/{family}/hourly-probability?lat=&lon=&date=&hour=
type ProbabilityClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	// one breaker per family so an unsupported endpoint cannot block the others
	circuits map[weather.Dimension]*gobreaker.CircuitBreaker
	logger   *slog.Logger
}

// NewProbabilityClient creates a client for the API rooted at baseURL.
func NewProbabilityClient(baseURL string, client *http.Client, logger *slog.Logger) *ProbabilityClient {
	circuits := make(map[weather.Dimension]*gobreaker.CircuitBreaker, len(weather.LiveFamilies))
	for _, family := range weather.LiveFamilies {
		circuits[family] = newCircuitBreaker("probability-api-" + string(family))
	}
	return &ProbabilityClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpCfg:  HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuits: circuits,
		logger:   logger.With("component", "probability-api"),
	}
}

// WithBackoff overrides the retry policy.
func (c *ProbabilityClient) WithBackoff(b BackoffConfig) *ProbabilityClient {
	c.httpCfg.Backoff = b
	return c
}

func (c *ProbabilityClient) Name() string {
	return "probability-api"
}

type probabilityResponse struct {
	Analysis struct {
		FullAnalysis        weather.Conditions `json:"full_analysis"`
		MostLikelyCondition string             `json:"most_likely_condition"`
	} `json:"analysis"`
	DataSourceLocation string `json:"data_source_location"`
}

// Endpoint returns the request URL for one family and query.
func (c *ProbabilityClient) Endpoint(family weather.Dimension, q weather.Query) (string, error) {
	if _, ok := weather.UnitFor(family); !ok {
		return "", fmt.Errorf("%w: %s", weather.ErrUnsupportedFamily, family)
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	values.Set("date", q.Date)

	kind := "daily-probability"
	if q.Hour != nil {
		values.Set("hour", strconv.Itoa(*q.Hour))
		kind = "hourly-probability"
	}
	return fmt.Sprintf("%s/%s/%s?%s", c.baseURL, family, kind, values.Encode()), nil
}

// FetchProbability requests and decodes the analysis of one family.
func (c *ProbabilityClient) FetchProbability(ctx context.Context, family weather.Dimension, q weather.Query) (weather.RawMetricPayload, error) {
	endpoint, err := c.Endpoint(family, q)
	if err != nil {
		return weather.RawMetricPayload{}, err
	}

	circuit, ok := c.circuits[family]
	if !ok {
		return weather.RawMetricPayload{}, fmt.Errorf("%w: %s", weather.ErrUnsupportedFamily, family)
	}

	c.logger.Debug("requesting probability", "family", family, "date", q.Date)
	resp, err := doRequestWithResilience(ctx, c.httpCfg, circuit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return weather.RawMetricPayload{}, fmt.Errorf("%s request: %w", family, err)
	}
	defer resp.Body.Close()

	var body probabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return weather.RawMetricPayload{}, fmt.Errorf("decode %s response: %w", family, err)
	}
	if len(body.Analysis.FullAnalysis) == 0 {
		return weather.RawMetricPayload{}, fmt.Errorf("%s response: %w", family, weather.ErrNoConditions)
	}

	return weather.RawMetricPayload{
		Conditions:          body.Analysis.FullAnalysis,
		MostLikelyCondition: body.Analysis.MostLikelyCondition,
		SourceLabel:         body.DataSourceLocation,
	}, nil
}
