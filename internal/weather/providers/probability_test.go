package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/i474232898/climate-probability/internal/observability"
	"github.com/i474232898/climate-probability/internal/weather"
)

const temperatureBody = `{
	"analysis": {
		"full_analysis": {
			"Cold": {"probability": "10%", "threshold": "< 15.0°C"},
			"Hot": {"probability": "62%", "threshold": "between 20.0°C and 28.0°C"},
			"Very Cold": {"probability": "5%", "threshold": "< 5.0°C"},
			"Very Hot": {"probability": "23%", "threshold": "> 30.0°C"}
		},
		"most_likely_condition": "Hot"
	},
	"data_source_location": "Uberlândia, MG"
}`

var fastBackoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func testProbabilityClient(baseURL string) *ProbabilityClient {
	return NewProbabilityClient(baseURL, &http.Client{Timeout: 5 * time.Second}, observability.DiscardLogger()).
		WithBackoff(fastBackoff)
}

func TestProbabilityClient_FetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/temperature/daily-probability", r.URL.Path)
		assert.Equal(t, "-18.92", r.URL.Query().Get("lat"))
		assert.Equal(t, "-48.28", r.URL.Query().Get("lon"))
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("date"))
		assert.False(t, r.URL.Query().Has("hour"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, temperatureBody)
	}))
	defer srv.Close()

	c := testProbabilityClient(srv.URL + "/")
	p, err := c.FetchProbability(context.Background(), weather.DimensionTemperature, weather.Query{
		Latitude: -18.92, Longitude: -48.28, Date: "2025-06-01",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Cold", "Hot", "Very Cold", "Very Hot"}, p.Conditions.Names())
	assert.Equal(t, "Hot", p.MostLikelyCondition)
	assert.Equal(t, "Uberlândia, MG", p.SourceLabel)
}

func TestProbabilityClient_HourlyEndpoint(t *testing.T) {
	c := testProbabilityClient("http://api.example")
	hour := 6

	u, err := c.Endpoint(weather.DimensionHumidity, weather.Query{Latitude: 1.5, Longitude: 2, Date: "2025-06-01", Hour: &hour})
	require.NoError(t, err)
	assert.Equal(t, "http://api.example/humidity/hourly-probability?date=2025-06-01&hour=6&lat=1.5&lon=2", u)

	_, err = c.Endpoint(weather.DimensionWindSpeed, weather.Query{})
	assert.ErrorIs(t, err, weather.ErrUnsupportedFamily)
}

func TestProbabilityClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, temperatureBody)
	}))
	defer srv.Close()

	p, err := testProbabilityClient(srv.URL).FetchProbability(context.Background(), weather.DimensionTemperature, weather.Query{Date: "2025-06-01"})
	require.NoError(t, err)
	assert.Len(t, p.Conditions, 4)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProbabilityClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testProbabilityClient(srv.URL).FetchProbability(context.Background(), weather.DimensionPrecipitation, weather.Query{Date: "2025-06-01"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpected)
	assert.Equal(t, int32(1), calls.Load())
}

// temperatureOnlyServer answers temperature requests and rejects every other family.
func temperatureOnlyServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var rejected atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/temperature/") {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, temperatureBody)
			return
		}
		rejected.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &rejected
}

func TestProbabilityClient_ClientErrorsDoNotOpenCircuit(t *testing.T) {
	srv, rejected := temperatureOnlyServer(t, http.StatusNotFound)
	c := testProbabilityClient(srv.URL)
	q := weather.Query{Latitude: -18.92, Longitude: -48.28, Date: "2025-06-01"}

	for i := 0; i < 10; i++ {
		_, err := c.FetchProbability(context.Background(), weather.DimensionPrecipitation, q)
		require.ErrorIs(t, err, errUnexpected)
		require.NotErrorIs(t, err, errCircuitOpen)
	}
	assert.Equal(t, int32(10), rejected.Load())

	p, err := c.FetchProbability(context.Background(), weather.DimensionTemperature, q)
	require.NoError(t, err)
	assert.Equal(t, "Hot", p.MostLikelyCondition)
}

func TestProbabilityClient_CircuitIsPerFamily(t *testing.T) {
	srv, _ := temperatureOnlyServer(t, http.StatusServiceUnavailable)
	c := testProbabilityClient(srv.URL)
	q := weather.Query{Date: "2025-06-01"}

	// three attempts per call with fastBackoff; the fifth failure opens the breaker
	_, err := c.FetchProbability(context.Background(), weather.DimensionHumidity, q)
	require.ErrorIs(t, err, errServerError)
	_, err = c.FetchProbability(context.Background(), weather.DimensionHumidity, q)
	require.ErrorIs(t, err, errCircuitOpen)

	_, err = c.FetchProbability(context.Background(), weather.DimensionTemperature, q)
	assert.NoError(t, err)
}

func TestProbabilityClient_UnsupportedFamiliesKeepTemperatureLive(t *testing.T) {
	srv, _ := temperatureOnlyServer(t, http.StatusNotFound)
	svc := weather.NewService(testProbabilityClient(srv.URL), weather.NewLocalizer(language.BrazilianPortuguese),
		weather.WithLogger(observability.DiscardLogger()))
	loc := weather.Location{Name: "Uberlândia", Latitude: -18.92, Longitude: -48.28}
	dr := weather.DateRange{StartDate: "2025-06-01", EndDate: "2025-06-01"}

	for i := 0; i < 5; i++ {
		a, err := svc.Analyze(context.Background(), loc, dr)
		require.NoError(t, err)
		require.Equal(t, weather.StatusPartial, a.Status, "analysis %d", i)
		assert.Equal(t, []weather.Dimension{weather.DimensionTemperature}, a.LiveDimensions)
		assert.Equal(t, weather.OriginLive, a.Record.Temperature.Origin)
	}
}

func TestProbabilityClient_RejectsEmptyAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"analysis":{"full_analysis":{},"most_likely_condition":""},"data_source_location":"x"}`)
	}))
	defer srv.Close()

	_, err := testProbabilityClient(srv.URL).FetchProbability(context.Background(), weather.DimensionHumidity, weather.Query{Date: "2025-06-01"})
	assert.ErrorIs(t, err, weather.ErrNoConditions)
}

func TestProbabilityClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"analysis":`)
	}))
	defer srv.Close()

	_, err := testProbabilityClient(srv.URL).FetchProbability(context.Background(), weather.DimensionTemperature, weather.Query{Date: "2025-06-01"})
	assert.Error(t, err)
}

func TestDoRequestWithResilience_Config(t *testing.T) {
	cb := newCircuitBreaker("test")
	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, "http://unused", nil)
	}

	_, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, cb, build)
	assert.ErrorIs(t, err, errNoHTTPClient)

	_, err = doRequestWithResilience(context.Background(), HTTPClientConfig{Client: http.DefaultClient}, cb, build)
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestDoRequestWithResilience_CircuitOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{Client: srv.Client(), Backoff: BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond}}
	cb := newCircuitBreaker("test")
	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}

	for i := 0; i < 5; i++ {
		_, err := doRequestWithResilience(context.Background(), cfg, cb, build)
		require.ErrorIs(t, err, errServerError)
	}
	_, err := doRequestWithResilience(context.Background(), cfg, cb, build)
	assert.ErrorIs(t, err, errCircuitOpen)
}
