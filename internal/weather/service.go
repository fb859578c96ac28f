package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/climate-probability/internal/observability"
)

// ErrSourceUnavailable is reported when no probability source is configured.
var ErrSourceUnavailable = errors.New("probability source not configured")

// DefaultLocation is the map centre used when nothing else is selected, and the
// point the status probe queries.
var DefaultLocation = Location{Name: "São Paulo", Latitude: -23.55, Longitude: -46.63}

// Analysis is the result of one probability request.
type Analysis struct {
	ID             string          `json:"id"`
	Location       Location        `json:"location"`
	DateRange      DateRange       `json:"dateRange"`
	Record         WeatherRecord   `json:"record"`
	Forecast       []DailyForecast `json:"forecast"`
	Chart          []ChartPoint    `json:"chart"`
	Status         Status          `json:"status"`
	LiveDimensions []Dimension     `json:"liveDimensions"`
	UpstreamError  string          `json:"upstreamError,omitempty"`
	Locale         string          `json:"locale"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}

// Service answers probability requests by merging live upstream figures over a
// synthetic baseline.
type Service struct {
	source    ProbabilitySource
	families  []Dimension
	localizer *Localizer
	generator *Generator
	clock     clockwork.Clock
	metrics   *observability.Metrics
	status    *StatusTracker
	logger    *slog.Logger
	timeout   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithFamilies restricts the live families requested from the source.
func WithFamilies(families ...Dimension) Option {
	return func(s *Service) { s.families = append([]Dimension(nil), families...) }
}

// WithGenerator replaces the synthetic generator, e.g. with a seeded one in tests.
func WithGenerator(g *Generator) Option {
	return func(s *Service) { s.generator = g }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithStatusTracker(t *StatusTracker) Option {
	return func(s *Service) { s.status = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithFetchTimeout bounds the whole upstream fan-out of one request.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a Service. source may be nil, in which case every analysis is
// fully synthetic.
func NewService(source ProbabilitySource, localizer *Localizer, opts ...Option) *Service {
	s := &Service{
		source:    source,
		families:  append([]Dimension(nil), LiveFamilies...),
		localizer: localizer,
		clock:     clockwork.NewRealClock(),
		status:    NewStatusTracker(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = NewGenerator(localizer)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetricsForTesting()
	}
	s.logger = s.logger.With("component", "weather")
	return s
}

// Localizer returns the localizer the service renders with.
func (s *Service) Localizer() *Localizer {
	return s.localizer
}

// Status returns the tracker fed by analyses and probes.
func (s *Service) Status() *StatusTracker {
	return s.status
}

// Families returns the live families requested upstream.
func (s *Service) Families() []Dimension {
	return append([]Dimension(nil), s.families...)
}

// Analyze validates the request, fetches every enabled live family concurrently and
// merges the successes over a synthetic record. Upstream failures never fail the
// request; they only lower the status and are reported in UpstreamError.
func (s *Service) Analyze(ctx context.Context, loc Location, dr DateRange) (Analysis, error) {
	if err := loc.Validate(); err != nil {
		return Analysis{}, err
	}
	if err := dr.Validate(); err != nil {
		return Analysis{}, err
	}

	q := Query{Latitude: loc.Latitude, Longitude: loc.Longitude, Date: dr.StartDate, Hour: dr.Hour}
	live, fetchErr := s.fetchLive(ctx, q)

	record := Merge(s.generator.Generate(loc, dr), live...)
	status := statusFor(len(live), len(s.families))
	if s.source == nil {
		fetchErr = ErrSourceUnavailable
	}

	a := Analysis{
		ID:             uuid.NewString(),
		Location:       loc,
		DateRange:      dr,
		Record:         record,
		Forecast:       s.generator.Daily(loc, dr),
		Chart:          ProbabilityChart(record, s.localizer),
		Status:         status,
		LiveDimensions: record.LiveDimensions(),
		Locale:         s.localizer.Tag().String(),
		GeneratedAt:    s.clock.Now().UTC(),
	}
	if fetchErr != nil {
		a.UpstreamError = fetchErr.Error()
	}

	s.metrics.Analyses.WithLabelValues(string(status)).Inc()
	for _, d := range Dimensions {
		s.metrics.MetricOrigins.WithLabelValues(string(d), string(record.Metric(d).Origin)).Inc()
	}
	s.record(status, a.LiveDimensions, fetchErr, a.GeneratedAt)

	s.logger.Info("analysis complete",
		"id", a.ID,
		"location", loc.Name,
		"start", dr.StartDate,
		"end", dr.EndDate,
		"status", status,
		"live", len(live),
	)
	return a, nil
}

// Probe queries every enabled family at DefaultLocation for today and records the
// combined outcome in the status tracker. An error is returned only when no family
// answered.
func (s *Service) Probe(ctx context.Context) error {
	now := s.clock.Now().UTC()
	if s.source == nil || len(s.families) == 0 {
		s.record(StatusSimulated, nil, ErrSourceUnavailable, now)
		return ErrSourceUnavailable
	}

	q := Query{
		Latitude:  DefaultLocation.Latitude,
		Longitude: DefaultLocation.Longitude,
		Date:      now.Format(DateLayout),
	}
	live, err := s.fetchLive(ctx, q)
	dims := make([]Dimension, 0, len(live))
	for _, m := range live {
		dims = append(dims, m.Dimension)
	}
	status := statusFor(len(live), len(s.families))
	s.record(status, dims, err, now)
	if len(live) == 0 {
		s.logger.Warn("status probe failed", "families", len(s.families), "error", err)
		return fmt.Errorf("status probe: %w", err)
	}
	s.logger.Debug("status probe finished", "status", status, "live", len(live))
	return nil
}

func (s *Service) record(status Status, live []Dimension, err error, at time.Time) {
	snap := StatusSnapshot{Status: status, LiveDimensions: live, CheckedAt: at}
	if err != nil {
		snap.LastError = err.Error()
	}
	s.status.Record(snap)
	if status == StatusSimulated {
		s.metrics.UpstreamUp.Set(0)
	} else {
		s.metrics.UpstreamUp.Set(1)
	}
}

// fetchLive requests every enabled family concurrently. Successful conversions are
// returned in family order; failures are logged and joined into the error.
func (s *Service) fetchLive(ctx context.Context, q Query) ([]LiveMetric, error) {
	if s.source == nil || len(s.families) == 0 {
		return nil, nil
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		wg      sync.WaitGroup
		results = make([]NormalizedMetric, len(s.families))
		errs    = make([]error, len(s.families))
	)
	for i, family := range s.families {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := s.fetchFamily(ctx, family, q)
			if err != nil {
				s.logger.Warn("live fetch failed, keeping synthetic value",
					"family", family,
					"source", s.source.Name(),
					"error", err,
				)
				errs[i] = fmt.Errorf("%s: %w", family, err)
				return
			}
			results[i] = m
		}()
	}
	wg.Wait()

	var live []LiveMetric
	for i, family := range s.families {
		if errs[i] == nil {
			live = append(live, LiveMetric{Dimension: family, Metric: results[i]})
		}
	}
	return live, errors.Join(errs...)
}

func (s *Service) fetchFamily(ctx context.Context, family Dimension, q Query) (NormalizedMetric, error) {
	start := s.clock.Now()
	payload, err := s.source.FetchProbability(ctx, family, q)
	s.metrics.UpstreamDuration.WithLabelValues(string(family)).Observe(s.clock.Since(start).Seconds())
	if err == nil {
		var m NormalizedMetric
		if m, err = ConvertMetric(family, payload, s.localizer); err == nil {
			s.metrics.UpstreamFetches.WithLabelValues(string(family), "success").Inc()
			return m, nil
		}
	}
	s.metrics.UpstreamFetches.WithLabelValues(string(family), "error").Inc()
	return NormalizedMetric{}, err
}
