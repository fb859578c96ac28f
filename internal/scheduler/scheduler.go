package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Prober checks the upstream probability service.
type Prober interface {
	Probe(ctx context.Context) error
}

// Evicter drops expired cache entries.
type Evicter interface {
	EvictExpired() int
}

// Scheduler periodically probes the upstream service and trims the geocode cache.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	prober        Prober
	evicter       Evicter
	probeInterval time.Duration
	evictInterval time.Duration
	probeTimeout  time.Duration
	logger        *slog.Logger
}

// New creates a new Scheduler. A nil collaborator or a non-positive interval
// disables the corresponding job.
func New(prober Prober, probeInterval time.Duration, evicter Evicter, evictInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		prober:        prober,
		evicter:       evicter,
		probeInterval: probeInterval,
		evictInterval: evictInterval,
		probeTimeout:  30 * time.Second,
		logger:        logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	jobs := 0

	if s.prober != nil && s.probeInterval > 0 {
		if _, err := s.scheduler.Every(s.probeInterval).Do(s.RunProbe); err != nil {
			return err
		}
		jobs++
	}
	if s.evicter != nil && s.evictInterval > 0 {
		if _, err := s.scheduler.Every(s.evictInterval).Do(s.RunEviction); err != nil {
			return err
		}
		jobs++
	}

	if jobs == 0 {
		s.logger.Info("no jobs configured; nothing to schedule")
		return nil
	}
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "jobs", jobs, "probe_interval", s.probeInterval, "evict_interval", s.evictInterval)
	return nil
}

// RunProbe runs one status probe.
func (s *Scheduler) RunProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), s.probeTimeout)
	defer cancel()

	if err := s.prober.Probe(ctx); err != nil {
		s.logger.Warn("status probe failed", "error", err)
		return
	}
	s.logger.Debug("status probe completed")
}

// RunEviction runs one cache eviction pass.
func (s *Scheduler) RunEviction() {
	if n := s.evicter.EvictExpired(); n > 0 {
		s.logger.Info("evicted expired geocode entries", "count", n)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
