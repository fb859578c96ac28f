package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/climate-probability/internal/api/http"
	"github.com/i474232898/climate-probability/internal/config"
	"github.com/i474232898/climate-probability/internal/geocode"
	"github.com/i474232898/climate-probability/internal/observability"
	"github.com/i474232898/climate-probability/internal/scheduler"
	"github.com/i474232898/climate-probability/internal/store"
	"github.com/i474232898/climate-probability/internal/weather"
	"github.com/i474232898/climate-probability/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	metrics := observability.NewMetrics()

	localizer, err := weather.ParseLocalizer(cfg.Locale)
	if err != nil {
		log.Error("invalid locale", "error", err)
		os.Exit(1)
	}

	// Shared HTTP client for outbound probability calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var source weather.ProbabilitySource
	if cfg.LiveEnabled() {
		source = providers.NewProbabilityClient(cfg.ProbabilityAPIBaseURL, httpClient, log)
	} else {
		log.Warn("PROBABILITY_API_BASE_URL not set; serving simulated data only")
	}

	service := weather.NewService(source, localizer,
		weather.WithFamilies(cfg.LiveFamilies...),
		weather.WithMetrics(metrics),
		weather.WithLogger(log),
		weather.WithFetchTimeout(cfg.HTTPTimeout),
	)

	// Geocoders in priority order; the cache sits in front of them.
	var geocoders []weather.Geocoder
	if cfg.MapboxToken != "" {
		geocoders = append(geocoders, providers.NewMapboxGeocoder(cfg.MapboxToken, cfg.MapboxBaseURL, cfg.HTTPTimeout, log))
	}
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoders = append(geocoders, providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey))
	}
	cache := store.NewMemoryStore(cfg.GeocodeCacheSize, cfg.GeocodeCacheMaxAge)
	resolver := geocode.NewResolver(cache, geocoders, metrics, log)

	evictEvery := cfg.GeocodeCacheMaxAge / 4
	sched := scheduler.New(service, cfg.StatusProbeInterval, cache, evictEvery, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "climate-probability",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTPTimeout,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "climate-probability",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service, resolver)

	go func() {
		log.Info("listening", "port", cfg.Port, "live", cfg.LiveEnabled(), "locale", localizer.Tag().String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
