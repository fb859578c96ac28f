package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/climate-probability/internal/weather"
)

type AppConfig struct {
	Port string

	// ProbabilityAPIBaseURL is the root of the climate probability service. Empty
	// disables live data and every analysis is simulated.
	ProbabilityAPIBaseURL string
	HTTPTimeout           time.Duration
	LiveFamilies          []weather.Dimension
	Locale                string

	LogLevel  string
	LogFormat string

	MapboxToken          string
	MapboxBaseURL        string
	GoogleGeocoderAPIKey string

	// Geocode cache retention.
	GeocodeCacheSize   int           // max cached queries (0 = unlimited)
	GeocodeCacheMaxAge time.Duration // max age of a cached query (0 = unlimited)

	StatusProbeInterval time.Duration // 0 disables the probe job
	ShutdownTimeout     time.Duration
}

// Load reads configuration from the environment, and from a .env file when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                  getenvDefault("PORT", "8080"),
		ProbabilityAPIBaseURL: strings.TrimRight(os.Getenv("PROBABILITY_API_BASE_URL"), "/"),
		Locale:                getenvDefault("LOCALE", "pt-BR"),
		LogLevel:              getenvDefault("LOG_LEVEL", "info"),
		LogFormat:             getenvDefault("LOG_FORMAT", "json"),
		MapboxToken:           os.Getenv("MAPBOX_TOKEN"),
		MapboxBaseURL:         os.Getenv("MAPBOX_BASE_URL"),
		GoogleGeocoderAPIKey:  os.Getenv("GOOGLE_GEOCODER_API_KEY"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheMaxAge, err = getenvDuration("GEOCODE_CACHE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.StatusProbeInterval, err = getenvDuration("STATUS_PROBE_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheSize, err = getenvInt("GEOCODE_CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.LiveFamilies, err = parseFamilies(getenvDefault("LIVE_FAMILIES", "temperature,precipitation,humidity")); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	if cfg.GeocodeCacheSize < 0 {
		return nil, fmt.Errorf("invalid GEOCODE_CACHE_SIZE: must not be negative")
	}
	return cfg, nil
}

// LiveEnabled reports whether a probability service is configured.
func (c *AppConfig) LiveEnabled() bool {
	return c.ProbabilityAPIBaseURL != ""
}

func parseFamilies(s string) ([]weather.Dimension, error) {
	var families []weather.Dimension
	seen := make(map[weather.Dimension]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := weather.ParseDimension(part)
		if err != nil {
			return nil, fmt.Errorf("invalid LIVE_FAMILIES: %w", err)
		}
		if _, ok := weather.UnitFor(d); !ok {
			return nil, fmt.Errorf("invalid LIVE_FAMILIES: %w: %s", weather.ErrUnsupportedFamily, d)
		}
		if !seen[d] {
			seen[d] = true
			families = append(families, d)
		}
	}
	return families, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
