package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/YGJH/backend-test/internal/advice"
	"github.com/YGJH/backend-test/internal/weather/providers"
)

type AppConfig struct {
	Port string

	// APIKey, when set, must be sent by clients in the X-API-Key header.
	APIKey string

	// Central Weather Administration open data.
	CWAAPIKey          string
	CWABaseURL         string
	CWACurrentDataset  string
	CWAForecastDataset string

	GoogleMapsAPIKey string
	GeocodeURL       string
	GeocodeLanguage  string

	GeminiAPIKey   string
	GeminiModel    string
	AdviceLanguage string

	// SnapshotDir holds the last good current and forecast documents.
	SnapshotDir string

	// UpstreamTimeout bounds each outbound call.
	UpstreamTimeout time.Duration

	// RefreshInterval controls how often snapshots are refreshed in the background (0 = disabled).
	RefreshInterval time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration

	// DatabaseURL enables the advice history when set.
	DatabaseURL string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "3000")
	cfg.APIKey = os.Getenv("API_KEY")

	cfg.CWAAPIKey = os.Getenv("CWA_API_KEY")
	cfg.CWABaseURL = getenvDefault("CWA_BASE_URL", providers.DefaultCWABaseURL)
	cfg.CWACurrentDataset = getenvDefault("CWA_CURRENT_DATASET", providers.DefaultCurrentDataset)
	cfg.CWAForecastDataset = getenvDefault("CWA_FORECAST_DATASET", providers.DefaultForecastDataset)

	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.GeocodeURL = getenvDefault("GEOCODE_URL", providers.DefaultGeocodeURL)
	cfg.GeocodeLanguage = getenvDefault("GEOCODE_LANGUAGE", providers.DefaultLanguage)

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getenvDefault("GEMINI_MODEL", providers.DefaultGeminiModel)
	cfg.AdviceLanguage = getenvDefault("ADVICE_LANGUAGE", advice.DefaultLanguage)

	cfg.SnapshotDir = getenvDefault("SNAPSHOT_DIR", "./assets")

	var err error
	if cfg.UpstreamTimeout, err = getenvDuration("UPSTREAM_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: must be positive")
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}

	cfg.RateLimitMax = getenvInt("RATE_LIMIT_MAX", 30)
	if cfg.RateLimitWindow, err = getenvDuration("RATE_LIMIT_WINDOW", "1m"); err != nil {
		return nil, err
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
