package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Env           string
	ListenAddr    string
	DatabaseURL   string
	PlatformURL   string
	UploadURL     string
	CheckWorker   int
	CheckInterval time.Duration

	// Risk policy knobs; see PolicyProvider.
	MinimumRiskScore int
	MaxSummaryCount  int
	MaxInfoCount     int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:           getenv("APP_ENV", "development"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PlatformURL:   getenv("PLATFORM_URL", "http://localhost:9090"),
		UploadURL:     os.Getenv("UPLOAD_URL"),
		CheckWorker:   getenvInt("CHECK_WORKER", 0),
		CheckInterval: getenvDuration("CHECK_INTERVAL", 30*time.Minute),

		MinimumRiskScore: getenvInt("EXPOSURE_MIN_RISK_SCORE", 0),
		MaxSummaryCount:  getenvInt("EXPOSURE_MAX_SUMMARIES", 0),
		MaxInfoCount:     getenvInt("EXPOSURE_MAX_INFOS", 0),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
