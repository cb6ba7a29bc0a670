package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Stores
	RedisURL    string
	PostgresURL string

	// Upstream services
	ContentServiceURL      string
	UserServiceURL         string
	GamificationServiceURL string
	EngagementServiceURL   string
	GatewayTimeout         time.Duration

	// Ranking rebuild
	RebuildInterval time.Duration
	FetchPageSize   int
	MaxFetchPages   int
	StatsBatchSize  int
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8086),
		Env:  getEnv("ENV", "development"),

		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),

		RebuildInterval: getEnvDuration("REBUILD_INTERVAL", 24*time.Hour),
		FetchPageSize:   getEnvInt("FETCH_PAGE_SIZE", 100),
		MaxFetchPages:   getEnvInt("MAX_FETCH_PAGES", 100),
		StatsBatchSize:  getEnvInt("STATS_BATCH_SIZE", 100),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Engagement service is optional; platform statistics degrade without it.
	cfg.EngagementServiceURL = getEnv("ENGAGEMENT_SERVICE_URL", "")

	// Critical configuration - fail if missing
	var err error
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.ContentServiceURL, err = getEnvRequired("CONTENT_SERVICE_URL"); err != nil {
		return nil, err
	}
	if cfg.UserServiceURL, err = getEnvRequired("USER_SERVICE_URL"); err != nil {
		return nil, err
	}
	if cfg.GamificationServiceURL, err = getEnvRequired("GAMIFICATION_SERVICE_URL"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
