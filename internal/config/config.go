package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	ServiceName    string
	LogLevel       string
	// RateLimitWindow is the sliding-window length for admission control.
	RateLimitWindow time.Duration
	// RateLimitMax is the request ceiling per identity within the window.
	RateLimitMax int
	// RedisAddr switches the rate limiter to a shared redis store when set.
	// Empty means the in-process limiter.
	RedisAddr string
}

func Load() (*Config, error) {
	windowSeconds, err := getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	maxRequests, err := getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		ServiceName:     getEnv("SERVICE_NAME", "nidgate-api"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RateLimitWindow: time.Duration(windowSeconds) * time.Second,
		RateLimitMax:    maxRequests,
		RedisAddr:       getEnv("REDIS_ADDR", ""),
	}

	return cfg, nil
}

// Validate reports every missing or out-of-range setting in one error so a
// misconfigured deploy fails with the full picture.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	if c.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
