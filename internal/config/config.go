// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/almanac/douban"
	"github.com/briangreenhill/almanac/history"
)

// Config holds all application configuration
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	WarmSchedule    string        `env:"WARM_SCHEDULE" envDefault:"@every 50m"`

	History HistoryConfig `envPrefix:"HISTORY_"`
	Douban  DoubanConfig  `envPrefix:"DOUBAN_"`
}

// HistoryConfig holds "today in history" source configuration
type HistoryConfig struct {
	BaseURL string `env:"BASE_URL"`
}

// DoubanConfig holds Douban ranking source configuration
type DoubanConfig struct {
	BaseURL    string        `env:"BASE_URL"`
	TTL        time.Duration `env:"TTL" envDefault:"1h"`
	UserAgent  string        `env:"USER_AGENT"`
	Referer    string        `env:"REFERER"`
	ImageProxy string        `env:"IMAGE_PROXY"`
}

// Default returns the configuration used when no variables are set
func Default() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		UpstreamTimeout: 10 * time.Second,
		WarmSchedule:    "@every 50m",
		History: HistoryConfig{
			BaseURL: history.DefaultBaseURL,
		},
		Douban: DoubanConfig{
			BaseURL:    douban.DefaultBaseURL,
			TTL:        time.Hour,
			UserAgent:  douban.DefaultUserAgent,
			Referer:    douban.DefaultReferer,
			ImageProxy: douban.DefaultImageProxy,
		},
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := Default()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasRedis returns true if the cache warmer can be started
func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

// Level returns the parsed log level
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	if c.Douban.TTL <= 0 {
		return fmt.Errorf("DOUBAN_TTL must be positive, got %s", c.Douban.TTL)
	}
	for name, raw := range map[string]string{
		"HISTORY_BASE_URL":   c.History.BaseURL,
		"DOUBAN_BASE_URL":    c.Douban.BaseURL,
		"DOUBAN_IMAGE_PROXY": c.Douban.ImageProxy,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s scheme must be http or https, got %q", name, u.Scheme)
		}
	}
	return nil
}
