// Package config loads the sync service configuration from YAML.
package config

import "time"

// Config is the root configuration for the sync service.
type Config struct {
	API       APIConfig       `yaml:"api"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Sync      SyncConfig      `yaml:"sync"`
	Database  DatabaseConfig  `yaml:"database"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// APIConfig holds disclosure-provider API settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// RateLimitConfig holds dispatcher window ceilings and pacing.
type RateLimitConfig struct {
	PerMinute         int           `yaml:"per_minute"`
	PerHour           int           `yaml:"per_hour"`
	PerDay            int           `yaml:"per_day"`
	InterRequestDelay time.Duration `yaml:"inter_request_delay"`
	MaxWait           time.Duration `yaml:"max_wait"`
}

// SyncConfig holds crawl and reconciliation defaults.
type SyncConfig struct {
	PageSize       int    `yaml:"page_size"` // provider caps at 250
	MaxPages       int    `yaml:"max_pages"`
	BatchSize      int    `yaml:"batch_size"` // checkpoint write cadence
	PagePolicy     string `yaml:"page_policy"`
	ForceUpdate    bool   `yaml:"force_update"`
	SyncInsiders   bool   `yaml:"sync_insiders"`
	UseCheckpoints bool   `yaml:"use_checkpoints"`
}

// DatabaseConfig holds the persistence and analytics connections.
type DatabaseConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"` // empty disables the analytics sink
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics server
}
