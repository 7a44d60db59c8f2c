package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "https://financialmodelingprep.com/stable"
	DefaultAPITimeout        = 30 * time.Second
	DefaultPerMinute         = 10
	DefaultPerHour           = 300
	DefaultPerDay            = 2000
	DefaultInterRequestDelay = 500 * time.Millisecond
	DefaultMaxWait           = 2 * time.Minute
	DefaultPageSize          = 250
	DefaultMaxPages          = 20
	DefaultBatchSize         = 100
	DefaultPagePolicy        = "skip"
	DefaultMetricsAddr       = ":9090"
)

// ApplyDefaults fills zero-valued optional fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = DefaultPerMinute
	}
	if c.RateLimit.PerHour == 0 {
		c.RateLimit.PerHour = DefaultPerHour
	}
	if c.RateLimit.PerDay == 0 {
		c.RateLimit.PerDay = DefaultPerDay
	}
	if c.RateLimit.InterRequestDelay == 0 {
		c.RateLimit.InterRequestDelay = DefaultInterRequestDelay
	}
	if c.RateLimit.MaxWait == 0 {
		c.RateLimit.MaxWait = DefaultMaxWait
	}

	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = DefaultPageSize
	}
	if c.Sync.MaxPages == 0 {
		c.Sync.MaxPages = DefaultMaxPages
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = DefaultBatchSize
	}
	if c.Sync.PagePolicy == "" {
		c.Sync.PagePolicy = DefaultPagePolicy
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
}
