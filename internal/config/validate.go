package config

import (
	"fmt"

	"disclosure-sync/internal/fmp"
)

// Validate checks that required fields are present and sane.
func (c *Config) Validate() error {
	if c.API.APIKey == "" {
		return fmt.Errorf("api.api_key is required")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Sync.PageSize < 1 || c.Sync.PageSize > fmp.MaxPageLimit {
		return fmt.Errorf("sync.page_size must be between 1 and %d, got %d", fmp.MaxPageLimit, c.Sync.PageSize)
	}
	if c.Sync.MaxPages < 1 {
		return fmt.Errorf("sync.max_pages must be positive, got %d", c.Sync.MaxPages)
	}
	if c.Sync.BatchSize < 1 {
		return fmt.Errorf("sync.batch_size must be positive, got %d", c.Sync.BatchSize)
	}
	switch c.Sync.PagePolicy {
	case "skip", "abort":
	default:
		return fmt.Errorf("sync.page_policy must be skip or abort, got %q", c.Sync.PagePolicy)
	}
	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("rate_limit.per_minute must be positive, got %d", c.RateLimit.PerMinute)
	}
	if c.RateLimit.PerHour < c.RateLimit.PerMinute {
		return fmt.Errorf("rate_limit.per_hour must be >= per_minute")
	}
	if c.RateLimit.PerDay < c.RateLimit.PerHour {
		return fmt.Errorf("rate_limit.per_day must be >= per_hour")
	}
	return nil
}
