package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
api:
  api_key: test-key
rate_limit:
  per_minute: 5
sync:
  page_size: 100
  page_policy: abort
database:
  postgres_dsn: postgres://localhost/disclosures
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.API.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.API.APIKey)
	}
	if cfg.RateLimit.PerMinute != 5 {
		t.Errorf("PerMinute = %d, want 5", cfg.RateLimit.PerMinute)
	}
	if cfg.Sync.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.Sync.PageSize)
	}
	if cfg.Sync.PagePolicy != "abort" {
		t.Errorf("PagePolicy = %q, want abort", cfg.Sync.PagePolicy)
	}

	// Unset fields pick up defaults.
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.RateLimit.PerHour != DefaultPerHour {
		t.Errorf("PerHour = %d, want default %d", cfg.RateLimit.PerHour, DefaultPerHour)
	}
	if cfg.Sync.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want default %d", cfg.Sync.MaxPages, DefaultMaxPages)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.API.Timeout)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_FMP_KEY", "secret-from-env")

	path := writeConfig(t, `
api:
  api_key: ${TEST_FMP_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.APIKey != "secret-from-env" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.API.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.API.APIKey = "k"
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing api key", func(c *Config) { c.API.APIKey = "" }, "api_key"},
		{"page size over cap", func(c *Config) { c.Sync.PageSize = 500 }, "page_size"},
		{"zero page size", func(c *Config) { c.Sync.PageSize = 0 }, "page_size"},
		{"bad page policy", func(c *Config) { c.Sync.PagePolicy = "retry" }, "page_policy"},
		{"zero max pages", func(c *Config) { c.Sync.MaxPages = 0 }, "max_pages"},
		{"hour below minute", func(c *Config) { c.RateLimit.PerHour = 1 }, "per_hour"},
		{"day below hour", func(c *Config) { c.RateLimit.PerDay = 1 }, "per_day"},
	}

	for _, tt := range tests {
		cfg := valid()
		tt.mutate(cfg)

		err := cfg.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error = %v, want mention of %s", tt.name, err, tt.wantErr)
		}
	}
}
