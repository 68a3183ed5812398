package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig verifies the defaults. This serves as living documentation:
// a change to a default breaks the test and must be intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected Endpoint %q, got %q", DefaultEndpoint, cfg.Endpoint)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected Timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("expected Concurrency 4, got %d", cfg.Concurrency)
	}
	if cfg.Limit != 0 {
		t.Errorf("expected Limit 0 (unbounded), got %d", cfg.Limit)
	}
	if !cfg.SaveHistory {
		t.Error("expected SaveHistory to default to true")
	}
	if cfg.DataDir == "" {
		t.Error("expected DataDir to default to the XDG data directory")
	}
}

// TestConfigValidate exercises each validation rule in isolation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration. Tests mutate one
	// field at a time to pin each rule.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.APIKey = "real-key"
		cfg.TargetVersion = "5.5.09.04"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: nil},
		{name: "missing API key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: ErrMissingAPIKey},
		{name: "placeholder API key", mutate: func(c *Config) { c.APIKey = PlaceholderAPIKey }, wantErr: ErrPlaceholderAPIKey},
		{name: "missing target version", mutate: func(c *Config) { c.TargetVersion = "" }, wantErr: ErrMissingTargetVersion},
		{name: "negative limit", mutate: func(c *Config) { c.Limit = -1 }, wantErr: ErrInvalidLimit},
		{name: "positive limit is valid", mutate: func(c *Config) { c.Limit = 3 }, wantErr: nil},
		{name: "missing endpoint", mutate: func(c *Config) { c.Endpoint = "" }, wantErr: ErrMissingEndpoint},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "csv alone is valid", mutate: func(c *Config) { c.CSVPath = "out.csv" }, wantErr: nil},
		{name: "csv and json conflict", mutate: func(c *Config) { c.CSVPath = "out.csv"; c.JSONReport = true }, wantErr: ErrConflictingOutputs},
		{name: "json and markdown conflict", mutate: func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, wantErr: ErrConflictingOutputs},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigLoadEnv verifies environment merging, including precedence of
// values already set by flags. Uses t.Setenv, so no t.Parallel here.
func TestConfigLoadEnv(t *testing.T) {
	t.Run("reads all three variables", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-key")
		t.Setenv(EnvAppVersion, "5.5.09")
		t.Setenv(EnvLimit, "7")

		cfg := NewConfig()
		if err := cfg.LoadEnv(); err != nil {
			t.Fatalf("LoadEnv() error: %v", err)
		}

		if cfg.APIKey != "env-key" {
			t.Errorf("APIKey = %q, want %q", cfg.APIKey, "env-key")
		}
		if cfg.TargetVersion != "5.5.09" {
			t.Errorf("TargetVersion = %q, want %q", cfg.TargetVersion, "5.5.09")
		}
		if cfg.Limit != 7 {
			t.Errorf("Limit = %d, want 7", cfg.Limit)
		}
	})

	t.Run("flag values win over environment", func(t *testing.T) {
		t.Setenv(EnvAppVersion, "env-version")
		t.Setenv(EnvLimit, "7")

		cfg := NewConfig()
		cfg.TargetVersion = "flag-version"
		cfg.Limit = 2
		if err := cfg.LoadEnv(); err != nil {
			t.Fatalf("LoadEnv() error: %v", err)
		}

		if cfg.TargetVersion != "flag-version" {
			t.Errorf("TargetVersion = %q, want flag value", cfg.TargetVersion)
		}
		if cfg.Limit != 2 {
			t.Errorf("Limit = %d, want flag value 2", cfg.Limit)
		}
	})

	t.Run("non-numeric LIMIT is rejected", func(t *testing.T) {
		t.Setenv(EnvLimit, "many")

		cfg := NewConfig()
		if err := cfg.LoadEnv(); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit, got %v", err)
		}
	})

	t.Run("zero LIMIT is rejected", func(t *testing.T) {
		t.Setenv(EnvLimit, "0")

		cfg := NewConfig()
		if err := cfg.LoadEnv(); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit, got %v", err)
		}
	})

	t.Run("absent LIMIT means unbounded", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.LoadEnv(); err != nil {
			t.Fatalf("LoadEnv() error: %v", err)
		}
		if cfg.Limit != 0 {
			t.Errorf("Limit = %d, want 0", cfg.Limit)
		}
	})
}
