// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration must validate, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad upstream URL",
			mutate:  func(c *Config) { c.LabelStudio.URL = "not a url" },
			wantErr: "labelstudio.url",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.LabelStudio.PageSize = 0 },
			wantErr: "labelstudio.page_size",
		},
		{
			name:    "empty store path",
			mutate:  func(c *Config) { c.Store.Path = "" },
			wantErr: "store.path",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Refresh.BatchSize = 0 },
			wantErr: "refresh.batch_size",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name: "rate limit ignored when disabled",
			mutate: func(c *Config) {
				c.Server.RateLimitDisabled = true
				c.Server.RateLimitReqs = 0
			},
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.Notify.ThresholdPct = 0 },
			wantErr: "notify.threshold_pct",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "text" },
			wantErr: "logging.format",
		},
		{
			name: "multiple failures reported together",
			mutate: func(c *Config) {
				c.Store.Path = ""
				c.Notify.ThresholdPct = -1
			},
			wantErr: "store.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LABEL_STUDIO_URL", "http://annotator.local:8080")
	t.Setenv("LABEL_STUDIO_TOKEN", "secret-token")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORE_PATH", t.TempDir())
	t.Setenv("NOTIFY_THRESHOLD_PCT", "35.5")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("STORE_RETRY_INTERVAL", "100ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LabelStudio.URL != "http://annotator.local:8080" {
		t.Errorf("URL = %q", cfg.LabelStudio.URL)
	}
	if cfg.LabelStudio.Token != "secret-token" {
		t.Errorf("Token = %q", cfg.LabelStudio.Token)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Notify.ThresholdPct != 35.5 {
		t.Errorf("ThresholdPct = %v, want 35.5", cfg.Notify.ThresholdPct)
	}
	if !cfg.Refresh.SchedulerEnabled {
		t.Error("SchedulerEnabled should be true")
	}
	if cfg.Store.RetryInterval != 100*time.Millisecond {
		t.Errorf("RetryInterval = %v, want 100ms", cfg.Store.RetryInterval)
	}

	want := []string{"http://a.local", "http://b.local"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadUnmappedEnvIgnored(t *testing.T) {
	t.Setenv("RANDOM_UNRELATED_VAR", "true")
	t.Setenv("PORT", "1234")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Port = %d, want default 8090 (PORT is not a mapped variable)", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "LABEL_STUDIO_URL", want: "labelstudio.url"},
		{in: "STORE_PATH", want: "store.path"},
		{in: "SCHEDULER_INTERVAL_MINUTES", want: "refresh.interval_minutes"},
		{in: "CHECKPOINT_NORMALIZE_CLASS_LOOKUP", want: "checkpoint.normalize_class_lookup"},
		{in: "LOG_LEVEL", want: "logging.level"},
		{in: "UNKNOWN_VAR", want: ""},
		{in: "PATH", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
