// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config is the full application configuration.
type Config struct {
	LabelStudio LabelStudioConfig `koanf:"labelstudio"`
	Store       StoreConfig       `koanf:"store"`
	Refresh     RefreshConfig     `koanf:"refresh"`
	Server      ServerConfig      `koanf:"server"`
	Checkpoint  CheckpointConfig  `koanf:"checkpoint"`
	Notify      NotifyConfig      `koanf:"notify"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// LabelStudioConfig configures the annotation tool client.
type LabelStudioConfig struct {
	URL               string        `koanf:"url"`
	Token             string        `koanf:"token"`
	PageSize          int           `koanf:"page_size"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// StoreConfig configures the document store.
type StoreConfig struct {
	Path          string        `koanf:"path"`
	ReadRetries   uint64        `koanf:"read_retries"`
	RetryInterval time.Duration `koanf:"retry_interval"`
}

// RefreshConfig configures bulk refresh runs and the scheduler's bootstrap
// state. The scheduler's live configuration is persisted in the store and
// editable at runtime; these values seed it on first start only.
type RefreshConfig struct {
	BatchSize        int  `koanf:"batch_size"`
	SchedulerEnabled bool `koanf:"scheduler_enabled"`
	IntervalMinutes  int  `koanf:"interval_minutes"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// CheckpointConfig configures checkpoint behavior.
type CheckpointConfig struct {
	// NormalizeClassLookup switches class checkpoints to normalize the class
	// name before looking up stored per-class counts. Off by default; see
	// internal/checkpoint for the behavioral difference.
	NormalizeClassLookup bool `koanf:"normalize_class_lookup"`
}

// NotifyConfig configures growth notifications.
type NotifyConfig struct {
	ThresholdPct float64 `koanf:"threshold_pct"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks cross-field constraints that koanf cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.LabelStudio.URL != "" {
		if _, err := url.ParseRequestURI(c.LabelStudio.URL); err != nil {
			errs = append(errs, fmt.Errorf("labelstudio.url is not a valid URL: %w", err))
		}
	}
	if c.LabelStudio.PageSize <= 0 {
		errs = append(errs, errors.New("labelstudio.page_size must be positive"))
	}
	if c.LabelStudio.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("labelstudio.requests_per_second must be positive"))
	}

	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path must be set"))
	}

	if c.Refresh.BatchSize <= 0 {
		errs = append(errs, errors.New("refresh.batch_size must be positive"))
	}
	if c.Refresh.IntervalMinutes <= 0 {
		errs = append(errs, errors.New("refresh.interval_minutes must be at least 1"))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs <= 0 {
			errs = append(errs, errors.New("server.rate_limit_reqs must be positive"))
		}
		if c.Server.RateLimitWindow <= 0 {
			errs = append(errs, errors.New("server.rate_limit_window must be positive"))
		}
	}

	if c.Notify.ThresholdPct <= 0 {
		errs = append(errs, errors.New("notify.threshold_pct must be positive"))
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not a known level", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}

	return errors.Join(errs...)
}
