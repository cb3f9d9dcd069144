// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority
// order. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/annolytics/config.yaml",
	"/etc/annolytics/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, applied first and then
// overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		LabelStudio: LabelStudioConfig{
			URL:               "",
			Token:             "",
			PageSize:          100,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 10,
		},
		Store: StoreConfig{
			Path:          "/data/annolytics",
			ReadRetries:   3,
			RetryInterval: 50 * time.Millisecond,
		},
		Refresh: RefreshConfig{
			BatchSize:        5,
			SchedulerEnabled: false,
			IntervalMinutes:  60,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8090,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Checkpoint: CheckpointConfig{
			NormalizeClassLookup: false,
		},
		Notify: NotifyConfig{
			ThresholdPct: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds configuration from layered sources with clear precedence:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or empty.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as plain strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for known
// slice fields. YAML-sourced values are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are dropped so stray environment entries never pollute
// the configuration.
//
// Examples:
//   - LABEL_STUDIO_URL -> labelstudio.url
//   - STORE_PATH -> store.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Annotation tool mappings
		"label_studio_url":        "labelstudio.url",
		"label_studio_token":      "labelstudio.token",
		"label_studio_page_size":  "labelstudio.page_size",
		"label_studio_timeout":    "labelstudio.timeout",
		"label_studio_rate_limit": "labelstudio.requests_per_second",

		// Store mappings
		"store_path":           "store.path",
		"store_read_retries":   "store.read_retries",
		"store_retry_interval": "store.retry_interval",

		// Refresh and scheduler mappings
		"refresh_batch_size":         "refresh.batch_size",
		"scheduler_enabled":          "refresh.scheduler_enabled",
		"scheduler_interval_minutes": "refresh.interval_minutes",

		// Server mappings
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_timeout":        "server.timeout",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"disable_rate_limit":  "server.rate_limit_disabled",

		// Checkpoint mappings
		"checkpoint_normalize_class_lookup": "checkpoint.normalize_class_lookup",

		// Notification mappings
		"notify_threshold_pct": "notify.threshold_pct",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
