// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/models"
)

// Persisted scheduler documents.
const (
	SchedulerConfigDocKey = "scheduler_config"
	SchedulerLogKey       = "scheduler_log"
)

// DefaultIntervalMinutes is the refresh cadence when none is configured.
const DefaultIntervalMinutes = 60

// ErrInvalidInterval rejects non-positive scheduler intervals.
var ErrInvalidInterval = errors.New("refresh: scheduler interval must be at least 1 minute")

// Scheduler runs full refreshes on a persisted interval. Configuration
// changes take effect on the next tick without a restart, since the config
// document is re-read each cycle.
//
// Implements suture.Service.
type Scheduler struct {
	docs    *docstore.Store
	manager *Manager
	now     func() time.Time
}

// NewScheduler builds a refresh scheduler.
func NewScheduler(docs *docstore.Store, manager *Manager) *Scheduler {
	return &Scheduler{docs: docs, manager: manager, now: time.Now}
}

// GetConfig returns the persisted scheduler configuration, with defaults
// applied when no document exists yet.
func (s *Scheduler) GetConfig(ctx context.Context) (models.SchedulerConfig, error) {
	cfg := models.SchedulerConfig{IntervalMinutes: DefaultIntervalMinutes}
	if _, err := s.docs.Read(ctx, SchedulerConfigDocKey, &cfg); err != nil {
		return models.SchedulerConfig{}, err
	}
	if cfg.IntervalMinutes <= 0 {
		cfg.IntervalMinutes = DefaultIntervalMinutes
	}
	return cfg, nil
}

// SetConfig validates and persists the scheduler configuration. LastRunAt is
// owned by the run loop and preserved across config writes.
func (s *Scheduler) SetConfig(ctx context.Context, enabled bool, intervalMinutes int) (models.SchedulerConfig, error) {
	if intervalMinutes <= 0 {
		return models.SchedulerConfig{}, ErrInvalidInterval
	}
	var stored models.SchedulerConfig
	err := docstore.Update(ctx, s.docs, SchedulerConfigDocKey, models.SchedulerConfig{}, func(cfg *models.SchedulerConfig) error {
		cfg.Enabled = enabled
		cfg.IntervalMinutes = intervalMinutes
		stored = *cfg
		return nil
	})
	if err != nil {
		return models.SchedulerConfig{}, err
	}
	logging.Info().
		Bool("enabled", enabled).
		Int("interval_minutes", intervalMinutes).
		Msg("Scheduler configuration updated")
	return stored, nil
}

// Log returns the newest scheduler log lines, oldest first, capped at limit.
func (s *Scheduler) Log(ctx context.Context, limit int) ([]string, error) {
	return s.docs.ReadLines(ctx, SchedulerLogKey, limit)
}

// Serve implements suture.Service. It ticks once a minute, re-reads the
// configuration, and fires a synchronous full refresh when the configured
// interval has elapsed since the last run. A tick that lands while a manual
// bulk refresh is in flight is skipped, not queued.
func (s *Scheduler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		cfg, err := s.GetConfig(ctx)
		if err != nil {
			logging.Error().Err(err).Msg("Scheduler config read failed")
			continue
		}
		if !cfg.Enabled {
			continue
		}
		if !s.due(cfg) {
			continue
		}
		s.runOnce(ctx)
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Scheduler) String() string {
	return "refresh-scheduler"
}

// due reports whether the configured interval has elapsed since the last
// recorded run. A missing or unparseable last-run stamp means a run is due.
func (s *Scheduler) due(cfg models.SchedulerConfig) bool {
	if cfg.LastRunAt == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, cfg.LastRunAt)
	if err != nil {
		return true
	}
	return s.now().Sub(last) >= time.Duration(cfg.IntervalMinutes)*time.Minute
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := s.now()
	err := s.manager.Run(ctx)
	switch {
	case errors.Is(err, ErrRefreshRunning):
		logging.Debug().Msg("Scheduled refresh skipped, bulk run in flight")
		return
	case err != nil:
		logging.Error().Err(err).Msg("Scheduled refresh failed")
		s.appendLog(ctx, fmt.Sprintf("%s refresh failed: %v", start.Format(time.RFC3339), err))
		return
	}

	progress := s.manager.Progress()
	s.appendLog(ctx, fmt.Sprintf("%s refreshed %d projects (%d failed) in %s",
		start.Format(time.RFC3339), progress.Completed, progress.Failed, s.now().Sub(start).Round(time.Millisecond)))

	updateErr := docstore.Update(ctx, s.docs, SchedulerConfigDocKey, models.SchedulerConfig{}, func(cfg *models.SchedulerConfig) error {
		cfg.LastRunAt = start.Format(time.RFC3339)
		return nil
	})
	if updateErr != nil {
		logging.Warn().Err(updateErr).Msg("Failed to record scheduler last run")
	}
}

func (s *Scheduler) appendLog(ctx context.Context, line string) {
	if err := s.docs.AppendLine(ctx, SchedulerLogKey, line); err != nil {
		logging.Warn().Err(err).Msg("Scheduler log append failed")
	}
}
