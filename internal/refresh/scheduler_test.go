// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package refresh

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/annolytics/internal/models"
)

func newScheduler(t *testing.T) (*Scheduler, *fixture) {
	t.Helper()
	f := newFixture(t, &fakeClient{})
	return NewScheduler(f.docs, f.manager), f
}

func TestGetConfig_Defaults(t *testing.T) {
	s, _ := newScheduler(t)

	cfg, err := s.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Enabled {
		t.Error("expected Enabled=false by default")
	}
	if cfg.IntervalMinutes != DefaultIntervalMinutes {
		t.Errorf("IntervalMinutes = %d, want %d", cfg.IntervalMinutes, DefaultIntervalMinutes)
	}
}

func TestSetConfig(t *testing.T) {
	ctx := context.Background()
	s, _ := newScheduler(t)

	cfg, err := s.SetConfig(ctx, true, 30)
	if err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if !cfg.Enabled || cfg.IntervalMinutes != 30 {
		t.Errorf("SetConfig = %+v, want enabled 30m", cfg)
	}

	got, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if !got.Enabled || got.IntervalMinutes != 30 {
		t.Errorf("persisted config = %+v", got)
	}
}

func TestSetConfig_RejectsInvalidInterval(t *testing.T) {
	s, _ := newScheduler(t)

	for _, interval := range []int{0, -5} {
		if _, err := s.SetConfig(context.Background(), true, interval); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("SetConfig(%d) = %v, want ErrInvalidInterval", interval, err)
		}
	}
}

func TestSetConfig_PreservesLastRunAt(t *testing.T) {
	ctx := context.Background()
	s, f := newScheduler(t)

	stamp := "2026-08-31T10:00:00Z"
	err := f.docs.Write(ctx, SchedulerConfigDocKey, models.SchedulerConfig{
		Enabled: true, IntervalMinutes: 60, LastRunAt: stamp,
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := s.SetConfig(ctx, false, 15); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	got, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if got.LastRunAt != stamp {
		t.Errorf("LastRunAt = %q, want preserved %q", got.LastRunAt, stamp)
	}
}

func TestDue(t *testing.T) {
	s, _ := newScheduler(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tests := []struct {
		name      string
		lastRunAt string
		want      bool
	}{
		{"never ran", "", true},
		{"unparseable stamp", "yesterday-ish", true},
		{"interval elapsed", now.Add(-61 * time.Minute).Format(time.RFC3339), true},
		{"exactly at interval", now.Add(-60 * time.Minute).Format(time.RFC3339), true},
		{"too recent", now.Add(-30 * time.Minute).Format(time.RFC3339), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.SchedulerConfig{IntervalMinutes: 60, LastRunAt: tt.lastRunAt}
			if got := s.due(cfg); got != tt.want {
				t.Errorf("due(%q) = %v, want %v", tt.lastRunAt, got, tt.want)
			}
		})
	}
}

func TestRunOnce_LogsAndRecordsLastRun(t *testing.T) {
	ctx := context.Background()
	s, _ := newScheduler(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.runOnce(ctx)

	cfg, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.LastRunAt != now.Format(time.RFC3339) {
		t.Errorf("LastRunAt = %q, want %q", cfg.LastRunAt, now.Format(time.RFC3339))
	}

	lines, err := s.Log(ctx, 10)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("log has %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "refreshed 0 projects") {
		t.Errorf("log line = %q", lines[0])
	}
}
