// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package supervisor wires long-running services into a suture supervision
// tree with restart backoff and structured event logging.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervision parameters.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the wait when the threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout bounds graceful shutdown per service. Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's documented production defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is a two-layer supervision tree: background workers (the refresh
// scheduler) and the API server are supervised separately, so a crashing
// worker cannot take the HTTP surface down with it.
type Tree struct {
	root    *suture.Supervisor
	workers *suture.Supervisor
	api     *suture.Supervisor
}

// NewTree builds the supervision tree. Events are logged through the given
// slog logger via sutureslog.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	handler := &sutureslog.Handler{Logger: logger}
	rootSpec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("annolytics", rootSpec)
	workers := suture.New("worker-layer", childSpec)
	api := suture.New("api-layer", childSpec)
	root.Add(workers)
	root.Add(api)

	return &Tree{root: root, workers: workers, api: api}
}

// AddWorkerService adds a background service to the worker layer.
func (t *Tree) AddWorkerService(svc suture.Service) suture.ServiceToken {
	return t.workers.Add(svc)
}

// AddAPIService adds a service to the API layer.
func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// Serve runs the tree until the context is canceled, then shuts every
// service down and returns.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
