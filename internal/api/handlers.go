// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"github.com/tomtom215/annolytics/internal/aggregate"
	"github.com/tomtom215/annolytics/internal/checkpoint"
	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/refresh"
	"github.com/tomtom215/annolytics/internal/timeseries"

	"github.com/tomtom215/annolytics/internal/notify"
)

// Handler holds every dependency the HTTP surface needs. All fields are
// required unless noted.
type Handler struct {
	client      refresh.Client
	docs        *docstore.Store
	projects    *history.Store
	categories  *history.Store
	assignments *classify.AssignmentStore
	checkpoints *checkpoint.Store
	notifier    *notify.Engine
	aggregator  *aggregate.Aggregator
	growth      *aggregate.GrowthCalculator
	series      *timeseries.Engine
	refresher   *refresh.Manager
	scheduler   *refresh.Scheduler
	catalog     *classify.CategoryCatalog

	// upstreamURL is reported by the readiness check; empty means the
	// annotation tool is not configured.
	upstreamURL string
}

// HandlerDeps bundles the constructor arguments for NewHandler.
type HandlerDeps struct {
	Client      refresh.Client
	Docs        *docstore.Store
	Projects    *history.Store
	Categories  *history.Store
	Assignments *classify.AssignmentStore
	Checkpoints *checkpoint.Store
	Notifier    *notify.Engine
	Aggregator  *aggregate.Aggregator
	Growth      *aggregate.GrowthCalculator
	Series      *timeseries.Engine
	Refresher   *refresh.Manager
	Scheduler   *refresh.Scheduler
	Catalog     *classify.CategoryCatalog
	UpstreamURL string
}

// NewHandler builds the API handler set.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		client:      deps.Client,
		docs:        deps.Docs,
		projects:    deps.Projects,
		categories:  deps.Categories,
		assignments: deps.Assignments,
		checkpoints: deps.Checkpoints,
		notifier:    deps.Notifier,
		aggregator:  deps.Aggregator,
		growth:      deps.Growth,
		series:      deps.Series,
		refresher:   deps.Refresher,
		scheduler:   deps.Scheduler,
		catalog:     deps.Catalog,
		upstreamURL: deps.UpstreamURL,
	}
}
