// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Command server runs the Annolytics API: it polls an annotation tool for
// per-class labeling metrics, keeps rolling history and checkpoints in an
// embedded document store, and serves the analytics HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/annolytics/internal/aggregate"
	"github.com/tomtom215/annolytics/internal/api"
	"github.com/tomtom215/annolytics/internal/checkpoint"
	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/config"
	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/labelstudio"
	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/models"
	"github.com/tomtom215/annolytics/internal/notify"
	"github.com/tomtom215/annolytics/internal/refresh"
	"github.com/tomtom215/annolytics/internal/supervisor"
	"github.com/tomtom215/annolytics/internal/supervisor/services"
	"github.com/tomtom215/annolytics/internal/timeseries"
)

func main() {
	if err := run(); err != nil {
		logging.Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Str("listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("Starting annolytics")

	docs, err := docstore.Open(docstore.Options{
		Path:          cfg.Store.Path,
		ReadRetries:   cfg.Store.ReadRetries,
		RetryInterval: cfg.Store.RetryInterval,
	})
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer func() {
		if cerr := docs.Close(); cerr != nil {
			logging.Err(cerr).Msg("Document store close failed")
		}
	}()

	client := labelstudio.NewClient(labelstudio.Config{
		URL:               cfg.LabelStudio.URL,
		Token:             cfg.LabelStudio.Token,
		PageSize:          cfg.LabelStudio.PageSize,
		Timeout:           cfg.LabelStudio.Timeout,
		RequestsPerSecond: cfg.LabelStudio.RequestsPerSecond,
	})

	projects := history.NewProjectStore(docs)
	categories := history.NewCategoryStore(docs)
	detector := classify.NewModalityDetector(nil)
	assignments := classify.NewAssignmentStore(docs, detector)
	catalog := classify.NewCategoryCatalog(nil)

	checkpoints := checkpoint.NewStore(docs, projects, categories, assignments, client, checkpoint.Config{
		NormalizeClassLookup: cfg.Checkpoint.NormalizeClassLookup,
	})
	notifier := notify.NewEngine(docs, projects, categories, checkpoints, cfg.Notify.ThresholdPct)
	aggregator := aggregate.NewAggregator(client, assignments, projects, categories, catalog)
	growth := aggregate.NewGrowthCalculator(client, assignments, checkpoints)
	series := timeseries.NewEngine(docs, aggregator, projects, assignments)
	refresher := refresh.NewManager(client, projects, aggregator, notifier, series, catalog, cfg.Refresh.BatchSize)
	scheduler := refresh.NewScheduler(docs, refresher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seedSchedulerConfig(ctx, docs, cfg.Refresh); err != nil {
		return fmt.Errorf("seed scheduler config: %w", err)
	}

	handler := api.NewHandler(api.HandlerDeps{
		Client:      client,
		Docs:        docs,
		Projects:    projects,
		Categories:  categories,
		Assignments: assignments,
		Checkpoints: checkpoints,
		Notifier:    notifier,
		Aggregator:  aggregator,
		Growth:      growth,
		Series:      series,
		Refresher:   refresher,
		Scheduler:   scheduler,
		Catalog:     catalog,
		UpstreamURL: cfg.LabelStudio.URL,
	})
	router := api.NewRouter(handler, cfg.Server)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddWorkerService(scheduler)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, treeCfg.ShutdownTimeout))

	err = tree.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		logging.Info().Msg("Shutdown complete")
		return nil
	}
	return err
}

// seedSchedulerConfig writes the bootstrap scheduler settings when no
// scheduler document exists yet. Runtime edits through the API always win
// over the static config after first start.
func seedSchedulerConfig(ctx context.Context, docs *docstore.Store, cfg config.RefreshConfig) error {
	var existing models.SchedulerConfig
	found, err := docs.Read(ctx, refresh.SchedulerConfigDocKey, &existing)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	interval := cfg.IntervalMinutes
	if interval <= 0 {
		interval = refresh.DefaultIntervalMinutes
	}
	return docs.Write(ctx, refresh.SchedulerConfigDocKey, models.SchedulerConfig{
		Enabled:         cfg.SchedulerEnabled,
		IntervalMinutes: interval,
	})
}
