// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package api provides the HTTP surface: a chi router over the analytics
// engines, a standard success/error envelope, request validation, and
// Prometheus exposition.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/annolytics/internal/config"
	"github.com/tomtom215/annolytics/internal/models"
)

// Router assembles the HTTP handler tree.
type Router struct {
	handler *Handler
	cfg     config.ServerConfig
}

// NewRouter builds a router over the given handler set.
func NewRouter(handler *Handler, cfg config.ServerConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup returns the complete HTTP handler: global middleware, the /api/v1
// tree, and the Prometheus endpoint.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		if !rt.cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(rt.cfg.RateLimitReqs, rt.cfg.RateLimitWindow))
		}
		r.Use(prometheusMetrics)

		r.Get("/healthz", rt.handler.Healthz)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.handler.ListProjects)
			r.Post("/refresh-all", rt.handler.RefreshAll)
			r.Get("/refresh-progress", rt.handler.RefreshProgress)
			r.Get("/{id}", rt.handler.ProjectHistory)
			r.Post("/{id}/refresh", rt.handler.RefreshProject)
			r.Put("/{id}/modality", rt.handler.SetProjectModality)
		})

		r.Route("/checkpoints", func(r chi.Router) {
			r.Get("/", rt.handler.Checkpoints)
			r.Get("/projects/{id}", rt.handler.GetProjectCheckpoint)
			r.Post("/projects/{id}", rt.handler.CreateProjectCheckpoint)
			r.Put("/projects/{id}/note", rt.handler.UpdateProjectCheckpointNote)
			r.Post("/categories/{category}", rt.handler.CreateCategoryCheckpoint)
			r.Put("/categories/{category}/note", rt.handler.UpdateCategoryCheckpointNote)
			r.Post("/classes", rt.handler.CreateClassCheckpoint)
			r.Put("/classes/note", rt.handler.UpdateClassCheckpointNote)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", rt.handler.Notifications)
			r.Delete("/{index}", rt.handler.DismissNotification)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", rt.handler.Categories)
			r.Get("/{category}/history", rt.handler.CategoryHistory)
			r.Get("/{category}/latest", rt.handler.CategoryLatest)
		})

		r.Get("/metrics/combined", rt.handler.CombinedMetrics)
		r.Get("/growth", rt.handler.Growth)

		r.Route("/time-series", func(r chi.Router) {
			r.Get("/", rt.handler.TimeSeries)
			r.Post("/backfill", rt.handler.BackfillTimeSeries)
		})

		r.Route("/scheduler", func(r chi.Router) {
			r.Get("/", rt.handler.SchedulerConfig)
			r.Put("/", rt.handler.UpdateSchedulerConfig)
			r.Get("/log", rt.handler.SchedulerLog)
		})

		r.Get("/modalities", rt.handler.Modalities)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no such endpoint", nil)
	})

	return r
}
