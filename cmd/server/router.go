package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	boardhandler "taskboard/internal/board/handler"
	platformmetrics "taskboard/internal/platform/metrics"
	"taskboard/internal/platform/middleware"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/platform/middleware/metadata"
	"taskboard/pkg/platform/middleware/requesttime"
)

type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type routerDeps struct {
	logger         *slog.Logger
	registry       *prometheus.Registry
	httpMetrics    *platformmetrics.Metrics
	boards         *boardhandler.Handler
	checks         []healthCheck
	requestTimeout time.Duration
}

func newRouter(deps routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Latency(deps.httpMetrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(deps.checks))
	r.Handle("/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if deps.requestTimeout > 0 {
			r.Use(chimw.Timeout(deps.requestTimeout))
		}
		r.Use(middleware.RequireUser(deps.logger))
		deps.boards.Register(r)
	})
	return r
}

func readiness(checks []healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[c.name] = err.Error()
				continue
			}
			report[c.name] = "ok"
		}
		httputil.WriteJSON(w, status, report)
	}
}
