package main

import (
	"campaign-kpi/logging"
	"campaign-kpi/metrics"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsServer struct {
	srv *http.Server
}

// newRouter serves /metrics from the application registry and a liveness
// probe on /healthz.
func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func startMetricsServer(addr string) *metricsServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info().Str("addr", addr).Msg("Metrics server listening on /metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return &metricsServer{srv: srv}
}

// Shutdown stops the server, waiting up to five seconds for scrapes in flight.
func (s *metricsServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("Metrics server shutdown")
	}
}
