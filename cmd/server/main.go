package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loanintake/internal/application"
	appstore "loanintake/internal/application/store"
	"loanintake/internal/files"
	"loanintake/internal/identity"
	"loanintake/internal/platform/config"
	"loanintake/internal/platform/httpserver"
	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/platform/redis"
	"loanintake/internal/reference"
	refstore "loanintake/internal/reference/store"
	"loanintake/internal/submission"
	httptransport "loanintake/internal/transport/http"
	"loanintake/internal/validation"
	"loanintake/pkg/platform/circuit"
)

// main wires the reference, identity and submission backends into the draft
// and submission services and serves them over HTTP.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	m := metrics.New()

	cacheClient, err := redis.Connect(context.Background(), cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, caching catalogs in memory", "error", err)
	}
	var cache reference.CatalogCache = refstore.NewInMemory()
	if cacheClient != nil {
		cache = refstore.NewRedis(cacheClient.Client)
		defer cacheClient.Close()
	}

	refs, err := reference.New(
		reference.NewHTTPProvider(cfg.Upstream.ReferenceBaseURL, cfg.Upstream.Timeout, cfg.Upstream.RetryCount),
		reference.WithCache(cache, cfg.Catalogs.CacheTTL),
		reference.WithBreaker(circuit.New("reference",
			circuit.WithFailureThreshold(cfg.Upstream.BreakerFailures),
			circuit.WithCooldown(cfg.Upstream.BreakerCooldown),
		)),
		reference.WithLogger(log),
		reference.WithMetrics(m),
	)
	if err != nil {
		log.Error("reference service", "error", err)
		os.Exit(1)
	}

	gate := files.NewGate(cfg.Uploads.MaxBytes, cfg.Uploads.AllowedTypes, files.WithLogger(log), files.WithMetrics(m))
	drafts, err := application.NewService(
		refs,
		identity.NewHTTPVerifier(cfg.Upstream.IdentityBaseURL, cfg.Upstream.Timeout, cfg.Upstream.RetryCount),
		gate,
		appstore.NewInMemory(),
		application.WithLogger(log),
		application.WithMetrics(m),
	)
	if err != nil {
		log.Error("application service", "error", err)
		os.Exit(1)
	}

	engine := validation.New(validation.WithMinimumAge(cfg.Validation.MinimumAge), validation.WithLogger(log))
	submitter, err := submission.NewService(
		engine,
		submission.NewHTTPEndpoint(cfg.Upstream.SubmissionBaseURL, cfg.Upstream.Timeout),
		submission.WithLogger(log),
		submission.WithMetrics(m),
	)
	if err != nil {
		log.Error("submission service", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := cacheClient.Health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "catalog cache unhealthy", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	httptransport.New(drafts, submitter, cfg.Uploads.MaxBytes,
		httptransport.WithLogger(log),
		httptransport.WithMetrics(m),
	).Register(router)

	srv := httpserver.New(cfg.Server, router)
	log.Info("starting loanintake", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
