package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fernhollow/searchsync/internal/config"
	dbElastic "github.com/fernhollow/searchsync/internal/db/elastic"
	logpkg "github.com/fernhollow/searchsync/internal/logger"
	"github.com/fernhollow/searchsync/internal/metrics"
	documentrepo "github.com/fernhollow/searchsync/internal/repository/document"
	mappingrepo "github.com/fernhollow/searchsync/internal/repository/mapping"
	searchrepo "github.com/fernhollow/searchsync/internal/repository/search"
	chiTransport "github.com/fernhollow/searchsync/internal/transport/chi"
	healthuc "github.com/fernhollow/searchsync/internal/usecase/health"
	ingestuc "github.com/fernhollow/searchsync/internal/usecase/ingest"
	mappinguc "github.com/fernhollow/searchsync/internal/usecase/mapping"
	searchuc "github.com/fernhollow/searchsync/internal/usecase/search"
	"github.com/fernhollow/searchsync/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchsync API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addrs),
		zap.String("tasks_index", cfg.Indices.Tasks),
		zap.String("orgs_index", cfg.Indices.Organizations),
	)

	store, err := dbElastic.NewStore(dbElastic.Config{
		Addrs:    cfg.Elasticsearch.Addrs,
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the store to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Elasticsearch.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	// Register domain metrics explicitly (no init())
	metrics.RegisterReconcileMetrics()

	// Create repositories
	docRepo := documentrepo.New(store)
	schemaRepo := mappingrepo.New(store)
	searchRepo := searchrepo.New(store)

	// Create use case services
	mappingCache := mappinguc.New(
		schemaRepo,
		mappinguc.CandidateFields(cfg.Indices.Tasks, cfg.Indices.Organizations),
		logger,
	)
	ingestSvc := ingestuc.New(docRepo, cfg.Indices.Tasks, cfg.Indices.Organizations, logger)
	searchSvc := searchuc.New(
		searchRepo,
		mappingCache,
		searchuc.NewBuilder(cfg.Indices.Tasks, cfg.Indices.Organizations),
		logger,
	)
	healthSvc := healthuc.New(store, mappingCache)

	// Warm the mapping summary; a failure here only delays exact matching.
	if err := mappingCache.Refresh(ctx); err != nil {
		logger.Warn("Initial mapping refresh failed", zap.Error(err))
	}

	// Create chi server
	server := chiTransport.NewServer(ingestSvc, searchSvc, mappingCache, healthSvc, logger).
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.SharedSecretMiddleware(cfg.Webhook.SharedSecret))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":   "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
