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

	"github.com/crimedex/crimedex/internal/config"
	"github.com/crimedex/crimedex/internal/db"
	dbMemory "github.com/crimedex/crimedex/internal/db/memory"
	dbRedis "github.com/crimedex/crimedex/internal/db/redis"
	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/index"
	indexHTTP "github.com/crimedex/crimedex/internal/index/httpapi"
	indexSQLite "github.com/crimedex/crimedex/internal/index/sqlite"
	logpkg "github.com/crimedex/crimedex/internal/logger"
	"github.com/crimedex/crimedex/internal/metrics"
	"github.com/crimedex/crimedex/internal/repository/searchcache"
	chiTransport "github.com/crimedex/crimedex/internal/transport/chi"
	healthuc "github.com/crimedex/crimedex/internal/usecase/health"
	searchuc "github.com/crimedex/crimedex/internal/usecase/search"
	"github.com/crimedex/crimedex/internal/version"
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

	logger.Info("Starting crimedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("index_driver", cfg.Index.Driver),
	)

	// Create cache store based on driver
	var store db.Store
	switch cfg.Cache.Driver {
	case "memory":
		store = dbMemory.NewStore()
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	// Wait for cache backend to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache backend not ready", zap.Error(err))
	}
	logger.Info("Connected to cache backend")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Build index adapter
	idx, idxClose, err := buildIndex(ctx, cfg.Index, logger)
	if err != nil {
		logger.Fatal("Failed to create index adapter", zap.Error(err))
	}
	defer idxClose()
	logger.Info("Index adapter created", zap.String("driver", cfg.Index.Driver))

	// Result cache repository
	cache := searchcache.New(
		store,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		metrics.SearchCacheTotal,
		logger,
	)

	// Search use case with single-flight deduplication
	searchSvc := searchuc.New(cache, idx, logger).
		WithMetrics(metrics.SingleflightSharedTotal, metrics.IndexQueriesTotal)

	// Health service. The index adapter may expose a probe.
	var indexChecker healthuc.IndexChecker
	if hc, ok := idx.(index.HealthChecker); ok {
		indexChecker = hc
	}
	healthSvc := healthuc.New(store, indexChecker)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, healthSvc, chiTransport.ClientConfig{
		DebounceWindowMS: cfg.Search.DebounceWindowMS,
		MinQueryLength:   cfg.Search.MinQueryLength,
		DefaultPageSize:  cfg.Search.DefaultPageSize,
		MaxPageSize:      cfg.Search.MaxPageSize,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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

// buildIndex creates the configured index adapter. The returned closer is a
// no-op for adapters without resources to release.
func buildIndex(ctx context.Context, cfg config.IndexConfig, logger *zap.Logger) (index.Adapter, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		ix, err := indexSQLite.New(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite index: %w", err)
		}
		if cfg.SeedPath != "" {
			if err := seedIndex(ctx, ix, cfg.SeedPath); err != nil {
				_ = ix.Close()
				return nil, nil, fmt.Errorf("seed index: %w", err)
			}
			logger.Info("Seeded embedded index", zap.String("seed_path", cfg.SeedPath))
		}
		return ix, func() { _ = ix.Close() }, nil
	case "http":
		client := indexHTTP.NewClient(&indexHTTP.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown index driver %q", cfg.Driver)
	}
}

// seedIndex loads a JSON catalog file into the embedded index.
func seedIndex(ctx context.Context, ix *indexSQLite.Index, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var entries []domain.ContentSummary
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if err := ix.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("upsert catalog: %w", err)
	}
	return nil
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
						"code":    "internal_error",
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

			// Canonical log line, one per request
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
