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

	"github.com/marksearch/marksearch/internal/config"
	"github.com/marksearch/marksearch/internal/index"
	logpkg "github.com/marksearch/marksearch/internal/logger"
	"github.com/marksearch/marksearch/internal/metrics"
	documentrepo "github.com/marksearch/marksearch/internal/repository/document"
	chiTransport "github.com/marksearch/marksearch/internal/transport/chi"
	searchuc "github.com/marksearch/marksearch/internal/usecase/search"
	"github.com/marksearch/marksearch/internal/vectorizer"
	"github.com/marksearch/marksearch/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting marksearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("store_addrs", cfg.Store.Addrs),
	)

	// Bookmark store: the external owner of all documents.
	store, err := documentrepo.NewStore(documentrepo.Config{
		Addrs:     cfg.Store.Addrs,
		Password:  cfg.Store.Password,
		KeyPrefix: cfg.Store.KeyPrefix,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	vec, closeVec, err := buildVectorizer(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal("Failed to build vectorizer", zap.Error(err))
	}
	defer closeVec()

	lexical := index.New(cfg.Search.LexicalThreshold, logger)

	searchSvc, err := searchuc.New(store, lexical, vec, cfg.Search.Workers, logger,
		searchuc.WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize),
	)
	if err != nil {
		logger.Fatal("Failed to create search service", zap.Error(err))
	}
	defer searchSvc.Close()

	server := chiTransport.NewServer(searchSvc, store, logger)

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

// buildVectorizer assembles the two-arm strategy: provider (when an API key
// is configured) with the deterministic local vectorizer as fallback, plus
// the bounded embedding cache.
func buildVectorizer(cfg config.EmbeddingConfig, logger *zap.Logger) (*vectorizer.Fallback, func(), error) {
	var provider vectorizer.Vectorizer
	if cfg.APIKey != "" {
		provider = vectorizer.NewProvider(vectorizer.ProviderConfig{
			APIKey:        cfg.APIKey,
			BaseURL:       cfg.BaseURL,
			Model:         cfg.Model,
			Dimensions:    cfg.Dimensions,
			MaxInputChars: cfg.MaxInputChars,
			Timeout:       time.Duration(cfg.TimeoutMS) * time.Millisecond,
			Logger:        logger,
		})
		logger.Info("Embedding provider configured",
			zap.String("model", cfg.Model),
			zap.Int("dimensions", cfg.Dimensions),
		)
	} else {
		logger.Info("No embedding provider configured, using local vectorizer only")
	}

	local := vectorizer.NewLocal(cfg.Dimensions)

	cache, err := vectorizer.NewCache(cfg.CacheMaxEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return vectorizer.NewFallback(provider, local, cache, logger), cache.Close, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a
// plain text stacktrace.
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

// wideEventMiddleware emits a canonical log line per request and propagates
// X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ToContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
