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

	"github.com/kailas-cloud/qadex/internal/config"
	dbRedis "github.com/kailas-cloud/qadex/internal/db/redis"
	"github.com/kailas-cloud/qadex/internal/domain"
	"github.com/kailas-cloud/qadex/internal/joinstore"
	logpkg "github.com/kailas-cloud/qadex/internal/logger"
	"github.com/kailas-cloud/qadex/internal/metrics"
	questionrepo "github.com/kailas-cloud/qadex/internal/repository/question"
	searchrepo "github.com/kailas-cloud/qadex/internal/repository/search"
	chiTransport "github.com/kailas-cloud/qadex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/qadex/internal/transport/openai"
	detailsuc "github.com/kailas-cloud/qadex/internal/usecase/details"
	healthuc "github.com/kailas-cloud/qadex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/qadex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/qadex/internal/usecase/search"
	"github.com/kailas-cloud/qadex/internal/version"
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

	logger.Info("Starting qadex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register embedding and ingest metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Create repositories
	questionRepo := questionrepo.New(store, cfg.Index.KeyPrefix, cfg.Embedding.Dimensions)
	searchRepo := searchrepo.New(store, questionRepo.IndexName(), questionRepo.KeyPrefix())
	joinStore := joinstore.New(logger)

	// Create use case services
	ingestSvc := ingestuc.New(questionRepo, embedder, logger).
		WithPipeline(cfg.Index.BatchSize, cfg.Index.Workers)
	searchSvc := searchuc.New(searchRepo, embedder).WithDepth(cfg.Index.Depth)
	detailsSvc := detailsuc.New(joinStore)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	rel := &reloader{
		join:   joinStore,
		ingest: ingestSvc,
		data:   cfg.Data,
		logger: logger,
	}

	// Initial load and index
	stats, err := rel.Reload(ctx)
	if err != nil {
		logger.Fatal("Initial data load failed", zap.Error(err))
	}
	logger.Info("Data loaded",
		zap.Int("questions", stats.Questions),
		zap.Int("answer_groups", stats.Answers),
		zap.Int64("indexed", stats.Indexed),
		zap.Int64("failed", stats.Failed),
	)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, detailsSvc, rel, healthSvc, logger)

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

// reloader rebuilds the join store snapshot and reindexes its questions.
type reloader struct {
	join   *joinstore.Store
	ingest *ingestuc.Service
	data   config.DataConfig
	logger *zap.Logger
}

func (r *reloader) Reload(ctx context.Context) (chiTransport.ReloadStats, error) {
	questions, answers, err := r.join.Load(r.data.QuestionsPath, r.data.AnswersPath)
	if err != nil {
		return chiTransport.ReloadStats{}, fmt.Errorf("load sources: %w", err)
	}

	res, err := r.ingest.Run(ctx, r.join.Questions())
	if err != nil {
		return chiTransport.ReloadStats{}, fmt.Errorf("index questions: %w", err)
	}

	r.logger.Info("Reload complete",
		zap.Int("questions", questions),
		zap.Int("answer_groups", answers),
		zap.Int64("indexed", res.Indexed),
		zap.Int64("failed", res.Failed),
		zap.Duration("duration", res.Duration),
	)

	return chiTransport.ReloadStats{
		Questions: questions,
		Answers:   answers,
		Indexed:   res.Indexed,
		Failed:    res.Failed,
	}, nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
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
