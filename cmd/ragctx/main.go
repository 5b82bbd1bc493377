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

	"github.com/ragctx/ragctx/internal/config"
	"github.com/ragctx/ragctx/internal/index"
	idxPinecone "github.com/ragctx/ragctx/internal/index/pinecone"
	idxRedis "github.com/ragctx/ragctx/internal/index/redis"
	logpkg "github.com/ragctx/ragctx/internal/logger"
	"github.com/ragctx/ragctx/internal/metrics"
	matchrepo "github.com/ragctx/ragctx/internal/repository/match"
	chiTransport "github.com/ragctx/ragctx/internal/transport/chi"
	openaiEmb "github.com/ragctx/ragctx/internal/transport/openai"
	healthuc "github.com/ragctx/ragctx/internal/usecase/health"
	retrievaluc "github.com/ragctx/ragctx/internal/usecase/retrieval"
	"github.com/ragctx/ragctx/internal/version"
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

	logger.Info("Starting ragctx API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_driver", cfg.Index.Driver),
		zap.Int("embedding_dimension", cfg.Retrieval.EmbeddingDimension),
		zap.Float64("score_threshold", cfg.Retrieval.ScoreThreshold),
	)

	// Create vector index client based on driver
	var idx index.Querier
	switch cfg.Index.Driver {
	case "redis":
		idx, err = idxRedis.NewStore(idxRedis.Config{
			Addrs:     cfg.Index.Addrs,
			Password:  cfg.Index.Password,
			IndexName: cfg.Index.Name,
		})
	case "pinecone":
		idx, err = idxPinecone.NewClient(idxPinecone.Config{
			Host:    cfg.Index.Name,
			APIKey:  cfg.Index.APIKey,
			Timeout: time.Duration(cfg.Index.QueryTimeout) * time.Second,
		})
	default:
		logger.Fatal("Unknown index driver", zap.String("driver", cfg.Index.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create index client", zap.Error(err))
	}
	defer idx.Close()

	// Wait for the index to be ready
	ctx := context.Background()
	if err := idx.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector index not ready", zap.Error(err))
	}
	logger.Info("Connected to vector index")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterRetrievalMetrics()

	// Create the match repository with a bounded per-query timeout
	matches := matchrepo.New(idx).
		WithTimeout(time.Duration(cfg.Index.QueryTimeout) * time.Second)

	// Retrieval service — the core pipeline
	retrievalSvc := retrievaluc.New(matches, retrievaluc.Config{
		EmbeddingDimension: cfg.Retrieval.EmbeddingDimension,
		ScoreThreshold:     cfg.Retrieval.ScoreThreshold,
		DefaultTopK:        cfg.Retrieval.DefaultTopK,
		MaxTopK:            cfg.Retrieval.MaxTopK,
	}).WithFields(
		cfg.Retrieval.NodeContentField,
		cfg.Retrieval.TextField,
		cfg.Retrieval.ProvenanceField,
	)

	// Optional query embedder for text queries
	var embChecker healthuc.EmbeddingChecker
	if cfg.Embedding.Provider != "" {
		metrics.RegisterEmbeddingMetrics()
		embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		retrievalSvc.WithEmbedder(embedder)
		embChecker = embedder
		logger.Info("Query embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
		)
	}

	// Health service (embChecker can be nil)
	healthSvc := healthuc.New(idx, embChecker)

	// Create chi server
	server := chiTransport.NewServer(retrievalSvc, healthSvc, logger)

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
						"details": "internal error",
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
