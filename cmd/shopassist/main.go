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

	"github.com/kailas-cloud/shopassist/internal/config"
	dbRedis "github.com/kailas-cloud/shopassist/internal/db/redis"
	logpkg "github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/metrics"
	"github.com/kailas-cloud/shopassist/internal/repository/catalog"
	chiTransport "github.com/kailas-cloud/shopassist/internal/transport/chi"
	"github.com/kailas-cloud/shopassist/internal/transport/openai"
	"github.com/kailas-cloud/shopassist/internal/transport/openexchange"
	chatuc "github.com/kailas-cloud/shopassist/internal/usecase/chat"
	currencyuc "github.com/kailas-cloud/shopassist/internal/usecase/currency"
	healthuc "github.com/kailas-cloud/shopassist/internal/usecase/health"
	pricinguc "github.com/kailas-cloud/shopassist/internal/usecase/pricing"
	retrievaluc "github.com/kailas-cloud/shopassist/internal/usecase/retrieval"
	"github.com/kailas-cloud/shopassist/internal/version"
)

// catalogSource is what the retrieval engine and health check need from a catalog.
type catalogSource interface {
	retrievaluc.CatalogSource
	healthuc.CatalogPinger
}

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

	logger.Info("Starting shopassist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
	)

	// Register upstream metrics explicitly (no init())
	metrics.Register()

	ctx := context.Background()

	// Catalog source
	var source catalogSource
	switch cfg.Catalog.Driver {
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Password:   cfg.Database.Password,
			Standalone: cfg.Database.Standalone,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
		source = catalog.NewRedisSource(store, cfg.Catalog.KeyPrefix)
	default:
		source = catalog.NewCSVSource(cfg.Catalog.Path, []rune(cfg.Catalog.Delimiter)[0])
		if err := source.Ping(ctx); err != nil {
			// the file is re-read per request, it may appear later
			logger.Warn("Catalog file not readable", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		}
	}

	// Model capability: one shared client for chat and embeddings
	llmCfg := &openai.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		ChatModel:      cfg.LLM.ChatModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Logger:         logger,
	}
	llmClient := openai.NewClient(llmCfg)
	chatModel := openai.NewChatModel(llmClient, llmCfg)
	embedder := openai.NewEmbedder(llmClient, llmCfg)

	rates := openexchange.New(openexchange.Config{
		AppID:   cfg.Currency.AppID,
		BaseURL: cfg.Currency.BaseURL,
		Timeout: time.Duration(cfg.Currency.TimeoutSec) * time.Second,
	}, logger)

	// Use case services
	currencySvc := currencyuc.New(rates, cfg.Currency.Base)
	retrievalSvc := retrievaluc.New(source, embedder, retrievaluc.Options{
		EmbeddingField: cfg.Catalog.EmbeddingField,
		Concurrency:    cfg.Catalog.EmbedConcurrency,
	})
	pricingSvc := pricinguc.New(currencySvc, cfg.Catalog.PriceField)
	chatSvc := chatuc.New(chatModel, retrievalSvc, pricingSvc, currencySvc, cfg.Catalog.TopN)
	healthSvc := healthuc.New(source, chatModel)

	server := chiTransport.NewServer(chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	server.Mount(r)

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

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// canonical log line, one per request
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
