package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/genpersona/api/internal/app"
	"github.com/genpersona/api/internal/config"
	"github.com/genpersona/api/internal/handlers"
	"github.com/genpersona/api/internal/middleware"
	"github.com/genpersona/api/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("persona API starting",
		zap.String("environment", cfg.Environment),
		zap.String("provider", cfg.LLMProvider),
		zap.String("persona_model", cfg.PersonaModel),
	)

	shutdownTelemetry, err := telemetry.InitTracer(ctx, "persona-api", cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(sctx); err != nil {
				logger.Error("failed to shutdown telemetry", zap.Error(err))
			}
		}()
	}

	a, err := app.New(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	defer a.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(a.DB, a.Redis, a.Bus, a.Breaker)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var hist handlers.HistoryStore
	if a.History != nil {
		hist = a.History
	}
	personaHandler := handlers.NewPersonaHandler(a.Service, hist, logger)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.APIKey(cfg.APIKeys))
	v1.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimitPerMinute)))
	personaHandler.Register(v1)

	// A request spans several sequential calls, each bounded by AttemptTimeout.
	// Naming makes up to eight: three restatements and five name attempts.
	calls := max(cfg.MaxAttempts, 8)
	writeTimeout := time.Duration(calls)*cfg.AttemptTimeout + 15*time.Second
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
