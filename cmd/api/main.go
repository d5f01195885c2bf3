// Package main is the entry point for the storefront API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pmsstreaming/storefront/internal/api"
	"github.com/pmsstreaming/storefront/internal/auth"
	"github.com/pmsstreaming/storefront/internal/catalog"
	"github.com/pmsstreaming/storefront/internal/config"
	"github.com/pmsstreaming/storefront/internal/creator"
	"github.com/pmsstreaming/storefront/internal/db"
	"github.com/pmsstreaming/storefront/internal/health"
	"github.com/pmsstreaming/storefront/internal/livekit"
	"github.com/pmsstreaming/storefront/internal/middleware"
	"github.com/pmsstreaming/storefront/internal/payment"
	"github.com/pmsstreaming/storefront/internal/purchase"
	"github.com/pmsstreaming/storefront/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Storefront API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	summary := cfg.LogSummary()
	attrs := make([]any, 0, len(summary)*2)
	for k, v := range summary {
		attrs = append(attrs, k, v)
	}
	logger.Info("configuration loaded", attrs...)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to shut down tracing", "error", err)
		}
	}()

	// Repositories: Postgres when configured, in-memory otherwise.
	var (
		movieRepo    catalog.Repository
		creatorRepo  creator.Repository
		purchaseRepo purchase.Repository
		dbChecker    api.HealthChecker
	)
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer sqlDB.Close()

		movieRepo = catalog.NewPostgresRepository(sqlDB, logger)
		creatorRepo = creator.NewPostgresRepository(sqlDB, logger)
		purchaseRepo = purchase.NewPostgresRepository(sqlDB, logger)
		dbChecker = health.NewDBChecker(sqlDB)
		logger.Info("using postgres repositories")
	} else {
		movieRepo = catalog.NewInMemoryRepository()
		creatorRepo = creator.NewInMemoryRepository()
		purchaseRepo = purchase.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
	}

	// Payment status store: Redis when configured, in-memory otherwise.
	var (
		statusStore  payment.StatusStore
		redisChecker api.HealthChecker
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		statusStore = payment.NewRedisStatusStore(redisClient)
		redisChecker = health.NewRedisChecker(redisClient)
		logger.Info("using redis payment status store")
	} else {
		statusStore = payment.NewInMemoryStatusStore()
		logger.Warn("REDIS_URL not set, payment statuses are process-local")
	}

	// Metrics registry.
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	paymentMetrics := payment.NewMetrics()
	if err := paymentMetrics.Register(registry); err != nil {
		logger.Error("failed to register payment metrics", "error", err)
		os.Exit(1)
	}

	// Clients and services.
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	kelpayClient := payment.NewKelpayClient(cfg.KelpayEndpoint, cfg.KelpayToken)
	stripeClient := payment.NewStripeClient(cfg.StripeAPIKey)
	purchaseService := purchase.NewService(purchaseRepo, movieRepo, logger)

	var liveHandlers *api.LiveKitHandlers
	if cfg.LiveKitURL != "" {
		tokenService, err := livekit.NewTokenService(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
		if err != nil {
			logger.Error("failed to initialize livekit token service", "error", err)
			os.Exit(1)
		}
		roomService := livekit.NewRoomService(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
		liveHandlers = api.NewLiveKitHandlers(tokenService, roomService, logger)
		logger.Info("live premieres enabled")
	} else {
		logger.Info("LIVEKIT_URL not set, live premiere endpoints disabled")
	}

	// Handlers and routes.
	router := api.NewRouter(api.RouterConfig{
		Payments: api.NewPaymentHandlers(api.PaymentHandlersConfig{
			Store:        statusStore,
			MobileClient: kelpayClient,
			CardClient:   stripeClient,
			Metrics:      paymentMetrics,
			MerchantCode: cfg.KelpayMerchantCode,
			CallbackURL:  cfg.KelpayCallbackURL,
			Logger:       logger,
		}),
		Catalog:   api.NewCatalogHandlers(movieRepo, logger),
		Creators:  api.NewCreatorHandlers(creatorRepo, movieRepo, logger),
		Purchases: api.NewPurchaseHandlers(purchaseService, logger),
		LiveKit:   liveHandlers,
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    dbChecker,
			RedisChecker: redisChecker,
		}),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	// Middleware chain: RequestID -> Tracing -> Logging -> HTTPMetrics -> Authenticate.
	var handler http.Handler = router
	handler = middleware.Authenticate(jwtService)(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Tracing(tracing.ServiceName)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
