package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-pos/config"
	"restaurant-pos/internal/adapter/gateway/payfast"
	httpHandler "restaurant-pos/internal/adapter/http/handler"
	"restaurant-pos/internal/adapter/queue"
	pgStorage "restaurant-pos/internal/adapter/storage/postgres"
	redisStorage "restaurant-pos/internal/adapter/storage/redis"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/internal/service"
	"restaurant-pos/migrations"
	"restaurant-pos/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const openAPISpecPath = "docs/api/openapi.yaml"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("POS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("payfast_sandbox", cfg.PayFast.Sandbox).
		Bool("server_confirmation", cfg.PayFast.ServerConfirmation).
		Msg("Starting restaurant POS payment API")

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if cfg.Database.AutoMigrate {
		applied, err := pgStorage.Migrate(ctx, pool, migrations.FS, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
		log.Info().Strs("applied", applied).Msg("Database schema up to date")
	}

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer queueClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Repositories
	orderRepo := pgStorage.NewOrderRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	notifLogRepo := pgStorage.NewNotificationLogRepo(pool)
	staffRepo := pgStorage.NewStaffRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Redis stores
	receiptCache := redisStorage.NewReceiptCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	codec := service.NewMD5SignatureCodec()
	builder := service.NewPayFastBuilder(cfg.PayFast, codec)
	paymentMetrics := service.NewPaymentMetrics(registry)

	confirmer := payfast.NewValidator(cfg.PayFast, &http.Client{}, log)
	gates := service.DefaultGates(cfg.PayFast, codec, orderRepo, confirmer)
	dispatcher := queue.NewDispatcher(queueClient, cfg.Queue.Queue, cfg.Queue.MaxRetry, registry, log)

	// Business services
	notificationSvc := service.NewNotificationService(
		gates,
		orderRepo,
		paymentRepo,
		notifLogRepo,
		receiptCache,
		encSvc,
		transactor,
		dispatcher,
		paymentMetrics,
		log,
	)
	checkoutSvc := service.NewCheckoutService(orderRepo, builder, paymentMetrics, log)
	authSvc := service.NewAuthService(staffRepo, hashSvc, tokenSvc)
	reportingSvc := service.NewReportingService(paymentRepo)
	auditSvc := service.NewAuditService(auditRepo, log)

	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	specBytes, err := os.ReadFile(openAPISpecPath)
	if err != nil {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = registry
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:           authSvc,
		CheckoutSvc:       checkoutSvc,
		NotificationSvc:   notificationSvc,
		ReportingSvc:      reportingSvc,
		TokenSvc:          tokenSvc,
		RateLimiter:       rateLimitStore,
		HealthCheckers:    []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:          auditSvc,
		OpenAPISpec:       specBytes,
		MetricsGatherer:   gatherer,
		MetricsRegisterer: registry,
		MetricsPath:       cfg.Metrics.Path,
		Mode:              cfg.Server.Mode,
		Logger:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := auditSvc.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Audit queue not fully drained")
	}

	log.Info().Msg("Server exited")
}
