package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant-pos/config"
	"restaurant-pos/internal/adapter/mailer"
	"restaurant-pos/internal/adapter/queue"
	pgStorage "restaurant-pos/internal/adapter/storage/postgres"
	"restaurant-pos/internal/service"
	"restaurant-pos/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("POS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}).With().Str("component", "worker").Logger()

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	kitchen := service.NewKitchenService(
		cfg.Kitchen,
		pgStorage.NewKitchenDeliveryRepository(pool),
		service.NewHMACSigner(),
		&http.Client{Timeout: cfg.Kitchen.Timeout},
		log,
	)
	handlers := queue.NewHandlers(
		mailer.NewSMTPMailer(cfg.SMTP),
		pgStorage.NewInventoryRepo(pool),
		kitchen,
		pgStorage.NewAnalyticsRepo(pool),
		log,
	)

	mux := asynq.NewServeMux()
	handlers.Register(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency:    cfg.Queue.Concurrency,
			Queues:         map[string]int{cfg.Queue.Queue: 1},
			RetryDelayFunc: queue.RetryDelay,
			Logger:         asynqLogger{log: log},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().Err(err).
					Str("task_type", task.Type()).
					Int("retried", retried).
					Int("max_retry", maxRetry).
					Msg("task failed")
			}),
		},
	)

	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("Failed to start worker")
	}
	log.Info().Str("queue", cfg.Queue.Queue).Int("concurrency", cfg.Queue.Concurrency).Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	srv.Shutdown()
	log.Info().Msg("Worker exited")
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
