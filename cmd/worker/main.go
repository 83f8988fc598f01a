// Package main is the entry point for the CertiFrançais background worker
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/config"
	"github.com/certifrancais/backend/internal/logger"
	"github.com/certifrancais/backend/internal/payments"
	"github.com/certifrancais/backend/internal/repositories"
	"github.com/certifrancais/backend/internal/services"
	"github.com/certifrancais/backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting certifrancais worker")

	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	gateway, err := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Repositories
	emailTaskRepo := repositories.NewEmailTaskRepository(db)
	templateRepo := repositories.NewEmailTemplateRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	pricingRepo := repositories.NewPricingRepository(db)
	promoRepo := repositories.NewPromoCodeRepository(db)
	sessionRepo := repositories.NewTestSessionRepository(db)
	levelRepo := repositories.NewLevelRepository(db)

	// The worker only uses the reconciliation side of the purchase service
	purchaseService := services.NewPurchaseService(
		purchaseRepo, pricingRepo, promoRepo, sessionRepo, levelRepo, gateway, cfg.AppBaseURL, logger.Logger,
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				tasks.QueueEmails:  5,
				tasks.QueueDefault: 1,
			},
		},
	)

	worker := NewWorker(
		logger.Logger,
		emailTaskRepo,
		templateRepo,
		purchaseService,
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEmailDeliver, worker.HandleEmailDeliver)
	mux.HandleFunc(tasks.TypePaymentReconcile, worker.HandlePaymentReconcile)

	// Periodic pending-purchase sweep, enqueued through the same queue the
	// handler consumes so a single worker instance does both
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("*/15 * * * *", func() {
		if _, err := asynqClient.Enqueue(tasks.NewPaymentReconcileTask(), asynq.Queue(tasks.QueueDefault)); err != nil {
			logger.Logger.Error("Failed to enqueue payment reconcile task", zap.Error(err))
		}
	}); err != nil {
		logger.Logger.Fatal("Failed to schedule payment reconciliation", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
