// Package main is the entry point for the CertiFrançais API server
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/certifrancais/backend/docs"
	authmw "github.com/certifrancais/backend/internal/auth/middleware"
	authservice "github.com/certifrancais/backend/internal/auth/service"
	"github.com/certifrancais/backend/internal/config"
	"github.com/certifrancais/backend/internal/handlers"
	"github.com/certifrancais/backend/internal/logger"
	loggermw "github.com/certifrancais/backend/internal/logger/middleware"
	"github.com/certifrancais/backend/internal/middlewares"
	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/payments"
	"github.com/certifrancais/backend/internal/pubsub"
	"github.com/certifrancais/backend/internal/repositories"
	"github.com/certifrancais/backend/internal/services"
)

const maxRequestSize = 10 << 20 // 10 MB

// @title CertiFrançais API
// @version 1.0
// @description French language certification platform: leveled test sessions, certifications with Open Badge assertions, purchases and administration.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Logger
	log.Info("starting certifrancais api server")

	db, err := connectDB(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(db, cfg.Database.DBName); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations applied")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	tokenGenerator := authservice.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	gateway, err := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if err != nil {
		log.Fatal("failed to initialize payment gateway", zap.Error(err))
	}

	broker := pubsub.NewBroker()
	stopSettingsWatch := services.WatchSettingsChanges(broker, log)
	defer stopSettingsWatch()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	levelRepo := repositories.NewLevelRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	sessionRepo := repositories.NewTestSessionRepository(db)
	failedRepo := repositories.NewFailedQuestionRepository(db)
	certRepo := repositories.NewCertificationRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	pricingRepo := repositories.NewPricingRepository(db)
	promoRepo := repositories.NewPromoCodeRepository(db)
	planningRepo := repositories.NewPlanningRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	emailTaskRepo := repositories.NewEmailTaskRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, tokenGenerator, log)
	settingsService := services.NewSettingsService(settingsRepo, broker)
	emailService := services.NewEmailService(emailTaskRepo, asynqClient, log)
	deliveryService := services.NewQuestionDeliveryService(questionRepo, failedRepo, settingsService)
	answerService := services.NewAnswerService(questionRepo, failedRepo)
	progressService := services.NewProgressService(sessionRepo, questionRepo, failedRepo, levelRepo, settingsService)
	certificationService := services.NewCertificationService(
		certRepo, sessionRepo, userRepo, levelRepo, settingsService, emailService, cfg.AppBaseURL, log,
	)
	purchaseService := services.NewPurchaseService(
		purchaseRepo, pricingRepo, promoRepo, sessionRepo, levelRepo, gateway, cfg.AppBaseURL, log,
	)
	sessionService := services.NewSessionService(sessionRepo, purchaseService, progressService, certificationService, log)
	adminUserService := services.NewAdminUserService(userRepo, emailService, log)
	adminContentService := services.NewAdminContentService(questionRepo, pricingRepo, promoRepo, settingsService)
	planningService := services.NewPlanningService(planningRepo, userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	sessionHandler := handlers.NewSessionHandler(sessionService, deliveryService, answerService, log)
	progressHandler := handlers.NewProgressHandler(progressService, purchaseService, log)
	certificationHandler := handlers.NewCertificationHandler(certificationService, log)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, gateway, log)
	adminUserHandler := handlers.NewAdminUserHandler(adminUserService, log)
	adminContentHandler := handlers.NewAdminContentHandler(adminContentService, log)
	settingsHandler := handlers.NewSettingsHandler(settingsService, log)
	planningHandler := handlers.NewPlanningHandler(planningService, log)
	emailHandler := handlers.NewEmailHandler(emailService, log)

	// Middleware
	authMiddleware := authmw.AuthMiddleware(tokenGenerator)
	adminMiddleware := authmw.RoleMiddleware(tokenGenerator, int(models.RoleAdmin))
	superAdminMiddleware := authmw.RoleMiddleware(tokenGenerator, int(models.RoleSuperAdmin))
	apiKeyMiddleware := authmw.APIKeyMiddleware(cfg.APIKey)

	// Credential verification is public, so it gets a tighter limit than the
	// global one.
	verifyRateLimiter := httprate.LimitByIP(30, time.Minute)

	r := chi.NewRouter()
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggermw.LoggerMiddleware(log))
	r.Use(middlewares.RecoveryMiddleware(log))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		sessionHandler.RegisterRoutes(r, authMiddleware)
		progressHandler.RegisterRoutes(r, authMiddleware)
		certificationHandler.RegisterRoutes(r, authMiddleware, verifyRateLimiter)
		purchaseHandler.RegisterRoutes(r, authMiddleware)
		adminUserHandler.RegisterRoutes(r, adminMiddleware, superAdminMiddleware)
		adminContentHandler.RegisterRoutes(r, adminMiddleware)
		settingsHandler.RegisterRoutes(r, adminMiddleware, superAdminMiddleware)
		planningHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
		emailHandler.RegisterRoutes(r, apiKeyMiddleware)
	})

	// Gateway webhooks carry their own signature and live outside /api/v1
	purchaseHandler.RegisterWebhookRoutes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// connectDB opens the MySQL connection pool and verifies it
func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
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

// runMigrations applies any pending schema migrations
func runMigrations(db *sql.DB, dbName string) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{
		DatabaseName:    dbName,
		MigrationsTable: "certifrancais_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationsPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		migrationsPath = "file://../migrations"
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
