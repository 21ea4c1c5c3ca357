// Package main provides the entry point for the Content Desk API server
// @title Content Desk API
// @version 1.0
// @description Sign-in with emailed one-time codes, account recovery and cookie sessions.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
// @description Signed session token set by /auth/verify
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"contentdesk/internal/api/handlers"
	"contentdesk/internal/api/middleware"
	"contentdesk/internal/api/routes"
	"contentdesk/internal/config"
	"contentdesk/internal/database"
	"contentdesk/internal/email"
	"contentdesk/internal/logging"
	"contentdesk/internal/reaper"
	"contentdesk/internal/repository"
	"contentdesk/internal/repository/memory"
	"contentdesk/internal/repository/postgres"
	redisrepo "contentdesk/internal/repository/redis"
	"contentdesk/internal/service"
	"contentdesk/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	envFile := flag.String("env", ".env", "Path to env file")
	flag.Parse()

	// Load environment file
	if err := godotenv.Load(*envFile); err != nil && *envFile != ".env" {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	// Load configuration
	cfg := &config.Config{}
	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.API.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database and run migrations
	db, err := database.SetupDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	health := map[string]handlers.Pinger{"database": db}

	rateLimits, closeRateLimits, err := rateLimitStore(cfg, db, logger, health)
	if err != nil {
		return err
	}
	defer closeRateLimits()

	mailer, closeMailer, err := mailSender(cfg, logger)
	if err != nil {
		return err
	}
	defer closeMailer()

	// Initialize validators
	validation.Initialize()

	users := postgres.NewUserRepository(db)
	services, err := service.New(cfg, service.Stores{
		Users:         users,
		LoginSessions: postgres.NewLoginSessionRepository(db),
		ResetSessions: postgres.NewPasswordResetRepository(db),
		RateLimits:    rateLimits,
	}, mailer, logger, nil)
	if err != nil {
		return err
	}

	throttle := middleware.NewIPThrottle(cfg)
	defer throttle.Close()

	router := routes.SetupRoutes(routes.Dependencies{
		Config:   cfg,
		Services: services,
		Users:    users,
		Throttle: throttle,
		Health:   health,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reaper.Enabled {
		m := reaper.NewManager(cfg.Reaper.Schedule, logger)
		m.Register("login_sessions", services.Login.PurgeExpired)
		m.Register("password_reset_sessions", services.Recovery.PurgeExpired)
		m.Register("rate_limits", services.Limiter.Purge)
		go func() {
			if err := m.StartScheduler(ctx); err != nil {
				logger.Error("reaper failed to start", zap.Error(err))
			}
		}()
	}

	// Convert port string to int
	port, err := strconv.Atoi(cfg.API.Port)
	if err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// Create server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.Int("port", port), zap.String("env", cfg.API.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

// rateLimitStore opens the counter store named by RATE_LIMIT_BACKEND
func rateLimitStore(cfg *config.Config, db *sql.DB, logger *zap.Logger, health map[string]handlers.Pinger) (repository.RateLimitRepository, func(), error) {
	switch cfg.RateLimit.Backend {
	case config.RateLimitBackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		health["redis"] = handlers.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.Info("using redis rate limit store", zap.String("addr", cfg.Redis.Addr))
		return redisrepo.NewRateLimitRepository(client, ""), func() { client.Close() }, nil
	case config.RateLimitBackendMemory:
		logger.Warn("using in-memory rate limit store; counters are not shared between instances")
		return memory.NewRateLimitRepo(), func() {}, nil
	default:
		return postgres.NewRateLimitRepository(db), func() {}, nil
	}
}

// mailSender returns the SMTP sender, or a logging sender in development
func mailSender(cfg *config.Config, logger *zap.Logger) (email.Sender, func(), error) {
	if cfg.Email.SMTPConfigured() {
		svc := email.NewService(cfg.Email, logger)
		return svc, func() { svc.Close() }, nil
	}
	if cfg.IsProduction() {
		return nil, nil, errors.New("SMTP_HOST, SMTP_PORT and SMTP_FROM are required in production")
	}
	logger.Warn("SMTP is not configured, verification codes will be written to the log")
	return email.NewLogSender(logger), func() {}, nil
}
