package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/challenge-api/internal/config"
	"github.com/noah-isme/challenge-api/internal/database"
	"github.com/noah-isme/challenge-api/internal/handler"
	"github.com/noah-isme/challenge-api/internal/middleware"
	"github.com/noah-isme/challenge-api/internal/repository"
	"github.com/noah-isme/challenge-api/internal/router"
	"github.com/noah-isme/challenge-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, continuing without session cache and redis events")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, continuing without nats events")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	studentChallengeRepo := repository.NewStudentChallengeRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	sessionCache := service.NewSessionCache(redisClient, cfg.SessionCacheTTL, logger)
	authService := service.NewAuthService(userRepo, sessionRepo, sessionCache, validate, service.AuthOptions{
		SessionTTL: cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
	}, logger)
	activityService := service.NewActivityService(activityRepo, validate, logger)
	events := service.NewChallengeEventPublisher(redisClient, natsConn, cfg.EventChannel, logger)
	challengeService := service.NewChallengeService(db, challengeRepo, studentChallengeRepo, userRepo, activityService, events, validate, logger)

	healthChecks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, logger),
		ChallengeHandler: handler.NewChallengeHandler(challengeService, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, logger),
		TokenValidator:   authService,
		HealthChecks:     healthChecks,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
