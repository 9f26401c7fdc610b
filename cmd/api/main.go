package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-judge-api/internal/config"
	"github.com/noah-isme/gema-judge-api/internal/database"
	"github.com/noah-isme/gema-judge-api/internal/handler"
	"github.com/noah-isme/gema-judge-api/internal/middleware"
	"github.com/noah-isme/gema-judge-api/internal/repository"
	"github.com/noah-isme/gema-judge-api/internal/router"
	"github.com/noah-isme/gema-judge-api/internal/service"
	"github.com/noah-isme/gema-judge-api/internal/utils"
	"github.com/noah-isme/gema-judge-api/pkg/judge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled, language lookups are not cached")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	judgeClient, err := judge.NewClient(judge.ClientConfig{
		BaseURL:    cfg.Judge.BaseURL,
		APIKey:     cfg.Judge.APIKey,
		HostHeader: cfg.Judge.HostHeader,
		Wait:       cfg.Judge.Wait,
		Timeout:    cfg.Judge.RequestTimeout,
	})
	if err != nil {
		log.Fatalf("failed to create judge client: %v", err)
	}
	executor := judge.NewExecutor(judgeClient, judge.ExecutorConfig{
		PreSubmitDelay:  cfg.Judge.PreSubmitDelay,
		PollInterval:    cfg.Judge.PollInterval,
		MaxPollAttempts: cfg.Judge.MaxPollAttempts,
		Logger:          logger,
	})
	languages := judge.NewLanguageTable(judge.DefaultLanguages(), judge.DefaultAliases())

	validate := utils.NewValidator()

	submissionRepo := repository.NewSubmissionRepository(db)
	settingsRepo := repository.NewProblemSettingsRepository(db)
	problemRepo := repository.NewProblemRepository(db)

	normalizer := service.NewLanguageNormalizer(languages, judgeClient, redisClient, cfg.Judge.LanguageCacheTTL, logger)
	events := service.NewSubmissionEventPublisher(redisClient, natsConn, cfg.RealtimeChannel)
	store := service.NewSubmissionStore(submissionRepo, settingsRepo, events, service.SubmissionStoreConfig{
		StrictAcceptedOrdering: cfg.Evaluation.StrictAcceptedOrdering,
	}, logger)
	resolver := service.NewAcceptedSubmissionResolver(submissionRepo, settingsRepo, logger)
	evaluationService := service.NewEvaluationService(problemRepo, normalizer, executor, store, validate, service.EvaluationConfig{
		Timeout: cfg.Evaluation.Timeout,
	}, logger)
	submissionService := service.NewSubmissionService(store, resolver, normalizer, validate, logger)

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
	if natsConn != nil {
		healthChecks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		JudgeHandler:             handler.NewJudgeHandler(evaluationService, normalizer, logger),
		ProblemSubmissionHandler: handler.NewProblemSubmissionHandler(submissionService, evaluationService, logger),
		HealthChecks:             healthChecks,
		JWTMiddleware:            middleware.JWTProtected(cfg.JWTSecret),
		ExecuteLimiter:           middleware.RateLimit("judge", cfg.RateLimit.ExecuteMax, cfg.RateLimit.ExecuteWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
