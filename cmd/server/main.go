package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicreporter/civic-reporter-api/internal/api"
	"github.com/civicreporter/civic-reporter-api/internal/core/service"
	mongodb "github.com/civicreporter/civic-reporter-api/internal/infrastructure/db/mongo"
	redisdb "github.com/civicreporter/civic-reporter-api/internal/infrastructure/db/redis"
	"github.com/civicreporter/civic-reporter-api/internal/infrastructure/realtime"
	"github.com/civicreporter/civic-reporter-api/internal/infrastructure/storage"
	"github.com/civicreporter/civic-reporter-api/internal/pkg/config"
	"github.com/civicreporter/civic-reporter-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Civic Reporter API
// @version 1.0
// @description Geolocated civic infrastructure issue reporting with voting, comments, analytics, and real-time updates.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index bootstrap failed")
	}

	// --- Redis (analytics cache; startup continues when unreachable) ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, analytics cache disabled")
		rdb = nil
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
		}()
	}

	// --- Infrastructure ---
	hub := realtime.NewHub(log)
	files := storage.NewLocalStorage(cfg.UploadDir, log)

	// --- Repositories ---
	reportRepo := mongodb.NewReportRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	commentRepo := mongodb.NewCommentRepository(db)
	voteRepo := mongodb.NewVoteRepository(db)
	analyticsRepo := mongodb.NewAnalyticsRepository(db)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log)
	userService := service.NewUserService(userRepo, files, log)
	reportService := service.NewReportService(reportRepo, userRepo, commentRepo, voteRepo, files, hub, log)
	analyticsService := service.NewAnalyticsService(analyticsRepo, redisdb.NewRollupCache(rdb, log), log)

	e := api.NewRouter(db, rdb, api.Services{
		Auth:      authService,
		Users:     userService,
		Reports:   reportService,
		Analytics: analyticsService,
		Stream:    hub,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
