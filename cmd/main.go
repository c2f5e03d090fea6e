package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ivasibi/ascent/config"
	"github.com/ivasibi/ascent/db"
	"github.com/ivasibi/ascent/internal/auth/handler"
	repo "github.com/ivasibi/ascent/internal/auth/repository/postgres"
	"github.com/ivasibi/ascent/internal/auth/session"
	"github.com/ivasibi/ascent/internal/auth/service"
	"github.com/ivasibi/ascent/internal/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		logger.Error(ctx, "failed to run migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}

	sessionTTL := time.Duration(cfg.SessionTTLSeconds) * time.Second

	userRepo := repo.NewPostgresRepository(dbPool)
	sessionStore := session.NewRedisStore(redisClient)
	userService := service.NewUserService(userRepo, sessionStore, sessionTTL, logger)
	authHandler := handler.NewAuthHandler(userService, sessionTTL)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	logger.Info(ctx, "listening", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}
