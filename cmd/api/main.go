package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parkingapp/auth-service/internal/api"
	"github.com/parkingapp/auth-service/internal/core/token"
	"github.com/parkingapp/auth-service/internal/infrastructure/config"
	mongostore "github.com/parkingapp/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/parkingapp/auth-service/internal/infrastructure/db/redis"
	"github.com/parkingapp/auth-service/internal/infrastructure/queue"
	"github.com/parkingapp/auth-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// Fail fast on a missing or weak signing secret: a process that cannot
	// sign tokens safely must not start.
	codec, err := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token codec configuration invalid")
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	store := mongostore.NewCredentialStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// The default role is a deployment prerequisite, not something the
	// service creates on demand.
	if _, err := store.FindRoleByName(ctx, cfg.DefaultRole); err != nil {
		log.Fatal().Err(err).Str("role", cfg.DefaultRole).Msg("default role missing, seed it before starting")
	}

	dispatcher := queue.NewDispatcher(0, mongostore.NewActivityStore(db), log)
	dispatcher.Start(ctx)

	e := api.NewRouter(cfg, codec, db, rdb, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
		os.Exit(1)
	}
}
