package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"teeup/internal/usertoken"
	"teeup/internal/util"
	"teeup/pkg/events"
	"teeup/pkg/realtime"
	"teeup/pkg/storage"
	"teeup/pkg/store"
	"teeup/services/social/internal/app"
	"teeup/services/social/internal/config"
	"teeup/services/social/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	tokenVerifier, err := usertoken.NewVerifier(usertoken.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		util.Fatal("failed to init token verifier", "err", err)
	}

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init store", "err", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	broker := realtime.NewRedisBroker(redisClient, "rt")

	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			util.Fatal("failed to init event publisher", "err", err)
		}
		defer publisher.Close()
	} else {
		slog.Info("event publishing disabled: no amqpURL configured")
	}

	var avatars storage.AvatarStore
	if cfg.MinioEndpoint != "" {
		avatars, err = storage.NewMinioAvatarStore(
			cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
			cfg.MinioBucket, cfg.MinioUseSSL, util.NewID,
		)
		if err != nil {
			util.Fatal("failed to init avatar store", "err", err)
		}
	} else {
		slog.Info("avatar uploads disabled: no minioEndpoint configured")
	}

	appCore := app.New(st, broker, app.Options{
		Events:  publisher,
		Avatars: avatars,
	})

	httpServer := server.New(server.Config{
		App:           appCore,
		Broker:        broker,
		TokenVerifier: tokenVerifier,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("social server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
