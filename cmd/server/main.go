package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facegate/auth-system/internal/api"
	"github.com/facegate/auth-system/internal/biometric"
	"github.com/facegate/auth-system/internal/core/service"
	mongostore "github.com/facegate/auth-system/internal/infrastructure/db/mongo"
	redisstore "github.com/facegate/auth-system/internal/infrastructure/db/redis"
	"github.com/facegate/auth-system/internal/infrastructure/identity"
	"github.com/facegate/auth-system/internal/pkg/config"
	"github.com/facegate/auth-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Persistence ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongostore.EnsureAccountIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("account index creation failed")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Admin seed (disabled unless configured) ---
	accountRepo := mongostore.NewAccountRepository(db)
	if err := service.SeedAdmin(ctx, accountRepo, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword, log); err != nil {
		log.Fatal().Err(err).Msg("admin seed failed")
	}

	// --- Face engine ---
	detector, err := biometric.NewPigoDetector(cfg.Face.CascadePath)
	if err != nil {
		log.Fatal().Err(err).Msg("face detector initialisation failed")
	}
	engine := biometric.NewEngine(detector, biometric.NewGridEncoder(), log)

	// --- External identity provider ---
	verifier := identity.NewVerifier(identity.Config{
		Issuer:   cfg.Provider.Issuer,
		Audience: cfg.Provider.Audience,
		JWKSURL:  cfg.Provider.JWKSURL,
		Timeout:  cfg.Provider.Timeout,
	})

	e := api.NewRouter(db, rdb, engine, verifier, api.Config{
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		MatchThreshold: cfg.Face.MatchThreshold,
		ThrottleMax:    cfg.Throttle.MaxFailures,
		ThrottleWindow: cfg.Throttle.Window,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting http server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
