package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"partyroom-backend/config"
	"partyroom-backend/internal/api"
	"partyroom-backend/internal/auth"
	"partyroom-backend/internal/autosave"
	"partyroom-backend/internal/db"
	"partyroom-backend/internal/game"
	"partyroom-backend/internal/mw"
	"partyroom-backend/internal/notification"
	"partyroom-backend/internal/session"
	"partyroom-backend/internal/store"
)

const limiterIdle = 3 * time.Minute

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithError(err).Warn("unknown log level, keeping info")
	}
	logger.WithField("path", configPath).Info("configuration loaded")

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwt_secret must be set (or JWT_SECRET)")
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var states store.StateStore = appStore
	if cfg.Storage.Backend == "redis" {
		client, err := store.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer client.Close()
		states = store.NewRedisStateStore(client, cfg.Redis.KeyPrefix)
	}
	logger.WithField("backend", cfg.Storage.Backend).Info("game document store ready")

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.WithField("seed", seed).Info("booking generator seeded")
	engine := game.NewEngine(game.NewSeededGenerator(seed))

	var webpushOptions *webpush.Options
	var notifier session.DayEndNotifier
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, logger)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Warn("VAPID keys are not configured; day-end push notifications are disabled")
	}

	sessions := session.NewManager(engine, states, notifier, logger)

	autosaveSvc := autosave.NewService(cfg.Autosave, sessions, logger)
	autosaveDone := make(chan struct{})
	go func() {
		autosaveSvc.Run(ctx)
		close(autosaveDone)
	}()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authSvc := auth.NewService(appStore, tokens, cfg.Auth.BcryptCost)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go sweepLimiter(ctx, limiter, logger)

	handler := api.NewHandler(sessions, authSvc, appStore, webpushOptions, logger)
	router := api.NewRouter(handler, tokens, cfg.Server, limiter, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server Shutdown")
	}

	cancel()
	<-autosaveDone
	if !cfg.Autosave.Enabled {
		if n, err := sessions.FlushDirty(shutdownCtx); err != nil {
			logger.WithError(err).WithField("saved", n).Error("final save failed for some sessions")
		}
	}

	logger.Info("Server gracefully stopped")
}

func sweepLimiter(ctx context.Context, limiter *mw.IPRateLimiter, logger *logrus.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(limiterIdle); n > 0 {
				logger.WithFields(logrus.Fields{"removed": n, "tracked": limiter.Len()}).Debug("rate limiter swept")
			}
		}
	}
}
