package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/trip-planner/backend/internal/config"
	"example.com/trip-planner/backend/internal/database"
	"example.com/trip-planner/backend/internal/notifications"
	"example.com/trip-planner/backend/internal/repository"
	"example.com/trip-planner/backend/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trips, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to store", slog.String("driver", cfg.Store.Driver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	hub := notifications.NewHub(logger)
	if cfg.Redis.Addr != "" {
		client, err := database.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer client.Close()

		bridge := notifications.NewRedisBridge(client, cfg.Redis.Channel, hub, logger)
		hub.SetRelay(bridge)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				logger.Error("event bridge stopped", slog.String("error", err.Error()))
			}
		}()
	}

	registry := server.NewRegistry(cfg.Session, logger, trips, hub)
	go sweepSessions(ctx, cfg.Session, registry.Sweep, logger)

	e := server.New(cfg, logger, server.Deps{Trips: trips, Registry: registry, Hub: hub})
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	if err := registry.Close(shutdownCtx); err != nil {
		logger.Error("pending itinerary saves were interrupted", slog.String("error", err.Error()))
	}
}

func openStore(ctx context.Context, cfg config.Config) (repository.TripStore, func(), error) {
	if cfg.Store.Driver == config.StoreDriverMongo {
		client, trips, err := database.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongoTripStore(trips, cfg.Store.Timeout), func() {
			_ = client.Disconnect(context.Background())
		}, nil
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewPostgresTripStore(db, cfg.Store.Timeout), db.Close, nil
}

func sweepSessions(ctx context.Context, cfg config.SessionConfig, sweep func(context.Context, time.Time) int, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if closed := sweep(ctx, now); closed > 0 {
				logger.Info("idle itinerary sessions closed", slog.Int("count", closed))
			}
		}
	}
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
