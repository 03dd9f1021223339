package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/config"
	"example.com/trip-planner/backend/internal/database"
	"example.com/trip-planner/backend/internal/models"
	"example.com/trip-planner/backend/internal/planner"
	"example.com/trip-planner/backend/internal/repository"
)

// environment holds the store a command works against.
type environment struct {
	cfg   config.Config
	store repository.TripStore
	close func()
}

// openEnvironment is replaced in tests.
var openEnvironment = func(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, trips, err := database.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &environment{
			cfg:   cfg,
			store: repository.NewMongoTripStore(trips, cfg.Store.Timeout),
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil
	default:
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &environment{
			cfg:   cfg,
			store: repository.NewPostgresTripStore(pool, cfg.Store.Timeout),
			close: pool.Close,
		}, nil
	}
}

// loadController loads the trip and wraps it in a controller bound to the store.
func (env *environment) loadController(ctx context.Context, userID, tripID uuid.UUID) (models.Trip, *planner.Controller, error) {
	trip, err := env.store.Get(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return trip, nil, fmt.Errorf("trip %s not found", tripID)
		}
		return trip, nil, err
	}

	gateway := repository.Gateway{Store: env.store, UserID: userID, TripID: tripID}
	return trip, planner.New(trip, gateway, slog.Default(), planner.Hooks{}), nil
}

// commit waits for the edit to be stored and closes the controller.
func commit(ctx context.Context, controller *planner.Controller, edit *planner.Edit) error {
	defer controller.Close(ctx)

	if err := edit.Wait(ctx); err != nil {
		var perr *planner.PersistenceError
		if errors.As(err, &perr) {
			return fmt.Errorf("itinerary not saved, the store still holds the previous version: %w", perr.Err)
		}
		return err
	}
	return nil
}
