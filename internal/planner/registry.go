package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/models"
	"example.com/trip-planner/backend/internal/repository"
)

// TripLoader выполняет первичную загрузку поездки.
type TripLoader interface {
	Get(ctx context.Context, userID, tripID uuid.UUID) (models.Trip, error)
}

// GatewayFactory связывает шлюз сохранения с конкретной поездкой пользователя.
type GatewayFactory func(userID, tripID uuid.UUID) Gateway

// HooksFactory возвращает обработчики результатов сохранения для пользователя.
type HooksFactory func(userID uuid.UUID) Hooks

type session struct {
	controller *Controller
	userID     uuid.UUID
	lastUsed   time.Time
}

// Registry хранит по одному контроллеру на поездку в пределах процесса.
type Registry struct {
	loader   TripLoader
	gateways GatewayFactory
	hooks    HooksFactory
	logger   *slog.Logger
	idleTTL  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewRegistry создает реестр сессий редактирования.
func NewRegistry(loader TripLoader, gateways GatewayFactory, hooks HooksFactory, logger *slog.Logger, idleTTL time.Duration) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		loader:   loader,
		gateways: gateways,
		hooks:    hooks,
		logger:   logger,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Open возвращает контроллер поездки, загружая ее при первом обращении.
func (r *Registry) Open(ctx context.Context, userID, tripID uuid.UUID) (*Controller, error) {
	if controller, ok, err := r.lookup(userID, tripID); ok || err != nil {
		return controller, err
	}

	trip, err := r.loader.Get(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, repository.ErrNotFound
	}

	var hooks Hooks
	if r.hooks != nil {
		hooks = r.hooks(userID)
	}
	controller := New(trip, r.gateways(userID, tripID), r.logger, hooks)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[tripID]; ok {
		if existing.userID != userID {
			return nil, repository.ErrNotFound
		}
		existing.lastUsed = r.now()
		return existing.controller, nil
	}

	r.sessions[tripID] = &session{controller: controller, userID: userID, lastUsed: r.now()}
	r.logger.Info("itinerary session opened", slog.String("trip_id", tripID.String()))
	return controller, nil
}

func (r *Registry) lookup(userID, tripID uuid.UUID) (*Controller, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sessions[tripID]
	if !ok {
		return nil, false, nil
	}
	if existing.userID != userID {
		return nil, false, repository.ErrNotFound
	}

	existing.lastUsed = r.now()
	return existing.controller, true, nil
}

// Len возвращает число открытых сессий.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Sweep закрывает сессии, неактивные дольше idleTTL, и возвращает их количество.
func (r *Registry) Sweep(ctx context.Context, now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	expired := make([]*Controller, 0)
	for tripID, s := range r.sessions {
		if now.Sub(s.lastUsed) > r.idleTTL {
			expired = append(expired, s.controller)
			delete(r.sessions, tripID)
		}
	}
	r.mu.Unlock()

	for _, controller := range expired {
		if err := controller.Close(ctx); err != nil {
			r.logger.Warn("itinerary session close interrupted",
				slog.String("trip_id", controller.TripID().String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return len(expired)
}

// Close закрывает все сессии, дожидаясь незавершенных сохранений.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.sessions))
	for tripID, s := range r.sessions {
		controllers = append(controllers, s.controller)
		delete(r.sessions, tripID)
	}
	r.mu.Unlock()

	var errs []error
	for _, controller := range controllers {
		if err := controller.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
