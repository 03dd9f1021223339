package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/models"
)

// TripStore описывает каноническое хранилище поездок. ApplyPatch применяет патч
// целиком или не применяет вовсе.
type TripStore interface {
	Create(ctx context.Context, trip models.Trip) (models.Trip, error)
	Get(ctx context.Context, userID, tripID uuid.UUID) (models.Trip, error)
	ApplyPatch(ctx context.Context, userID, tripID uuid.UUID, patch models.TripPatch) error
}

// Gateway привязывает хранилище к одной поездке пользователя.
type Gateway struct {
	Store  TripStore
	UserID uuid.UUID
	TripID uuid.UUID
}

// Persist сохраняет частичное обновление поездки.
func (g Gateway) Persist(ctx context.Context, patch models.TripPatch) error {
	return g.Store.ApplyPatch(ctx, g.UserID, g.TripID, patch)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
