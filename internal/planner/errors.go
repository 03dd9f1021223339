package planner

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/models"
)

var ErrClosed = errors.New("plan controller is closed")

// PersistenceError сообщает, что шлюз не сохранил правку. Оптимистичное состояние
// в памяти остается примененным; Previous и Candidate позволяют вызывающему
// выбрать откат (Restore) или повтор (Retry).
type PersistenceError struct {
	TripID    uuid.UUID
	Seq       uint64
	Previous  []models.Day
	Candidate []models.Day
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist itinerary edit %d of trip %s: %v", e.Seq, e.TripID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
