package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/trip-planner/backend/internal/models"
)

type PostgresTripStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresTripStore создает хранилище поездок в PostgreSQL.
func NewPostgresTripStore(db *pgxpool.Pool, timeout time.Duration) *PostgresTripStore {
	return &PostgresTripStore{db: db, timeout: timeout}
}

// Create сохраняет новую поездку.
func (r *PostgresTripStore) Create(ctx context.Context, trip models.Trip) (models.Trip, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}

	itinerary, err := marshalJSON(trip.Itinerary, "[]")
	if err != nil {
		return trip, err
	}
	hotels, err := marshalJSON(trip.Hotels, "[]")
	if err != nil {
		return trip, err
	}

	var startDate *time.Time
	if !trip.StartDate.IsZero() {
		startDate = &trip.StartDate
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO trips (id, user_id, title, destination, start_date, number_of_days, duration, itinerary, hotels)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		trip.ID, trip.UserID, trip.Title, trip.Destination, startDate, trip.NumberOfDays, trip.Duration, itinerary, hotels,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return trip, err
	}

	return trip, nil
}

// Get возвращает поездку пользователя по идентификатору.
func (r *PostgresTripStore) Get(ctx context.Context, userID, tripID uuid.UUID) (models.Trip, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var trip models.Trip
	var startDate *time.Time
	var itinerary, hotels []byte

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, destination, start_date, number_of_days, duration, itinerary, hotels, created_at, updated_at
		 FROM trips
		 WHERE id = $1 AND user_id = $2`,
		tripID, userID,
	).Scan(&trip.ID, &trip.UserID, &trip.Title, &trip.Destination, &startDate, &trip.NumberOfDays, &trip.Duration, &itinerary, &hotels, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trip, ErrNotFound
		}
		return trip, err
	}

	if startDate != nil {
		trip.StartDate = *startDate
	}

	if len(itinerary) > 0 {
		if err := json.Unmarshal(itinerary, &trip.Itinerary); err != nil {
			return trip, fmt.Errorf("decode itinerary: %w", err)
		}
	}
	if len(hotels) > 0 {
		if err := json.Unmarshal(hotels, &trip.Hotels); err != nil {
			return trip, fmt.Errorf("decode hotels: %w", err)
		}
	}

	return trip, nil
}

// ApplyPatch обновляет только переданные поля одной командой UPDATE.
func (r *PostgresTripStore) ApplyPatch(ctx context.Context, userID, tripID uuid.UUID, patch models.TripPatch) error {
	setClause, args, err := buildPatchUpdate(patch, 3)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx,
		`UPDATE trips
		 SET `+setClause+`, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		append([]any{tripID, userID}, args...)...,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func buildPatchUpdate(patch models.TripPatch, firstArg int) (string, []any, error) {
	if patch.IsEmpty() {
		return "", nil, ErrInvalid
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 3)
	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, firstArg+len(args)))
		args = append(args, value)
	}

	if patch.Itinerary != nil {
		payload, err := marshalJSON(*patch.Itinerary, "[]")
		if err != nil {
			return "", nil, err
		}
		add("itinerary", payload)
	}
	if patch.NumberOfDays != nil {
		if *patch.NumberOfDays < 0 {
			return "", nil, ErrInvalid
		}
		add("number_of_days", *patch.NumberOfDays)
	}
	if patch.Duration != nil {
		add("duration", *patch.Duration)
	}

	return strings.Join(sets, ", "), args, nil
}

func marshalJSON(value any, empty string) (string, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(payload) == "null" {
		return empty, nil
	}
	return string(payload), nil
}
