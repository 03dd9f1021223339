package planner

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/itinerary"
	"example.com/trip-planner/backend/internal/models"
)

// Gateway применяет частичное обновление к поездке в удаленном хранилище.
// nil означает, что запись в хранилище равна прежней, объединенной с патчем;
// при ошибке запись не изменена.
type Gateway interface {
	Persist(ctx context.Context, patch models.TripPatch) error
}

// Hooks получают результат сохранения каждой правки.
type Hooks struct {
	Saved  func(tripID uuid.UUID, seq uint64)
	Failed func(err *PersistenceError)
}

// Edit хранит результат одной правки: состояние до и после и канал завершения сохранения.
type Edit struct {
	Seq       uint64
	Previous  []models.Day
	Itinerary []models.Day

	done chan struct{}
	err  error
}

// Done закрывается, когда сохранение правки завершено.
func (e *Edit) Done() <-chan struct{} {
	return e.done
}

// Wait ждет окончания сохранения и возвращает *PersistenceError при сбое шлюза.
func (e *Edit) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Controller владеет маршрутом одной поездки в памяти. Вычисление и применение
// правок выполняется под мьютексом, сохранение идет асинхронно, в порядке правок.
type Controller struct {
	tripID    uuid.UUID
	startDate time.Time
	gateway   Gateway
	logger    *slog.Logger
	hooks     Hooks

	mu       sync.Mutex
	days     []models.Day
	seq      uint64
	tail     chan struct{}
	closed   bool
	inflight sync.WaitGroup
}

// New создает контроллер для загруженной поездки. Маршрут нормализуется.
func New(trip models.Trip, gateway Gateway, logger *slog.Logger, hooks Hooks) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		tripID:    trip.ID,
		startDate: trip.StartDate,
		gateway:   gateway,
		logger:    logger.With(slog.String("trip_id", trip.ID.String())),
		hooks:     hooks,
		days:      itinerary.DeriveDates(itinerary.Normalize(trip.Itinerary), trip.StartDate),
	}
}

func (c *Controller) TripID() uuid.UUID {
	return c.tripID
}

// Snapshot возвращает копию текущего маршрута и номер последней правки.
func (c *Controller) Snapshot() ([]models.Day, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return itinerary.Clone(c.days), c.seq
}

// MoveActivity переносит активность по жесту перетаскивания. Если цели нет,
// возвращается itinerary.ErrNoTarget и состояние не меняется.
func (c *Controller) MoveActivity(ctx context.Context, src itinerary.Source, dst itinerary.Target) (*Edit, error) {
	return c.apply(ctx, false, func(days []models.Day) ([]models.Day, error) {
		return itinerary.ResolveMove(days, src, dst)
	})
}

// AddDay вставляет день и обновляет число дней поездки.
func (c *Controller) AddDay(ctx context.Context, day models.Day, position int) (*Edit, error) {
	return c.apply(ctx, true, func(days []models.Day) ([]models.Day, error) {
		return itinerary.AddDay(days, day, position)
	})
}

// RemoveDay удаляет день и обновляет число дней поездки.
func (c *Controller) RemoveDay(ctx context.Context, dayIndex int) (*Edit, error) {
	return c.apply(ctx, true, func(days []models.Day) ([]models.Day, error) {
		return itinerary.RemoveDay(days, dayIndex)
	})
}

func (c *Controller) MoveDay(ctx context.Context, from, to int) (*Edit, error) {
	return c.apply(ctx, false, func(days []models.Day) ([]models.Day, error) {
		return itinerary.MoveDay(days, from, to)
	})
}

func (c *Controller) AddActivity(ctx context.Context, dayIndex int, activity models.Activity, position int) (*Edit, models.Activity, error) {
	var added models.Activity
	edit, err := c.apply(ctx, false, func(days []models.Day) ([]models.Day, error) {
		out, created, err := itinerary.AddActivity(days, dayIndex, activity, position)
		added = created
		return out, err
	})
	return edit, added, err
}

func (c *Controller) UpdateActivity(ctx context.Context, dayIndex int, activityID string, update itinerary.ActivityUpdate) (*Edit, models.Activity, error) {
	var updated models.Activity
	edit, err := c.apply(ctx, false, func(days []models.Day) ([]models.Day, error) {
		out, changed, err := itinerary.UpdateActivity(days, dayIndex, activityID, update)
		updated = changed
		return out, err
	})
	return edit, updated, err
}

func (c *Controller) RemoveActivity(ctx context.Context, dayIndex int, activityID string) (*Edit, error) {
	return c.apply(ctx, false, func(days []models.Day) ([]models.Day, error) {
		return itinerary.RemoveActivity(days, dayIndex, activityID)
	})
}

// Restore заменяет маршрут переданным снимком, например Previous из PersistenceError.
func (c *Controller) Restore(ctx context.Context, days []models.Day) (*Edit, error) {
	return c.apply(ctx, true, func([]models.Day) ([]models.Day, error) {
		restored := itinerary.Normalize(days)
		if err := itinerary.Validate(restored); err != nil {
			return nil, err
		}
		return restored, nil
	})
}

// Retry повторно сохраняет текущий маршрут.
func (c *Controller) Retry(ctx context.Context) (*Edit, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	current := itinerary.Clone(c.days)
	c.seq++
	edit := c.scheduleLocked(ctx, current, current, true)
	c.mu.Unlock()

	return edit, nil
}

// Close запрещает новые правки и ждет завершения всех сохранений.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) apply(ctx context.Context, composite bool, compute func([]models.Day) ([]models.Day, error)) (*Edit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	candidate, err := compute(c.days)
	if err != nil {
		return nil, err
	}
	candidate = itinerary.DeriveDates(itinerary.Renumber(candidate), c.startDate)

	if reflect.DeepEqual(candidate, c.days) {
		edit := &Edit{
			Seq:       c.seq,
			Previous:  itinerary.Clone(c.days),
			Itinerary: itinerary.Clone(c.days),
			done:      make(chan struct{}),
		}
		close(edit.done)
		return edit, nil
	}

	previous := c.days
	c.days = candidate
	c.seq++

	return c.scheduleLocked(ctx, previous, candidate, composite), nil
}

// scheduleLocked ставит сохранение в очередь за предыдущим. Вызывается под c.mu.
func (c *Controller) scheduleLocked(ctx context.Context, previous, candidate []models.Day, composite bool) *Edit {
	edit := &Edit{
		Seq:       c.seq,
		Previous:  itinerary.Clone(previous),
		Itinerary: itinerary.Clone(candidate),
		done:      make(chan struct{}),
	}

	prev := c.tail
	c.tail = edit.done
	c.inflight.Add(1)

	go c.persist(context.WithoutCancel(ctx), edit, prev, itinerary.Clone(candidate), composite)
	return edit
}

func (c *Controller) persist(ctx context.Context, edit *Edit, prev <-chan struct{}, days []models.Day, composite bool) {
	defer c.inflight.Done()
	defer close(edit.done)

	if prev != nil {
		<-prev
	}

	err := c.gateway.Persist(ctx, models.TripPatch{Itinerary: &days})
	if err == nil && composite {
		numberOfDays := len(days)
		duration := itinerary.DurationLabel(numberOfDays)
		err = c.gateway.Persist(ctx, models.TripPatch{NumberOfDays: &numberOfDays, Duration: &duration})
	}

	if err != nil {
		perr := &PersistenceError{
			TripID:    c.tripID,
			Seq:       edit.Seq,
			Previous:  itinerary.Clone(edit.Previous),
			Candidate: itinerary.Clone(edit.Itinerary),
			Err:       err,
		}
		edit.err = perr

		c.logger.Error("itinerary persist failed",
			slog.Uint64("seq", edit.Seq),
			slog.String("error", err.Error()),
		)
		if c.hooks.Failed != nil {
			c.hooks.Failed(perr)
		}
		return
	}

	c.logger.Info("itinerary persisted", slog.Uint64("seq", edit.Seq))
	if c.hooks.Saved != nil {
		c.hooks.Saved(c.tripID, edit.Seq)
	}
}
