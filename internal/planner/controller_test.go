package planner

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/itinerary"
	"example.com/trip-planner/backend/internal/models"
)

type fakeGateway struct {
	mu      sync.Mutex
	patches []models.TripPatch
	err     error
	release chan struct{}
}

func (g *fakeGateway) Persist(ctx context.Context, patch models.TripPatch) error {
	g.mu.Lock()
	first := len(g.patches) == 0
	g.patches = append(g.patches, patch)
	release := g.release
	err := g.err
	g.mu.Unlock()

	if first && release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (g *fakeGateway) calls() []models.TripPatch {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]models.TripPatch, len(g.patches))
	copy(out, g.patches)
	return out
}

func (g *fakeGateway) setErr(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

func activity(id string) models.Activity {
	return models.Activity{ID: id, Title: id}
}

func testTrip(days ...models.Day) models.Trip {
	return models.Trip{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Title:        "Test trip",
		NumberOfDays: len(days),
		Itinerary:    days,
	}
}

func activityIDs(d models.Day) []string {
	out := make([]string, 0, len(d.Activities))
	for _, a := range d.Activities {
		out = append(out, a.ID)
	}
	return out
}

func waitEdit(t *testing.T, edit *Edit) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return edit.Wait(ctx)
}

// TestMoveActivityPersists проверяет, что перенос применяется сразу и сохраняется маршрутом целиком.
func TestMoveActivityPersists(t *testing.T) {
	gateway := &fakeGateway{}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A"), activity("B"), activity("C")}},
	), gateway, nil, Hooks{})

	edit, err := controller.MoveActivity(context.Background(), itinerary.Source{DayIndex: 0, ActivityIndex: 0}, itinerary.Target{DayIndex: 0, Position: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	days, seq := controller.Snapshot()
	if want := []string{"B", "C", "A"}; !reflect.DeepEqual(activityIDs(days[0]), want) {
		t.Fatalf("expected %v, got %v", want, activityIDs(days[0]))
	}
	if seq != 1 || edit.Seq != 1 {
		t.Fatalf("expected seq 1, got %d and %d", seq, edit.Seq)
	}

	if err := waitEdit(t, edit); err != nil {
		t.Fatalf("expected persisted edit, got %v", err)
	}

	calls := gateway.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 gateway call, got %d", len(calls))
	}
	if calls[0].Itinerary == nil || calls[0].NumberOfDays != nil || calls[0].Duration != nil {
		t.Fatalf("expected itinerary-only patch, got %+v", calls[0])
	}
	if !reflect.DeepEqual(*calls[0].Itinerary, days) {
		t.Fatalf("persisted itinerary differs from state: %+v", *calls[0].Itinerary)
	}
}

// TestPersistFailureKeepsOptimisticState проверяет, что при сбое сохранения состояние не откатывается.
func TestPersistFailureKeepsOptimisticState(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("store is down")}
	failed := make(chan *PersistenceError, 1)
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A")}},
		models.Day{DayNumber: 2, Activities: []models.Activity{activity("B")}},
	), gateway, nil, Hooks{Failed: func(err *PersistenceError) { failed <- err }})

	before, _ := controller.Snapshot()
	edit, err := controller.MoveActivity(context.Background(), itinerary.Source{DayIndex: 0, ActivityID: "A"}, itinerary.Target{DayIndex: 1, Position: itinerary.End})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err = waitEdit(t, edit)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !reflect.DeepEqual(perr.Previous, before) {
		t.Fatalf("expected previous %+v, got %+v", before, perr.Previous)
	}
	if !reflect.DeepEqual(perr.Candidate, edit.Itinerary) {
		t.Fatalf("expected candidate %+v, got %+v", edit.Itinerary, perr.Candidate)
	}
	if perr.TripID != controller.TripID() || perr.Seq != edit.Seq {
		t.Fatalf("unexpected error identity: %+v", perr)
	}

	after, _ := controller.Snapshot()
	if !reflect.DeepEqual(after, edit.Itinerary) {
		t.Fatal("expected optimistic state to stay applied")
	}

	select {
	case got := <-failed:
		if got != perr {
			t.Fatal("expected hook to receive the same error")
		}
	case <-time.After(time.Second):
		t.Fatal("expected failure hook call")
	}
}

// TestRemoveDayPersistsCounters проверяет второй патч с числом дней и длительностью.
func TestRemoveDayPersistsCounters(t *testing.T) {
	gateway := &fakeGateway{}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A")}},
		models.Day{DayNumber: 2, Activities: []models.Activity{activity("B")}},
		models.Day{DayNumber: 3, Activities: []models.Activity{activity("C")}},
	), gateway, nil, Hooks{})

	edit, err := controller.RemoveDay(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := waitEdit(t, edit); err != nil {
		t.Fatalf("expected persisted edit, got %v", err)
	}

	calls := gateway.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", len(calls))
	}
	if calls[0].Itinerary == nil || len(*calls[0].Itinerary) != 2 {
		t.Fatalf("expected itinerary of 2 days first, got %+v", calls[0])
	}
	if calls[1].NumberOfDays == nil || *calls[1].NumberOfDays != 2 {
		t.Fatalf("expected number_of_days 2, got %+v", calls[1])
	}
	if calls[1].Duration == nil || *calls[1].Duration != "2 days" {
		t.Fatalf("expected duration label, got %+v", calls[1])
	}
}

// TestCounterPatchSkippedAfterFailure проверяет, что счетчики не пишутся, если маршрут не сохранен.
func TestCounterPatchSkippedAfterFailure(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("timeout")}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A")}},
		models.Day{DayNumber: 2},
	), gateway, nil, Hooks{})

	edit, err := controller.RemoveDay(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := waitEdit(t, edit); err == nil {
		t.Fatal("expected persistence error")
	}
	if calls := gateway.calls(); len(calls) != 1 {
		t.Fatalf("expected single gateway call, got %d", len(calls))
	}
}

// TestPersistOrder проверяет, что сохранения выполняются в порядке правок.
func TestPersistOrder(t *testing.T) {
	gateway := &fakeGateway{release: make(chan struct{})}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A"), activity("B"), activity("C")}},
	), gateway, nil, Hooks{})

	first, err := controller.MoveActivity(context.Background(), itinerary.Source{DayIndex: 0, ActivityIndex: 0}, itinerary.Target{DayIndex: 0, Position: itinerary.End})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := controller.RemoveActivity(context.Background(), 0, "B")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	select {
	case <-second.Done():
		t.Fatal("second edit must wait for the first one")
	case <-time.After(50 * time.Millisecond):
	}

	close(gateway.release)
	if err := waitEdit(t, second); err != nil {
		t.Fatalf("expected persisted edit, got %v", err)
	}
	if err := waitEdit(t, first); err != nil {
		t.Fatalf("expected persisted edit, got %v", err)
	}

	calls := gateway.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", len(calls))
	}
	if want := []string{"B", "C", "A"}; !reflect.DeepEqual(activityIDs((*calls[0].Itinerary)[0]), want) {
		t.Fatalf("expected first persisted %v, got %v", want, activityIDs((*calls[0].Itinerary)[0]))
	}
	if want := []string{"C", "A"}; !reflect.DeepEqual(activityIDs((*calls[1].Itinerary)[0]), want) {
		t.Fatalf("expected last persisted %v, got %v", want, activityIDs((*calls[1].Itinerary)[0]))
	}
}

// TestNoTargetLeavesStateUnchanged проверяет сброс вне дня.
func TestNoTargetLeavesStateUnchanged(t *testing.T) {
	gateway := &fakeGateway{}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A"), activity("B")}},
	), gateway, nil, Hooks{})
	before, seq := controller.Snapshot()

	edit, err := controller.MoveActivity(context.Background(), itinerary.Source{DayIndex: 0, ActivityIndex: 0}, itinerary.Target{DayIndex: itinerary.NoContainer})
	if !errors.Is(err, itinerary.ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
	if edit != nil {
		t.Fatal("expected no edit")
	}

	after, afterSeq := controller.Snapshot()
	if !reflect.DeepEqual(before, after) || seq != afterSeq {
		t.Fatal("expected unchanged state")
	}
	if len(gateway.calls()) != 0 {
		t.Fatal("expected no gateway calls")
	}
}

// TestInvalidEditRejected проверяет, что ошибка валидации не меняет состояние.
func TestInvalidEditRejected(t *testing.T) {
	gateway := &fakeGateway{}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A")}},
	), gateway, nil, Hooks{})
	before, _ := controller.Snapshot()

	_, err := controller.MoveActivity(context.Background(), itinerary.Source{DayIndex: 0, ActivityIndex: 0}, itinerary.Target{DayIndex: 5, Position: 0})
	if !errors.Is(err, itinerary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := controller.RemoveDay(context.Background(), 3); !errors.Is(err, itinerary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	after, _ := controller.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatal("expected unchanged state")
	}
	if len(gateway.calls()) != 0 {
		t.Fatal("expected no gateway calls")
	}
}

// TestNoopEditSkipsPersist проверяет, что сброс активности на свое место не вызывает сохранение.
func TestNoopEditSkipsPersist(t *testing.T) {
	gateway := &fakeGateway{}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A"), activity("B")}},
	), gateway, nil, Hooks{})

	edit, err := controller.MoveActivity(context.Background(), itinerary.Source{DayIndex: 0, ActivityIndex: 1}, itinerary.Target{DayIndex: 0, Position: 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	select {
	case <-edit.Done():
	default:
		t.Fatal("expected completed edit")
	}
	if edit.Seq != 0 {
		t.Fatalf("expected seq 0, got %d", edit.Seq)
	}
	if len(gateway.calls()) != 0 {
		t.Fatal("expected no gateway calls")
	}
}

// TestRestoreAfterFailure проверяет откат на Previous после ошибки сохранения.
func TestRestoreAfterFailure(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("store is down")}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A")}},
		models.Day{DayNumber: 2, Activities: []models.Activity{activity("B")}},
	), gateway, nil, Hooks{})

	edit, err := controller.RemoveDay(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var perr *PersistenceError
	if err := waitEdit(t, edit); !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	gateway.setErr(nil)
	restored, err := controller.Restore(context.Background(), perr.Previous)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := waitEdit(t, restored); err != nil {
		t.Fatalf("expected persisted restore, got %v", err)
	}

	days, _ := controller.Snapshot()
	if !reflect.DeepEqual(days, perr.Previous) {
		t.Fatalf("expected previous state, got %+v", days)
	}

	calls := gateway.calls()
	last := calls[len(calls)-1]
	if last.NumberOfDays == nil || *last.NumberOfDays != 2 {
		t.Fatalf("expected counters patch with 2 days, got %+v", last)
	}
}

// TestRetryPersistsCurrentState проверяет повторное сохранение без изменения маршрута.
func TestRetryPersistsCurrentState(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("store is down")}
	controller := New(testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{activity("A"), activity("B")}},
	), gateway, nil, Hooks{})

	edit, err := controller.RemoveActivity(context.Background(), 0, "A")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := waitEdit(t, edit); err == nil {
		t.Fatal("expected persistence error")
	}

	gateway.setErr(nil)
	retry, err := controller.Retry(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if retry.Seq != edit.Seq+1 {
		t.Fatalf("expected seq %d, got %d", edit.Seq+1, retry.Seq)
	}
	if err := waitEdit(t, retry); err != nil {
		t.Fatalf("expected persisted retry, got %v", err)
	}

	calls := gateway.calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 gateway calls, got %d", len(calls))
	}
	if want := []string{"B"}; !reflect.DeepEqual(activityIDs((*calls[1].Itinerary)[0]), want) {
		t.Fatalf("expected retried %v, got %v", want, activityIDs((*calls[1].Itinerary)[0]))
	}
}

// TestMuseumScenario проверяет перенос активности в другой день и удаление опустевшего дня.
func TestMuseumScenario(t *testing.T) {
	gateway := &fakeGateway{}
	saved := make(chan uint64, 4)
	trip := testTrip(
		models.Day{DayNumber: 1, Activities: []models.Activity{{ID: "x1", Title: "Museum"}}},
		models.Day{DayNumber: 2, Activities: []models.Activity{{ID: "y1", Title: "Park"}}},
	)
	trip.StartDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	controller := New(trip, gateway, nil, Hooks{Saved: func(_ uuid.UUID, seq uint64) { saved <- seq }})

	if _, err := controller.MoveActivity(context.Background(), itinerary.Source{DayIndex: 0, ActivityID: "x1"}, itinerary.Target{DayIndex: 1, Position: itinerary.End}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	edit, err := controller.RemoveDay(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := waitEdit(t, edit); err != nil {
		t.Fatalf("expected persisted edit, got %v", err)
	}

	days, _ := controller.Snapshot()
	if len(days) != 1 || days[0].DayNumber != 1 || days[0].Date != "2024-06-01" {
		t.Fatalf("unexpected days: %+v", days)
	}
	if want := []string{"y1", "x1"}; !reflect.DeepEqual(activityIDs(days[0]), want) {
		t.Fatalf("expected %v, got %v", want, activityIDs(days[0]))
	}

	calls := gateway.calls()
	last := calls[len(calls)-1]
	if last.NumberOfDays == nil || *last.NumberOfDays != 1 || *last.Duration != "1 day" {
		t.Fatalf("unexpected counters patch: %+v", last)
	}

	for _, want := range []uint64{1, 2} {
		select {
		case got := <-saved:
			if got != want {
				t.Fatalf("expected saved seq %d, got %d", want, got)
			}
		case <-time.After(time.Second):
			t.Fatal("expected saved hook call")
		}
	}
}

// TestClosedController проверяет отказ в правках после Close.
func TestClosedController(t *testing.T) {
	controller := New(testTrip(models.Day{DayNumber: 1}), &fakeGateway{}, nil, Hooks{})

	if err := controller.Close(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := controller.AddDay(context.Background(), models.Day{}, itinerary.End); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := controller.Retry(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

// TestNewNormalizesLoadedItinerary проверяет нормализацию маршрута при первичной загрузке.
func TestNewNormalizesLoadedItinerary(t *testing.T) {
	trip := testTrip(
		models.Day{DayNumber: 4, Activities: []models.Activity{{Title: "Walk"}, activity("a"), activity("a")}},
		models.Day{DayNumber: 9},
	)
	trip.StartDate = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

	controller := New(trip, &fakeGateway{}, nil, Hooks{})
	days, seq := controller.Snapshot()

	if seq != 0 {
		t.Fatalf("expected seq 0, got %d", seq)
	}
	if days[0].DayNumber != 1 || days[1].DayNumber != 2 {
		t.Fatalf("expected numbers 1 and 2, got %d and %d", days[0].DayNumber, days[1].DayNumber)
	}
	if days[0].Date != "2024-06-01" || days[1].Date != "2024-06-02" {
		t.Fatalf("unexpected dates %s, %s", days[0].Date, days[1].Date)
	}
	if err := itinerary.Validate(days); err != nil {
		t.Fatalf("expected valid itinerary, got %v", err)
	}

	ids := activityIDs(days[0])
	if ids[0] == "" || ids[1] != "a" || ids[2] == "a" {
		t.Fatalf("expected generated and re-keyed ids, got %v", ids)
	}
	if days[1].Activities == nil {
		t.Fatal("expected empty activities, got nil")
	}
}
