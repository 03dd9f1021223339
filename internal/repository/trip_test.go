package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/models"
)

// TestBuildPatchUpdate проверяет, что в UPDATE попадают только переданные поля.
func TestBuildPatchUpdate(t *testing.T) {
	days := []models.Day{{DayNumber: 1, Activities: []models.Activity{{ID: "a", Title: "Museum"}}}}
	count := 1
	duration := "1 day"

	clause, args, err := buildPatchUpdate(models.TripPatch{Itinerary: &days}, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if clause != "itinerary = $3" {
		t.Fatalf("unexpected clause: %s", clause)
	}
	if len(args) != 1 || !strings.Contains(args[0].(string), `"day_number":1`) {
		t.Fatalf("unexpected args: %v", args)
	}

	clause, args, err = buildPatchUpdate(models.TripPatch{NumberOfDays: &count, Duration: &duration}, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if clause != "number_of_days = $3, duration = $4" {
		t.Fatalf("unexpected clause: %s", clause)
	}
	if len(args) != 2 || args[0] != 1 || args[1] != "1 day" {
		t.Fatalf("unexpected args: %v", args)
	}
}

// TestBuildPatchUpdateRejectsEmpty проверяет отказ на пустой патч.
func TestBuildPatchUpdateRejectsEmpty(t *testing.T) {
	if _, _, err := buildPatchUpdate(models.TripPatch{}, 3); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	negative := -1
	if _, _, err := buildPatchUpdate(models.TripPatch{NumberOfDays: &negative}, 3); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

// TestBuildPatchUpdateEmptyItinerary проверяет, что пустой маршрут пишется как [].
func TestBuildPatchUpdateEmptyItinerary(t *testing.T) {
	var days []models.Day

	_, args, err := buildPatchUpdate(models.TripPatch{Itinerary: &days}, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if args[0] != "[]" {
		t.Fatalf("expected [], got %v", args[0])
	}
}

// TestBuildPatchSet проверяет документ $set для MongoDB.
func TestBuildPatchSet(t *testing.T) {
	duration := "3 days"

	update, err := buildPatchSet(models.TripPatch{Duration: &duration})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(update) != 1 || update["duration"] != "3 days" {
		t.Fatalf("unexpected update: %v", update)
	}

	if _, err := buildPatchSet(models.TripPatch{}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

// TestDocumentRoundTrip проверяет преобразование идентификаторов документа.
func TestDocumentRoundTrip(t *testing.T) {
	trip := models.Trip{ID: uuid.New(), UserID: uuid.New(), Title: "Rome"}

	doc := toDocument(trip)
	if doc.Itinerary == nil || doc.Hotels == nil {
		t.Fatal("expected empty slices instead of nil")
	}

	got, err := fromDocument(doc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != trip.ID || got.UserID != trip.UserID || got.Title != "Rome" {
		t.Fatalf("unexpected trip: %+v", got)
	}

	doc.ID = "broken"
	if _, err := fromDocument(doc); err == nil {
		t.Fatal("expected error for invalid id")
	}
}

type recordingStore struct {
	TripStore
	userID, tripID uuid.UUID
	patch          models.TripPatch
}

func (s *recordingStore) ApplyPatch(_ context.Context, userID, tripID uuid.UUID, patch models.TripPatch) error {
	s.userID, s.tripID, s.patch = userID, tripID, patch
	return nil
}

// TestGatewayPersist проверяет, что шлюз адресует патч своей поездке.
func TestGatewayPersist(t *testing.T) {
	store := &recordingStore{}
	gateway := Gateway{Store: store, UserID: uuid.New(), TripID: uuid.New()}
	duration := "2 days"

	if err := gateway.Persist(context.Background(), models.TripPatch{Duration: &duration}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.userID != gateway.UserID || store.tripID != gateway.TripID {
		t.Fatal("patch addressed to wrong trip")
	}
	if store.patch.Duration == nil || *store.patch.Duration != "2 days" {
		t.Fatalf("unexpected patch: %+v", store.patch)
	}
}
