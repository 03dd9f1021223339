package itinerary

import (
	"errors"
	"reflect"
	"testing"

	"example.com/trip-planner/backend/internal/models"
)

// TestRemoveDayRenumbers проверяет перенумерацию после удаления дня.
func TestRemoveDayRenumbers(t *testing.T) {
	days := []models.Day{day(1, "A"), day(2, "B"), day(3, "C")}

	got, err := RemoveDay(days, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
	if got[0].DayNumber != 1 || got[1].DayNumber != 2 {
		t.Fatalf("expected numbers 1 and 2, got %d and %d", got[0].DayNumber, got[1].DayNumber)
	}
	if want := []string{"C"}; !reflect.DeepEqual(ids(got[1]), want) {
		t.Fatalf("expected former day 3 activities %v, got %v", want, ids(got[1]))
	}

	if _, err := RemoveDay(days, 3); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := RemoveDay(nil, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty itinerary, got %v", err)
	}
}

// TestAddDay проверяет вставку дня в середину и в конец.
func TestAddDay(t *testing.T) {
	days := []models.Day{day(1, "A"), day(2, "B")}

	got, err := AddDay(days, models.Day{Theme: "Beach", Activities: []models.Activity{{Title: "Swim"}}}, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 || got[1].Theme != "Beach" {
		t.Fatalf("expected new day at index 1, got %+v", got)
	}
	if got[1].Activities[0].ID == "" {
		t.Fatal("expected generated activity id")
	}
	for i, d := range got {
		if d.DayNumber != i+1 {
			t.Fatalf("day at index %d has number %d", i, d.DayNumber)
		}
	}

	got, err = AddDay(days, models.Day{}, End)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 || got[2].DayNumber != 3 {
		t.Fatalf("expected appended day 3, got %+v", got)
	}

	if _, err := AddDay(days, models.Day{}, 4); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// TestMoveDay проверяет перестановку дней.
func TestMoveDay(t *testing.T) {
	days := []models.Day{day(1, "A"), day(2, "B"), day(3, "C")}

	got, err := MoveDay(days, 0, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	order := []string{got[0].Activities[0].ID, got[1].Activities[0].ID, got[2].Activities[0].ID}
	if want := []string{"B", "C", "A"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i, d := range got {
		if d.DayNumber != i+1 {
			t.Fatalf("day at index %d has number %d", i, d.DayNumber)
		}
	}

	if _, err := MoveDay(days, 0, 3); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// TestAddActivity проверяет добавление активности.
func TestAddActivity(t *testing.T) {
	days := []models.Day{day(1, "A", "B")}

	got, added, err := AddActivity(days, 0, models.Activity{Title: " Lunch "}, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if added.ID == "" || added.Title != "Lunch" {
		t.Fatalf("unexpected activity: %+v", added)
	}
	if want := []string{"A", added.ID, "B"}; !reflect.DeepEqual(ids(got[0]), want) {
		t.Fatalf("expected %v, got %v", want, ids(got[0]))
	}

	if _, _, err := AddActivity(days, 0, models.Activity{ID: "A", Title: "Again"}, End); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	if _, _, err := AddActivity(days, 0, models.Activity{Title: "  "}, End); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected title error, got %v", err)
	}
}

// TestUpdateActivity проверяет изменение полей активности на месте.
func TestUpdateActivity(t *testing.T) {
	days := []models.Day{day(1, "A", "B")}
	done := true

	got, updated, err := UpdateActivity(days, 0, "B", ActivityUpdate{
		IsCompleted: &done,
		Time:        &models.TimeSlot{StartTime: "10:00", EndTime: "12:00"},
		Cost:        &models.Cost{Amount: 12.5, Currency: "EUR"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.IsCompleted || updated.Time.StartTime != "10:00" || updated.Cost.Amount != 12.5 {
		t.Fatalf("unexpected activity: %+v", updated)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(ids(got[0]), want) {
		t.Fatalf("order must be kept, got %v", ids(got[0]))
	}
	if days[0].Activities[1].IsCompleted {
		t.Fatal("input must not be mutated")
	}

	if _, _, err := UpdateActivity(days, 0, "B", ActivityUpdate{Time: &models.TimeSlot{StartTime: "7pm"}}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected time format error, got %v", err)
	}
}

// TestRemoveActivity проверяет удаление активности.
func TestRemoveActivity(t *testing.T) {
	days := []models.Day{day(1, "A", "B", "C")}

	got, err := RemoveActivity(days, 0, "B")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := []string{"A", "C"}; !reflect.DeepEqual(ids(got[0]), want) {
		t.Fatalf("expected %v, got %v", want, ids(got[0]))
	}

	if _, err := RemoveActivity(days, 0, "Z"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
