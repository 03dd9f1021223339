package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/models"
)

const timeLayout = "15:04"

// Clone возвращает глубокую копию маршрута. Пустой маршрут всегда не nil.
func Clone(days []models.Day) []models.Day {
	out := make([]models.Day, len(days))
	for i, day := range days {
		out[i] = cloneDay(day)
	}
	return out
}

func cloneDay(day models.Day) models.Day {
	activities := make([]models.Activity, len(day.Activities))
	for i, activity := range day.Activities {
		activities[i] = cloneActivity(activity)
	}
	day.Activities = activities
	return day
}

func cloneActivity(activity models.Activity) models.Activity {
	if activity.Time != nil {
		slot := *activity.Time
		activity.Time = &slot
	}
	if activity.Cost != nil {
		cost := *activity.Cost
		activity.Cost = &cost
	}
	if activity.Rating != nil {
		rating := *activity.Rating
		activity.Rating = &rating
	}
	return activity
}

// Normalize приводит загруженный маршрут к инвариантам: nil превращается в пустой
// список, активностям без id или с повторяющимся в пределах дня id выдается новый
// UUID, дни перенумеровываются.
func Normalize(days []models.Day) []models.Day {
	out := Clone(days)
	for i := range out {
		seen := make(map[string]struct{}, len(out[i].Activities))
		for j := range out[i].Activities {
			activity := &out[i].Activities[j]
			activity.ID = strings.TrimSpace(activity.ID)
			if _, dup := seen[activity.ID]; activity.ID == "" || dup {
				activity.ID = uuid.NewString()
			}
			seen[activity.ID] = struct{}{}
		}
	}
	return Renumber(out)
}

// Validate проверяет инварианты маршрута: сплошную нумерацию дней, уникальность
// id активностей внутри дня и формат времени.
func Validate(days []models.Day) error {
	for i, day := range days {
		if day.DayNumber != i+1 {
			return fmt.Errorf("%w: day at index %d has number %d", ErrValidation, i, day.DayNumber)
		}

		seen := make(map[string]struct{}, len(day.Activities))
		for _, activity := range day.Activities {
			if err := ValidateActivity(activity); err != nil {
				return fmt.Errorf("day %d: %w", day.DayNumber, err)
			}
			if _, dup := seen[activity.ID]; dup {
				return fmt.Errorf("%w: duplicate activity id %q in day %d", ErrValidation, activity.ID, day.DayNumber)
			}
			seen[activity.ID] = struct{}{}
		}
	}
	return nil
}

// ValidateActivity проверяет одну активность.
func ValidateActivity(activity models.Activity) error {
	if strings.TrimSpace(activity.ID) == "" {
		return fmt.Errorf("%w: activity id is required", ErrValidation)
	}
	if strings.TrimSpace(activity.Title) == "" {
		return fmt.Errorf("%w: activity title is required", ErrValidation)
	}
	if activity.Time != nil {
		if err := validateClock(activity.Time.StartTime); err != nil {
			return fmt.Errorf("%w: start_time %v", ErrValidation, err)
		}
		if err := validateClock(activity.Time.EndTime); err != nil {
			return fmt.Errorf("%w: end_time %v", ErrValidation, err)
		}
	}
	return nil
}

func validateClock(value string) error {
	if value == "" {
		return nil
	}
	if len(value) != len(timeLayout) {
		return fmt.Errorf("%q must be HH:MM", value)
	}
	if _, err := time.Parse(timeLayout, value); err != nil {
		return fmt.Errorf("%q must be HH:MM", value)
	}
	return nil
}

// IndexOf возвращает позицию активности с данным id или -1.
func IndexOf(day models.Day, activityID string) int {
	for i, activity := range day.Activities {
		if activity.ID == activityID {
			return i
		}
	}
	return -1
}

func checkDay(days []models.Day, dayIndex int) error {
	if len(days) == 0 {
		return fmt.Errorf("%w: itinerary is empty", ErrValidation)
	}
	if dayIndex < 0 || dayIndex >= len(days) {
		return fmt.Errorf("%w: day index %d out of range [0, %d)", ErrValidation, dayIndex, len(days))
	}
	return nil
}
