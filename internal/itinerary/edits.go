package itinerary

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"example.com/trip-planner/backend/internal/models"
)

// ActivityUpdate содержит изменяемые поля активности. nil означает «не менять».
type ActivityUpdate struct {
	Title       *string
	Description *string
	Time        *models.TimeSlot
	Duration    *string
	TimeTravel  *string
	Cost        *models.Cost
	Rating      *float64
	IsCompleted *bool
}

// AddDay вставляет день в позицию position (End означает конец) и перенумеровывает маршрут.
func AddDay(days []models.Day, day models.Day, position int) ([]models.Day, error) {
	if position < End || position > len(days) {
		return nil, fmt.Errorf("%w: day position %d out of range [0, %d]", ErrValidation, position, len(days))
	}
	if position == End {
		position = len(days)
	}

	day = cloneDay(day)
	day.Theme = strings.TrimSpace(day.Theme)
	day.Date = ""
	seen := make(map[string]struct{}, len(day.Activities))
	for i := range day.Activities {
		activity := &day.Activities[i]
		if activity.ID == "" {
			activity.ID = uuid.NewString()
		}
		if err := ValidateActivity(*activity); err != nil {
			return nil, err
		}
		if _, dup := seen[activity.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate activity id %q in new day", ErrValidation, activity.ID)
		}
		seen[activity.ID] = struct{}{}
	}

	out := make([]models.Day, 0, len(days)+1)
	out = append(out, Clone(days[:position])...)
	out = append(out, day)
	out = append(out, Clone(days[position:])...)

	return Renumber(out), nil
}

// RemoveDay удаляет день вместе с его активностями; последующие дни сдвигаются.
func RemoveDay(days []models.Day, dayIndex int) ([]models.Day, error) {
	if err := checkDay(days, dayIndex); err != nil {
		return nil, err
	}

	out := make([]models.Day, 0, len(days)-1)
	out = append(out, Clone(days[:dayIndex])...)
	out = append(out, Clone(days[dayIndex+1:])...)
	return Renumber(out), nil
}

// MoveDay переставляет день с позиции from на позицию to.
func MoveDay(days []models.Day, from, to int) ([]models.Day, error) {
	if err := checkDay(days, from); err != nil {
		return nil, err
	}
	if to < 0 || to >= len(days) {
		return nil, fmt.Errorf("%w: day index %d out of range [0, %d)", ErrValidation, to, len(days))
	}

	out := Clone(days)
	if from != to {
		moved := out[from]
		rest := append(out[:from:from], out[from+1:]...)
		out = make([]models.Day, 0, len(days))
		out = append(out, rest[:to]...)
		out = append(out, moved)
		out = append(out, rest[to:]...)
	}
	return Renumber(out), nil
}

// AddActivity добавляет активность в день. Идентификатор генерируется, если не задан.
func AddActivity(days []models.Day, dayIndex int, activity models.Activity, position int) ([]models.Day, models.Activity, error) {
	if err := checkDay(days, dayIndex); err != nil {
		return nil, models.Activity{}, err
	}

	activity = cloneActivity(activity)
	activity.ID = strings.TrimSpace(activity.ID)
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.Title = strings.TrimSpace(activity.Title)
	if err := ValidateActivity(activity); err != nil {
		return nil, models.Activity{}, err
	}
	if IndexOf(days[dayIndex], activity.ID) >= 0 {
		return nil, models.Activity{}, fmt.Errorf("%w: activity id %q already exists in day %d", ErrValidation, activity.ID, days[dayIndex].DayNumber)
	}

	activities := days[dayIndex].Activities
	if position < End || position > len(activities) {
		return nil, models.Activity{}, fmt.Errorf("%w: activity position %d out of range [0, %d]", ErrValidation, position, len(activities))
	}

	out := Clone(days)
	out[dayIndex].Activities = insertAt(out[dayIndex].Activities, position, activity)
	return out, activity, nil
}

// UpdateActivity изменяет поля активности на месте, не меняя ее позицию.
func UpdateActivity(days []models.Day, dayIndex int, activityID string, update ActivityUpdate) ([]models.Day, models.Activity, error) {
	if err := checkDay(days, dayIndex); err != nil {
		return nil, models.Activity{}, err
	}
	index := IndexOf(days[dayIndex], activityID)
	if index < 0 {
		return nil, models.Activity{}, fmt.Errorf("%w: activity %q not found in day %d", ErrValidation, activityID, days[dayIndex].DayNumber)
	}

	out := Clone(days)
	activity := &out[dayIndex].Activities[index]
	if update.Title != nil {
		activity.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		activity.Description = *update.Description
	}
	if update.Time != nil {
		slot := *update.Time
		activity.Time = &slot
	}
	if update.Duration != nil {
		activity.Duration = *update.Duration
	}
	if update.TimeTravel != nil {
		activity.TimeTravel = *update.TimeTravel
	}
	if update.Cost != nil {
		cost := *update.Cost
		activity.Cost = &cost
	}
	if update.Rating != nil {
		rating := *update.Rating
		activity.Rating = &rating
	}
	if update.IsCompleted != nil {
		activity.IsCompleted = *update.IsCompleted
	}

	if err := ValidateActivity(*activity); err != nil {
		return nil, models.Activity{}, err
	}
	return out, *activity, nil
}

// RemoveActivity удаляет активность из дня.
func RemoveActivity(days []models.Day, dayIndex int, activityID string) ([]models.Day, error) {
	if err := checkDay(days, dayIndex); err != nil {
		return nil, err
	}
	index := IndexOf(days[dayIndex], activityID)
	if index < 0 {
		return nil, fmt.Errorf("%w: activity %q not found in day %d", ErrValidation, activityID, days[dayIndex].DayNumber)
	}

	out := Clone(days)
	out[dayIndex].Activities = removeAt(out[dayIndex].Activities, index)
	return out, nil
}
