package itinerary

import (
	"fmt"

	"example.com/trip-planner/backend/internal/models"
)

const (
	// NoContainer означает, что перетаскивание закончилось вне какого-либо дня.
	NoContainer = -1
	// End означает вставку в конец списка активностей дня.
	End = -1
)

// Source указывает перетаскиваемую активность. Если задан ActivityID, он
// имеет приоритет над ActivityIndex.
type Source struct {
	DayIndex      int
	ActivityIndex int
	ActivityID    string
}

// Target указывает день и позицию вставки.
type Target struct {
	DayIndex int
	Position int
}

// ResolveMove вычисляет новый маршрут по жесту перетаскивания. Входной маршрут
// не изменяется. При отсутствии цели возвращается копия входа и ErrNoTarget.
func ResolveMove(days []models.Day, src Source, dst Target) ([]models.Day, error) {
	if dst.DayIndex == NoContainer {
		return Clone(days), ErrNoTarget
	}

	if err := checkDay(days, src.DayIndex); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := checkDay(days, dst.DayIndex); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	from, err := resolveSourceIndex(days[src.DayIndex], src)
	if err != nil {
		return nil, err
	}
	if dst.Position < End {
		return nil, fmt.Errorf("%w: target position %d", ErrValidation, dst.Position)
	}

	out := Clone(days)

	if src.DayIndex == dst.DayIndex {
		activities := out[src.DayIndex].Activities
		to := dst.Position
		if to == End || to >= len(activities) {
			to = len(activities) - 1
		}
		out[src.DayIndex].Activities = arrayMove(activities, from, to)
		return out, nil
	}

	moved := out[src.DayIndex].Activities[from]
	out[src.DayIndex].Activities = removeAt(out[src.DayIndex].Activities, from)
	out[dst.DayIndex].Activities = insertAt(out[dst.DayIndex].Activities, dst.Position, moved)
	return out, nil
}

func resolveSourceIndex(day models.Day, src Source) (int, error) {
	if src.ActivityID != "" {
		index := IndexOf(day, src.ActivityID)
		if index < 0 {
			return 0, fmt.Errorf("%w: activity %q not found in day %d", ErrValidation, src.ActivityID, day.DayNumber)
		}
		return index, nil
	}

	if src.ActivityIndex < 0 || src.ActivityIndex >= len(day.Activities) {
		return 0, fmt.Errorf("%w: activity index %d out of range in day %d", ErrValidation, src.ActivityIndex, day.DayNumber)
	}
	return src.ActivityIndex, nil
}

func arrayMove(activities []models.Activity, from, to int) []models.Activity {
	if from == to {
		return activities
	}
	moved := activities[from]
	return insertAt(removeAt(activities, from), to, moved)
}

func removeAt(activities []models.Activity, index int) []models.Activity {
	out := make([]models.Activity, 0, len(activities)-1)
	out = append(out, activities[:index]...)
	return append(out, activities[index+1:]...)
}

func insertAt(activities []models.Activity, index int, activity models.Activity) []models.Activity {
	if index == End || index >= len(activities) {
		index = len(activities)
	}
	out := make([]models.Activity, 0, len(activities)+1)
	out = append(out, activities[:index]...)
	out = append(out, activity)
	return append(out, activities[index:]...)
}
