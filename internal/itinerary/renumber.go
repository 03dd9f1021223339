package itinerary

import (
	"strconv"
	"time"

	"example.com/trip-planner/backend/internal/models"
)

// Renumber присваивает DayNumber = index+1 каждому дню. Порядок дней не меняется.
func Renumber(days []models.Day) []models.Day {
	out := Clone(days)
	for i := range out {
		out[i].DayNumber = i + 1
	}
	return out
}

// DeriveDates пересчитывает даты дней от даты начала поездки.
// Нулевая дата начала оставляет даты без изменений.
func DeriveDates(days []models.Day, start time.Time) []models.Day {
	out := Clone(days)
	if start.IsZero() {
		return out
	}

	base := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i].Date = base.AddDate(0, 0, out[i].DayNumber-1).Format(models.DateLayout)
	}
	return out
}

// DurationLabel формирует подпись длительности поездки.
func DurationLabel(numberOfDays int) string {
	if numberOfDays == 1 {
		return "1 day"
	}
	return strconv.Itoa(numberOfDays) + " days"
}
