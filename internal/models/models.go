package models

import (
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// TimeSlot задает точное время активности в формате HH:MM.
type TimeSlot struct {
	StartTime string `json:"start_time" bson:"start_time"`
	EndTime   string `json:"end_time" bson:"end_time"`
}

type Cost struct {
	Amount   float64 `json:"amount" bson:"amount"`
	Currency string  `json:"currency" bson:"currency"`
	Category string  `json:"category,omitempty" bson:"category,omitempty"`
}

// Activity описывает один пункт плана дня.
type Activity struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Time        *TimeSlot `json:"time,omitempty" bson:"time,omitempty"`
	Duration    string    `json:"duration,omitempty" bson:"duration,omitempty"`
	TimeTravel  string    `json:"time_travel,omitempty" bson:"time_travel,omitempty"`
	Cost        *Cost     `json:"cost,omitempty" bson:"cost,omitempty"`
	Rating      *float64  `json:"rating,omitempty" bson:"rating,omitempty"`
	IsCompleted bool      `json:"is_completed" bson:"is_completed"`
}

// Day описывает один календарный день поездки.
type Day struct {
	DayNumber  int        `json:"day_number" bson:"day_number"`
	Date       string     `json:"date,omitempty" bson:"date,omitempty"`
	Theme      string     `json:"theme,omitempty" bson:"theme,omitempty"`
	Activities []Activity `json:"activities" bson:"activities"`
}

type Hotel struct {
	Name     string `json:"name" bson:"name"`
	Address  string `json:"address,omitempty" bson:"address,omitempty"`
	CheckIn  string `json:"check_in,omitempty" bson:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty" bson:"check_out,omitempty"`
}

type Trip struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	Destination  string    `json:"destination"`
	StartDate    time.Time `json:"start_date"`
	NumberOfDays int       `json:"number_of_days"`
	Duration     string    `json:"duration"`
	Itinerary    []Day     `json:"itinerary"`
	Hotels       []Hotel   `json:"hotels"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TripPatch задает частичное обновление поездки. nil означает, что поле не меняется.
type TripPatch struct {
	Itinerary    *[]Day  `json:"itinerary,omitempty"`
	NumberOfDays *int    `json:"number_of_days,omitempty"`
	Duration     *string `json:"duration,omitempty"`
}

// IsEmpty сообщает, что патч не содержит ни одного поля.
func (p TripPatch) IsEmpty() bool {
	return p.Itinerary == nil && p.NumberOfDays == nil && p.Duration == nil
}
