package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/trip-planner/backend/internal/auth"
	"example.com/trip-planner/backend/internal/itinerary"
	"example.com/trip-planner/backend/internal/models"
	"example.com/trip-planner/backend/internal/repository"
)

type TripHandler struct {
	Trips repository.TripStore
}

// NewTripHandler создает обработчик поездок.
func NewTripHandler(trips repository.TripStore) *TripHandler {
	return &TripHandler{Trips: trips}
}

type TripRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Destination string         `json:"destination" validate:"max=200"`
	StartDate   string         `json:"start_date"`
	Itinerary   []models.Day   `json:"itinerary" validate:"max=60"`
	Hotels      []models.Hotel `json:"hotels"`
}

// Create создает поездку с нормализованным маршрутом.
func (h *TripHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req TripRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "title is required")
	}

	var startDate time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse(models.DateLayout, req.StartDate)
		if err != nil {
			return badRequest(c, "start_date must be YYYY-MM-DD")
		}
		startDate = parsed
	}

	days := itinerary.Normalize(req.Itinerary)
	if err := itinerary.Validate(days); err != nil {
		return badRequest(c, err.Error())
	}
	days = itinerary.DeriveDates(days, startDate)

	hotels := req.Hotels
	if hotels == nil {
		hotels = []models.Hotel{}
	}

	trip, err := h.Trips.Create(c.Request().Context(), models.Trip{
		UserID:       userID,
		Title:        title,
		Destination:  strings.TrimSpace(req.Destination),
		StartDate:    startDate,
		NumberOfDays: len(days),
		Duration:     itinerary.DurationLabel(len(days)),
		Itinerary:    days,
		Hotels:       hotels,
	})
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, trip)
}

// Get возвращает сохраненную версию поездки.
func (h *TripHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	tripID, err := parseTripID(c)
	if err != nil {
		return badRequest(c, "invalid trip id")
	}

	trip, err := h.Trips.Get(c.Request().Context(), userID, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "trip not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, trip)
}
