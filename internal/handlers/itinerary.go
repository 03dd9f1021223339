package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-planner/backend/internal/auth"
	"example.com/trip-planner/backend/internal/itinerary"
	"example.com/trip-planner/backend/internal/models"
	"example.com/trip-planner/backend/internal/planner"
	"example.com/trip-planner/backend/internal/repository"
)

// SessionOpener выдает контроллер маршрута поездки пользователя.
type SessionOpener interface {
	Open(ctx context.Context, userID, tripID uuid.UUID) (*planner.Controller, error)
}

type ItineraryHandler struct {
	Sessions SessionOpener
	Logger   *slog.Logger
}

// NewItineraryHandler создает обработчик правок маршрута.
func NewItineraryHandler(sessions SessionOpener, logger *slog.Logger) *ItineraryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItineraryHandler{Sessions: sessions, Logger: logger}
}

type MoveActivityRequest struct {
	SourceDay   int    `json:"source_day" validate:"required,min=1"`
	SourceIndex int    `json:"source_index" validate:"min=0"`
	ActivityID  string `json:"activity_id"`
	// TargetDay равен nil, если активность отпущена вне дня.
	TargetDay *int `json:"target_day" validate:"omitempty,min=1"`
	Position  *int `json:"position" validate:"omitempty,min=0"`
}

type AddDayRequest struct {
	Theme      string            `json:"theme" validate:"max=200"`
	Activities []models.Activity `json:"activities"`
	Position   *int              `json:"position" validate:"omitempty,min=0"`
}

type MoveDayRequest struct {
	ToDay int `json:"to_day" validate:"required,min=1"`
}

type AddActivityRequest struct {
	Activity models.Activity `json:"activity"`
	Position *int            `json:"position" validate:"omitempty,min=0"`
}

type UpdateActivityRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Time        *models.TimeSlot `json:"time"`
	Duration    *string          `json:"duration"`
	TimeTravel  *string          `json:"time_travel"`
	Cost        *models.Cost     `json:"cost"`
	Rating      *float64         `json:"rating" validate:"omitempty,min=0,max=5"`
	IsCompleted *bool            `json:"is_completed"`
}

type RestoreRequest struct {
	Itinerary []models.Day `json:"itinerary" validate:"required"`
}

type ItineraryResponse struct {
	TripID       uuid.UUID        `json:"trip_id"`
	Seq          uint64           `json:"seq"`
	NumberOfDays int              `json:"number_of_days"`
	Duration     string           `json:"duration"`
	Itinerary    []models.Day     `json:"itinerary"`
	Activity     *models.Activity `json:"activity,omitempty"`
	Ignored      bool             `json:"ignored,omitempty"`
	Persisted    *bool            `json:"persisted,omitempty"`
}

type PersistFailedResponse struct {
	Error     string       `json:"error"`
	TripID    uuid.UUID    `json:"trip_id"`
	Seq       uint64       `json:"seq"`
	Previous  []models.Day `json:"previous"`
	Candidate []models.Day `json:"candidate"`
}

// State возвращает текущий маршрут сессии.
func (h *ItineraryHandler) State(c echo.Context) error {
	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	days, seq := controller.Snapshot()
	return c.JSON(http.StatusOK, newItineraryResponse(controller.TripID(), seq, days))
}

// MoveActivity применяет жест перетаскивания активности.
func (h *ItineraryHandler) MoveActivity(c echo.Context) error {
	var req MoveActivityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	src := itinerary.Source{DayIndex: req.SourceDay - 1, ActivityIndex: req.SourceIndex, ActivityID: req.ActivityID}
	dst := itinerary.Target{DayIndex: itinerary.NoContainer, Position: itinerary.End}
	if req.TargetDay != nil {
		dst.DayIndex = *req.TargetDay - 1
	}
	if req.Position != nil {
		dst.Position = *req.Position
	}

	edit, err := controller.MoveActivity(c.Request().Context(), src, dst)
	return h.respond(c, controller, edit, nil, err)
}

// AddDay добавляет день в маршрут.
func (h *ItineraryHandler) AddDay(c echo.Context) error {
	var req AddDayRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	position := itinerary.End
	if req.Position != nil {
		position = *req.Position
	}

	edit, err := controller.AddDay(c.Request().Context(), models.Day{Theme: req.Theme, Activities: req.Activities}, position)
	return h.respond(c, controller, edit, nil, err)
}

// RemoveDay удаляет день по номеру.
func (h *ItineraryHandler) RemoveDay(c echo.Context) error {
	dayIndex, ok := parseDayParam(c, "day")
	if !ok {
		return badRequest(c, "invalid day number")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	edit, err := controller.RemoveDay(c.Request().Context(), dayIndex)
	return h.respond(c, controller, edit, nil, err)
}

// MoveDay переставляет день на новую позицию.
func (h *ItineraryHandler) MoveDay(c echo.Context) error {
	dayIndex, ok := parseDayParam(c, "day")
	if !ok {
		return badRequest(c, "invalid day number")
	}

	var req MoveDayRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	edit, err := controller.MoveDay(c.Request().Context(), dayIndex, req.ToDay-1)
	return h.respond(c, controller, edit, nil, err)
}

// AddActivity добавляет активность в день.
func (h *ItineraryHandler) AddActivity(c echo.Context) error {
	dayIndex, ok := parseDayParam(c, "day")
	if !ok {
		return badRequest(c, "invalid day number")
	}

	var req AddActivityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	position := itinerary.End
	if req.Position != nil {
		position = *req.Position
	}

	edit, added, err := controller.AddActivity(c.Request().Context(), dayIndex, req.Activity, position)
	return h.respond(c, controller, edit, &added, err)
}

// UpdateActivity меняет поля активности.
func (h *ItineraryHandler) UpdateActivity(c echo.Context) error {
	dayIndex, ok := parseDayParam(c, "day")
	if !ok {
		return badRequest(c, "invalid day number")
	}

	var req UpdateActivityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	edit, updated, err := controller.UpdateActivity(c.Request().Context(), dayIndex, c.Param("activityId"), itinerary.ActivityUpdate{
		Title:       req.Title,
		Description: req.Description,
		Time:        req.Time,
		Duration:    req.Duration,
		TimeTravel:  req.TimeTravel,
		Cost:        req.Cost,
		Rating:      req.Rating,
		IsCompleted: req.IsCompleted,
	})
	return h.respond(c, controller, edit, &updated, err)
}

// RemoveActivity удаляет активность из дня.
func (h *ItineraryHandler) RemoveActivity(c echo.Context) error {
	dayIndex, ok := parseDayParam(c, "day")
	if !ok {
		return badRequest(c, "invalid day number")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	edit, err := controller.RemoveActivity(c.Request().Context(), dayIndex, c.Param("activityId"))
	return h.respond(c, controller, edit, nil, err)
}

// Restore заменяет маршрут присланным снимком.
func (h *ItineraryHandler) Restore(c echo.Context) error {
	var req RestoreRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	edit, err := controller.Restore(c.Request().Context(), req.Itinerary)
	return h.respond(c, controller, edit, nil, err)
}

// Retry повторно сохраняет текущий маршрут.
func (h *ItineraryHandler) Retry(c echo.Context) error {
	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	edit, err := controller.Retry(c.Request().Context())
	return h.respond(c, controller, edit, nil, err)
}

func (h *ItineraryHandler) open(c echo.Context) (*planner.Controller, error) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return nil, errUnauthorized
	}

	tripID, err := parseTripID(c)
	if err != nil {
		return nil, errInvalidTripID
	}

	return h.Sessions.Open(c.Request().Context(), userID, tripID)
}

var (
	errUnauthorized  = errors.New("unauthorized")
	errInvalidTripID = errors.New("invalid trip id")
)

func (h *ItineraryHandler) openError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errUnauthorized):
		return unauthorized(c)
	case errors.Is(err, errInvalidTripID):
		return badRequest(c, "invalid trip id")
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "trip not found")
	default:
		h.Logger.Error("open itinerary session failed", slog.String("error", err.Error()))
		return serverError(c)
	}
}

// respond отдает оптимистичное состояние. С ?wait=true ответ ждет сохранения
// и при сбое возвращает 502 с обоими снимками.
func (h *ItineraryHandler) respond(c echo.Context, controller *planner.Controller, edit *planner.Edit, activity *models.Activity, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, itinerary.ErrNoTarget):
			days, seq := controller.Snapshot()
			response := newItineraryResponse(controller.TripID(), seq, days)
			response.Ignored = true
			return c.JSON(http.StatusOK, response)
		case errors.Is(err, itinerary.ErrValidation):
			return badRequest(c, err.Error())
		case errors.Is(err, planner.ErrClosed):
			return unavailable(c, "editing session closed, retry the request")
		default:
			h.Logger.Error("itinerary edit failed", slog.String("error", err.Error()))
			return serverError(c)
		}
	}

	response := newItineraryResponse(controller.TripID(), edit.Seq, edit.Itinerary)
	response.Activity = activity

	if c.QueryParam("wait") != "true" {
		return c.JSON(http.StatusOK, response)
	}

	waitErr := edit.Wait(c.Request().Context())
	var perr *planner.PersistenceError
	switch {
	case waitErr == nil:
		persisted := true
		response.Persisted = &persisted
		return c.JSON(http.StatusOK, response)
	case errors.As(waitErr, &perr):
		return c.JSON(http.StatusBadGateway, PersistFailedResponse{
			Error:     perr.Err.Error(),
			TripID:    perr.TripID,
			Seq:       perr.Seq,
			Previous:  perr.Previous,
			Candidate: perr.Candidate,
		})
	default:
		return serverError(c)
	}
}

func newItineraryResponse(tripID uuid.UUID, seq uint64, days []models.Day) ItineraryResponse {
	return ItineraryResponse{
		TripID:       tripID,
		Seq:          seq,
		NumberOfDays: len(days),
		Duration:     itinerary.DurationLabel(len(days)),
		Itinerary:    days,
	}
}
