package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-planner/backend/internal/auth"
	"example.com/trip-planner/backend/internal/notifications"
	"example.com/trip-planner/backend/internal/planner"
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// heartbeatInterval держит SSE-соединение открытым за прокси с таймаутом простоя.
const heartbeatInterval = 25 * time.Second

// Stream открывает SSE-поток событий для пользователя.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	res := c.Response()
	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	events, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	header := res.Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set(echo.HeaderCacheControl, "no-cache")
	header.Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	hello := notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: time.Now().UTC(),
		Data:      map[string]string{"user_id": userID.String()},
	}
	if err := writeSSE(res, hello); err != nil {
		return nil
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	done := c.Request().Context().Done()
	for {
		var err error
		select {
		case <-done:
			return nil
		case <-heartbeat.C:
			_, err = io.WriteString(res, ": ping\n\n")
		case event, open := <-events:
			if !open {
				return nil
			}
			err = writeSSE(res, event)
		}
		if err != nil {
			return nil
		}
		flusher.Flush()
	}
}

func writeSSE(w io.Writer, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}

// ItineraryHooks публикует результаты сохранения правок в поток пользователя.
func ItineraryHooks(hub *notifications.Hub) planner.HooksFactory {
	return func(userID uuid.UUID) planner.Hooks {
		if hub == nil {
			return planner.Hooks{}
		}

		return planner.Hooks{
			Saved: func(tripID uuid.UUID, seq uint64) {
				hub.Publish(context.Background(), userID, notifications.Event{
					Type: notifications.EventItinerarySaved,
					Data: map[string]interface{}{
						"trip_id": tripID.String(),
						"seq":     seq,
					},
				})
			},
			Failed: func(err *planner.PersistenceError) {
				hub.Publish(context.Background(), userID, notifications.Event{
					Type: notifications.EventItineraryPersistFailed,
					Data: map[string]interface{}{
						"trip_id":   err.TripID.String(),
						"seq":       err.Seq,
						"error":     err.Err.Error(),
						"previous":  err.Previous,
						"candidate": err.Candidate,
					},
				})
			},
		}
	}
}
