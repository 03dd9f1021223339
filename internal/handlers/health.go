package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// SessionCounter сообщает число открытых сессий редактирования.
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	Sessions SessionCounter
}

// NewHealthHandler создает обработчик проверки состояния.
func NewHealthHandler(sessions SessionCounter) *HealthHandler {
	return &HealthHandler{Sessions: sessions}
}

// Health возвращает статус сервиса и число открытых сессий.
func (h *HealthHandler) Health(c echo.Context) error {
	response := HealthResponse{Status: "ok"}
	if h.Sessions != nil {
		response.Sessions = h.Sessions.Len()
	}
	return c.JSON(http.StatusOK, response)
}
