package server

import (
	"github.com/labstack/echo/v4"

	"example.com/trip-planner/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	tripHandler *handlers.TripHandler,
	itineraryHandler *handlers.ItineraryHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	editRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", healthHandler.Health)

	api := e.Group("/api/v1")

	trips := api.Group("/trips", authMiddleware)
	trips.POST("", tripHandler.Create)
	trips.GET("/:tripId", tripHandler.Get)
	trips.GET("/:tripId/itinerary", itineraryHandler.State)
	trips.GET("/:tripId/export/json", itineraryHandler.ExportJSON)
	trips.GET("/:tripId/export/csv", itineraryHandler.ExportCSV)

	trips.POST("/:tripId/itinerary/move", itineraryHandler.MoveActivity, editRateLimiter)
	trips.POST("/:tripId/itinerary/restore", itineraryHandler.Restore, editRateLimiter)
	trips.POST("/:tripId/itinerary/retry", itineraryHandler.Retry, editRateLimiter)
	trips.POST("/:tripId/days", itineraryHandler.AddDay, editRateLimiter)
	trips.DELETE("/:tripId/days/:day", itineraryHandler.RemoveDay, editRateLimiter)
	trips.PATCH("/:tripId/days/:day/position", itineraryHandler.MoveDay, editRateLimiter)
	trips.POST("/:tripId/days/:day/activities", itineraryHandler.AddActivity, editRateLimiter)
	trips.PATCH("/:tripId/days/:day/activities/:activityId", itineraryHandler.UpdateActivity, editRateLimiter)
	trips.DELETE("/:tripId/days/:day/activities/:activityId", itineraryHandler.RemoveActivity, editRateLimiter)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}
