package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-planner/backend/internal/models"
)

// ExportJSON выгружает текущий маршрут в JSON-файл.
func (h *ItineraryHandler) ExportJSON(c echo.Context) error {
	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	days, seq := controller.Snapshot()
	response := newItineraryResponse(controller.TripID(), seq, days)

	filename := "itinerary-" + controller.TripID().String() + ".json"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, response)
}

// ExportCSV выгружает активности маршрута в CSV-файл, по строке на активность.
func (h *ItineraryHandler) ExportCSV(c echo.Context) error {
	controller, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}

	days, _ := controller.Snapshot()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeActivitiesCSV(writer, controller.TripID(), days); err != nil {
		return serverError(c)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "itinerary-" + controller.TripID().String() + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeActivitiesCSV(writer *csv.Writer, tripID uuid.UUID, days []models.Day) error {
	header := []string{
		"trip_id",
		"day_number",
		"date",
		"theme",
		"position",
		"activity_id",
		"title",
		"start_time",
		"end_time",
		"duration",
		"cost_amount",
		"cost_currency",
		"is_completed",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, day := range days {
		for i, activity := range day.Activities {
			var startTime, endTime, amount, currency string
			if activity.Time != nil {
				startTime = activity.Time.StartTime
				endTime = activity.Time.EndTime
			}
			if activity.Cost != nil {
				amount = strconv.FormatFloat(activity.Cost.Amount, 'f', 2, 64)
				currency = activity.Cost.Currency
			}

			record := []string{
				tripID.String(),
				formatInt(day.DayNumber),
				day.Date,
				day.Theme,
				formatInt(i + 1),
				activity.ID,
				activity.Title,
				startTime,
				endTime,
				activity.Duration,
				amount,
				currency,
				formatBool(activity.IsCompleted),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}
