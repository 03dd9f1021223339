package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"example.com/trip-planner/backend/internal/models"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	dayColor     = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSection prints a section header
func PrintSection(w io.Writer, title string) {
	_, _ = headerColor.Fprintf(w, "▸ %s\n\n", title)
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

// PrintItinerary prints days with their activities in order.
func PrintItinerary(w io.Writer, days []models.Day) {
	if len(days) == 0 {
		_, _ = dimColor.Fprintln(w, "  (no days)")
		return
	}

	for _, day := range days {
		header := fmt.Sprintf("Day %d", day.DayNumber)
		if day.Date != "" {
			header += " · " + day.Date
		}
		if day.Theme != "" {
			header += " · " + day.Theme
		}
		_, _ = dayColor.Fprintln(w, header)

		if len(day.Activities) == 0 {
			_, _ = dimColor.Fprintln(w, "  (no activities)")
		}
		for i, activity := range day.Activities {
			fmt.Fprintf(w, "  %d. %s", i+1, activity.Title)
			if activity.Time != nil && activity.Time.StartTime != "" {
				fmt.Fprintf(w, " [%s]", strings.TrimSuffix(activity.Time.StartTime+"-"+activity.Time.EndTime, "-"))
			}
			if activity.IsCompleted {
				fmt.Fprint(w, " ✓")
			}
			_, _ = dimColor.Fprintf(w, "  %s\n", activity.ID)
		}
	}
}

func printJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
