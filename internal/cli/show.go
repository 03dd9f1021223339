package cli

import (
	"github.com/spf13/cobra"

	"example.com/trip-planner/backend/internal/itinerary"
)

var showCmd = &cobra.Command{
	Use:     "show <trip-id>",
	Short:   "Print the stored itinerary of a trip",
	Args:    cobra.ExactArgs(1),
	GroupID: "itinerary",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, tripID, err := parseUserAndTrip(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := openEnvironment(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		trip, controller, err := env.loadController(ctx, userID, tripID)
		if err != nil {
			return err
		}
		defer controller.Close(ctx)

		days, _ := controller.Snapshot()
		out := cmd.OutOrStdout()

		if jsonOutput {
			trip.Itinerary = days
			return printJSON(out, trip)
		}

		PrintSection(out, trip.Title+" ("+itinerary.DurationLabel(len(days))+")")
		PrintItinerary(out, days)
		if trip.NumberOfDays != len(days) {
			PrintWarning(out, "stored number_of_days differs from the itinerary, run 'tripctl normalize'")
		}
		return nil
	},
}
