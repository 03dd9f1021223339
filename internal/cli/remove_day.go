package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var removeDayCmd = &cobra.Command{
	Use:     "remove-day <trip-id> <day-number>",
	Short:   "Remove a day and renumber the rest",
	Args:    cobra.ExactArgs(2),
	GroupID: "itinerary",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, tripID, err := parseUserAndTrip(args[0])
		if err != nil {
			return err
		}

		dayNumber, err := strconv.Atoi(args[1])
		if err != nil || dayNumber < 1 {
			return fmt.Errorf("invalid day number %q", args[1])
		}

		ctx := cmd.Context()
		env, err := openEnvironment(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		_, controller, err := env.loadController(ctx, userID, tripID)
		if err != nil {
			return err
		}

		edit, err := controller.RemoveDay(ctx, dayNumber-1)
		if err != nil {
			_ = controller.Close(ctx)
			return fmt.Errorf("cannot remove day %d: %w", dayNumber, err)
		}

		if err := commit(ctx, controller, edit); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, edit.Itinerary)
		}
		PrintItinerary(out, edit.Itinerary)
		PrintSuccess(out, fmt.Sprintf("day %d removed", dayNumber))
		return nil
	},
}
