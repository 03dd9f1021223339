package cli

import (
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <trip-id>",
	Short: "Rewrite a stored itinerary with consistent numbering, dates and ids",
	Long: `Load a trip, repair its itinerary and write it back.

Activities without an id or with a duplicated id get a new one, days are
renumbered from 1, dates are derived from the trip start date and
number_of_days and duration are updated.`,
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

		_, controller, err := env.loadController(ctx, userID, tripID)
		if err != nil {
			return err
		}

		edit, err := controller.Retry(ctx)
		if err != nil {
			_ = controller.Close(ctx)
			return err
		}

		if err := commit(ctx, controller, edit); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, edit.Itinerary)
		}
		PrintSuccess(out, "itinerary normalized")
		return nil
	},
}
