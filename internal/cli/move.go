package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"example.com/trip-planner/backend/internal/itinerary"
)

var (
	moveFromDay  int
	moveIndex    int
	moveActivity string
	moveToDay    int
	movePosition int
)

var moveCmd = &cobra.Command{
	Use:   "move <trip-id>",
	Short: "Move an activity within a day or to another day",
	Long: `Move an activity the same way a drag-and-drop gesture does.

Days are numbered from 1, positions from 0. Without --position the activity
is appended to the end of the target day.`,
	Args:    cobra.ExactArgs(1),
	GroupID: "itinerary",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, tripID, err := parseUserAndTrip(args[0])
		if err != nil {
			return err
		}
		if moveFromDay < 1 || moveToDay < 1 {
			return fmt.Errorf("--from-day and --to-day must be at least 1")
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

		position := itinerary.End
		if cmd.Flags().Changed("position") {
			position = movePosition
		}

		edit, err := controller.MoveActivity(ctx,
			itinerary.Source{DayIndex: moveFromDay - 1, ActivityIndex: moveIndex, ActivityID: moveActivity},
			itinerary.Target{DayIndex: moveToDay - 1, Position: position},
		)
		if err != nil {
			_ = controller.Close(ctx)
			if errors.Is(err, itinerary.ErrValidation) {
				return fmt.Errorf("cannot move: %w", err)
			}
			return err
		}

		if err := commit(ctx, controller, edit); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, edit.Itinerary)
		}
		PrintItinerary(out, edit.Itinerary)
		PrintSuccess(out, "itinerary saved")
		return nil
	},
}

func init() {
	moveCmd.Flags().IntVar(&moveFromDay, "from-day", 0, "Day number the activity is taken from")
	moveCmd.Flags().IntVar(&moveIndex, "index", 0, "Position of the activity in the source day")
	moveCmd.Flags().StringVar(&moveActivity, "activity", "", "Activity id, takes precedence over --index")
	moveCmd.Flags().IntVar(&moveToDay, "to-day", 0, "Day number the activity is dropped on")
	moveCmd.Flags().IntVar(&movePosition, "position", 0, "Position in the target day")
}
