package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	userFlag   string
	verbose    bool
)

// rootCmd is the root command for tripctl.
var rootCmd = &cobra.Command{
	Use:     "tripctl",
	Version: "dev",
	Short:   "Inspect and edit trip itineraries from the terminal",
	Long: `tripctl reads and edits stored trip itineraries.

Edits go through the same plan controller as the HTTP API: days are renumbered,
dates are re-derived and the result is written back to the configured store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "Owner user id of the trip")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log persistence details to stderr")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "itinerary",
		Title: "Itinerary:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "tooling",
		Title: "Tooling:",
	})

	rootCmd.AddCommand(showCmd, moveCmd, removeDayCmd, normalizeCmd, tokenCmd)
}

func parseUserAndTrip(tripArg string) (uuid.UUID, uuid.UUID, error) {
	if userFlag == "" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("--user is required")
	}

	userID, err := uuid.Parse(userFlag)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --user: %w", err)
	}

	tripID, err := uuid.Parse(tripArg)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid trip id: %w", err)
	}

	return userID, tripID, nil
}
