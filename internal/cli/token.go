package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"example.com/trip-planner/backend/internal/auth"
	"example.com/trip-planner/backend/internal/config"
)

var tokenTTL time.Duration

// loadConfig is replaced in tests.
var loadConfig = config.Load

var tokenCmd = &cobra.Command{
	Use:     "token",
	Short:   "Mint a development access token for --user",
	Args:    cobra.NoArgs,
	GroupID: "tooling",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(userFlag)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ttl := cfg.Auth.AccessTokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}

		token, expiresAt, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, ttl).NewAccessToken(userID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]interface{}{"access_token": token, "expires_at": expiresAt})
		}
		fmt.Fprintln(out, token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime, defaults to JWT_ACCESS_TTL")
}
