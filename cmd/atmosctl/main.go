package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atmosctl",
		Short: "Command-line client for the UtmostAtmos service",
		Long: `atmosctl talks to the UtmostAtmos environmental-education service.

Log in through the identity provider (or continue as a guest), play
bin-sorting quizzes, browse contests and recycling-bin locations, and
check the leaderboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("server", envOr("ATMOS_SERVER_URL", "http://localhost:8080"), "Service base URL")
	rootCmd.PersistentFlags().String("client-id", os.Getenv("ATMOS_OAUTH_CLIENT_ID"), "OAuth client ID")
	rootCmd.PersistentFlags().String("auth-url", os.Getenv("ATMOS_OAUTH_AUTH_URL"), "OAuth authorization endpoint")
	rootCmd.PersistentFlags().String("token-url", os.Getenv("ATMOS_OAUTH_TOKEN_URL"), "OAuth token endpoint")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		guestCmd(),
		whoamiCmd(),
		profileCmd(),
		quizCmd(),
		leaderboardCmd(),
		trackersCmd(),
		contestsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
