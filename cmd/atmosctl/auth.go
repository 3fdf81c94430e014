package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntoDono/utmostatmos-app/internal/client/auth"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in through the identity provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.manager.Login(cmd.Context()); err != nil {
				return err
			}
			switch app.manager.State() {
			case auth.StateAuthenticated:
				profile := app.manager.Profile()
				fmt.Printf("Logged in as %s\n", profile.Email)
			default:
				fmt.Println("Login was cancelled.")
			}
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear cached credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func guestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Continue as a guest without logging in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.manager.ContinueAsGuest(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Continuing as guest. Quizzes, contests, and bin locations are available; scores are not recorded.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current auth state and account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			state := app.manager.State()
			fmt.Printf("State: %s\n", state)
			if state != auth.StateAuthenticated {
				return nil
			}

			user, err := app.client.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Email: %s\n", user.Email)
			fmt.Printf("Name:  %s", user.FirstName)
			if user.LastName != nil {
				fmt.Printf(" %s", *user.LastName)
			}
			fmt.Println()
			fmt.Printf("Role:  %s\n", user.Role)
			fmt.Printf("Score: %d\n", user.LeaderboardScore)
			return nil
		},
	}
}
