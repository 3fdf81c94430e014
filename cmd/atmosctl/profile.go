package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntoDono/utmostatmos-app/internal/client/api"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your account profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.client.Profile(cmd.Context())
			if err != nil {
				return err
			}
			printUser(user)
			return nil
		},
	}

	cmd.AddCommand(profileUpdateCmd(), profileDeleteCmd())
	return cmd
}

func profileUpdateCmd() *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your name; omitted fields are left unchanged",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			var update api.ProfileUpdate
			if cmd.Flags().Changed("first-name") {
				update.FirstName = &firstName
			}
			if cmd.Flags().Changed("last-name") {
				update.LastName = &lastName
			}
			if update.FirstName == nil && update.LastName == nil {
				return fmt.Errorf("nothing to update: pass --first-name and/or --last-name")
			}

			user, err := app.client.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			printUser(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "New first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "New last name")
	return cmd
}

func profileDeleteCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete your account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return fmt.Errorf("account deletion is permanent: re-run with --yes to confirm")
			}

			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.client.DeleteAccount(cmd.Context()); err != nil {
				return err
			}
			if err := app.manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Account deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deletion")
	return cmd
}

func printUser(user api.User) {
	fmt.Printf("ID:    %s\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Name:  %s", user.FirstName)
	if user.LastName != nil {
		fmt.Printf(" %s", *user.LastName)
	}
	fmt.Println()
	fmt.Printf("Role:  %s\n", user.Role)
	fmt.Printf("Score: %d\n", user.LeaderboardScore)
}
