package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func trackersCmd() *cobra.Command {
	var binType string

	cmd := &cobra.Command{
		Use:   "trackers",
		Short: "List mapped recycling-bin locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			trackers, err := app.client.Trackers(cmd.Context(), binType)
			if err != nil {
				return err
			}

			for _, tracker := range trackers {
				fmt.Printf("%-12s %-30s (%.5f, %.5f)\n", tracker.Type, tracker.Name, tracker.Latitude, tracker.Longitude)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&binType, "type", "", "Filter by bin type (e.g. recycling, compost)")
	return cmd
}

func contestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contests",
		Short: "List environmental contests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			contests, err := app.client.Contests(cmd.Context())
			if err != nil {
				return err
			}

			for _, contest := range contests {
				fmt.Printf("%s — %s (deadline %s)\n", contest.Title, contest.Organization, contest.Deadline)
				if contest.Prize != "" {
					fmt.Printf("    prize: %s\n", contest.Prize)
				}
			}
			return nil
		},
	}
}
