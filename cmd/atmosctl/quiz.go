package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func quizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Play bin-sorting quizzes and submit scores",
	}
	cmd.AddCommand(quizListCmd(), quizSubmitCmd())
	return cmd
}

func quizListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch a batch of bin-sorting questions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.client.Quizzes(cmd.Context(), limit)
			if err != nil {
				return err
			}

			fmt.Printf("%d question(s):\n", list.Count)
			for i, quiz := range list.Quizzes {
				fmt.Printf("%2d. Which bin does %q go in? (%s)\n", i+1, quiz.Item, strings.Join(quiz.Choices, " / "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum questions to fetch (default: server default)")
	return cmd
}

func quizSubmitCmd() *cobra.Command {
	var points int

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Credit points from a completed quiz round",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.client.SubmitQuiz(cmd.Context(), points)
			if err != nil {
				return err
			}
			fmt.Printf("Score updated: %d\n", result.LeaderboardScore)
			return nil
		},
	}

	cmd.Flags().IntVar(&points, "points", 0, "Points earned this round")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}

func leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top scorers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			board, err := app.client.Leaderboard(cmd.Context())
			if err != nil {
				return err
			}

			for i, entry := range board.Leaderboard {
				name := entry.FirstName
				if entry.LastName != nil {
					name += " " + *entry.LastName
				}
				fmt.Printf("%2d. %-24s %d\n", i+1, name, entry.LeaderboardScore)
			}
			return nil
		},
	}
}
