package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newHighscoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highscores",
		Short: "Arcade leaderboard commands",
	}

	cmd.AddCommand(newHighscoresTopCmd())
	cmd.AddCommand(newHighscoresSubmitCmd())

	return cmd
}

func newHighscoresTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top <juego>",
		Short: "Show the best scores of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/highscores/" + url.PathEscape(args[0])
			if limit > 0 {
				path += fmt.Sprintf("?limit=%d", limit)
			}
			var result []Highscore
			if err := client.Get(path, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of entries (server default when 0)")
	return cmd
}

func newHighscoresSubmitCmd() *cobra.Command {
	var (
		userID string
		score  int
	)

	cmd := &cobra.Command{
		Use:   "submit <juego>",
		Short: "Submit a score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"juego": args[0], "usuarioId": userID, "puntuacion": score}
			var result Submission
			if err := client.Post("/highscores", req, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (required)")
	cmd.Flags().IntVar(&score, "score", 0, "Score (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}
