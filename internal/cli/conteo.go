package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newConteoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conteo",
		Short: "Weekly count commands",
	}

	cmd.AddCommand(newConteoListCmd())
	cmd.AddCommand(newConteoRegistrarCmd())

	return cmd
}

func newConteoListCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List weekly registrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/conteo-semanal"
			if week != "" {
				path += "?semana=" + url.QueryEscape(week)
			}
			var result []Registration
			if err := client.Get(path, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "semana", "", "ISO week, e.g. 2025-W06")
	return cmd
}

func newConteoRegistrarCmd() *cobra.Command {
	var (
		userID string
		week   string
		p      Points
	)

	cmd := &cobra.Command{
		Use:   "registrar",
		Short: "Register one user's deltas for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := struct {
				UsuarioID string `json:"usuarioId"`
				Semana    string `json:"semana,omitempty"`
				Points
			}{userID, week, p}

			var result Registration
			if err := client.Post("/conteo-semanal", req, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (required)")
	cmd.Flags().StringVar(&week, "semana", "", "ISO week (default: current week)")
	pointFlags(cmd, &p)
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
