package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with the admin key and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LoginResult
			if err := client.Post("/auth/login", map[string]string{"clave": key}, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			client.SetToken(result.Token)

			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Admin key (required)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
