package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBancoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "banco",
		Aliases: []string{"bank"},
		Short:   "Bank and debt commands",
	}

	cmd.AddCommand(newBancoEstadoCmd())
	cmd.AddCommand(newBancoPagoCmd())
	cmd.AddCommand(newBancoHistorialCmd())
	cmd.AddCommand(newBancoDeudasCmd())

	return cmd
}

func newBancoEstadoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estado",
		Short: "Show the bank total",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Bank
			if err := client.Get("/banco", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newBancoPagoCmd() *cobra.Command {
	var (
		userID      string
		amount      float64
		description string
	)

	cmd := &cobra.Command{
		Use:   "pago",
		Short: "Record a debt payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"usuarioId": userID, "monto": amount, "descripcion": description}
			var result Receipt
			if err := client.Post("/banco/pago", req, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (required)")
	cmd.Flags().Float64Var(&amount, "monto", 0, "Amount paid (required)")
	cmd.Flags().StringVar(&description, "descripcion", "", "Description")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("monto")

	return cmd
}

func newBancoHistorialCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "historial",
		Short: "List recent payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/banco/historial"
			if limit > 0 {
				path += fmt.Sprintf("?limit=%d", limit)
			}
			var result []Transaction
			if err := client.Get(path, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (server default when 0)")
	return cmd
}

func newBancoDeudasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deudas",
		Short: "List every user's debt",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Debt
			if err := client.Get("/banco/usuarios", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}
