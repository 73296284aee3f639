package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newApuestasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apuestas",
		Aliases: []string{"wagers"},
		Short:   "Wager commands",
	}

	cmd.AddCommand(newApuestasListCmd())
	cmd.AddCommand(newApuestasHistorialCmd())
	cmd.AddCommand(newApuestasCrearCmd())
	cmd.AddCommand(newApuestasResolverCmd())
	cmd.AddCommand(newApuestasCancelarCmd())

	return cmd
}

func wagerPath(id string) string {
	return "/apuestas/" + url.PathEscape(id)
}

func newApuestasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending wagers",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Wager
			if err := client.Get("/apuestas", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newApuestasHistorialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "historial",
		Short: "List resolved and cancelled wagers",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Wager
			if err := client.Get("/apuestas/historial", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newApuestasCrearCmd() *cobra.Command {
	var (
		participants []string
		category     string
		stake        float64
		description  string
	)

	cmd := &cobra.Command{
		Use:   "crear",
		Short: "Create a wager",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"participantes": participants,
				"tipoPunto":     category,
				"cantidad":      stake,
				"descripcion":   description,
			}
			var result Wager
			if err := client.Post("/apuestas", req, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&participants, "participante", nil, "Participant user id (repeat, at least two)")
	cmd.Flags().StringVar(&category, "tipo", "dojos", "Point category at stake")
	cmd.Flags().Float64Var(&stake, "cantidad", 0, "Stake per loser (required)")
	cmd.Flags().StringVar(&description, "descripcion", "", "Description")
	_ = cmd.MarkFlagRequired("participante")
	_ = cmd.MarkFlagRequired("cantidad")

	return cmd
}

func newApuestasResolverCmd() *cobra.Command {
	var winner string

	cmd := &cobra.Command{
		Use:   "resolver <id>",
		Short: "Resolve a wager with its winner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Resolution
			if err := client.Post(wagerPath(args[0])+"/resolver", map[string]string{"ganador": winner}, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&winner, "ganador", "", "Winner user id (required)")
	_ = cmd.MarkFlagRequired("ganador")

	return cmd
}

func newApuestasCancelarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancelar <id>",
		Short: "Cancel a pending wager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Wager
			if err := client.Delete(wagerPath(args[0]), &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}
