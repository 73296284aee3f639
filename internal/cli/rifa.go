package cli

import (
	"github.com/spf13/cobra"
)

func newRifaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rifa",
		Short: "Raffle commands",
	}

	cmd.AddCommand(newRifaListCmd())
	cmd.AddCommand(newRifaUltimaCmd())
	cmd.AddCommand(newRifaGirarCmd())

	return cmd
}

func newRifaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved raffles",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Rifa
			if err := client.Get("/dojo-rifa", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newRifaUltimaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ultima",
		Short: "Show the most recent raffle",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Rifa
			if err := client.Get("/dojo-rifa/ultima", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newRifaGirarCmd() *cobra.Command {
	var (
		items   []string
		players []string
		save    bool
		name    string
	)

	cmd := &cobra.Command{
		Use:   "girar",
		Short: "Draw a player for every item",
		RunE: func(cmd *cobra.Command, args []string) error {
			var spin SpinResult
			if err := client.Post("/dojo-rifa/girar", map[string]any{"items": items, "jugadores": players}, &spin); err != nil {
				return err
			}
			if !save {
				outputFor(cmd).Print(spin)
				return nil
			}

			var saved Rifa
			req := map[string]any{"nombre": name, "asignaciones": spin.Asignaciones}
			if err := client.Post("/dojo-rifa", req, &saved); err != nil {
				return err
			}
			outputFor(cmd).Print(saved)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&items, "item", nil, "Item to raffle (repeat)")
	cmd.Flags().StringSliceVar(&players, "jugador", nil, "Player name (repeat)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the result to the raffle log")
	cmd.Flags().StringVar(&name, "nombre", "", "Name for the saved raffle")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("jugador")

	return cmd
}
