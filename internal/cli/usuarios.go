package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newUsuariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "usuarios",
		Aliases: []string{"users"},
		Short:   "User management commands",
	}

	cmd.AddCommand(newUsuariosListCmd())
	cmd.AddCommand(newUsuariosGetCmd())
	cmd.AddCommand(newUsuariosCreateCmd())
	cmd.AddCommand(newUsuariosPuntosCmd())
	cmd.AddCommand(newUsuariosDeleteCmd())

	return cmd
}

func userPath(id string) string {
	return "/usuarios/" + url.PathEscape(id)
}

func newUsuariosListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []User
			if err := client.Get("/usuarios", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newUsuariosGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User
			if err := client.Get(userPath(args[0]), &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newUsuariosCreateCmd() *cobra.Command {
	var name, avatar string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"nombre": name, "avatar": avatar}
			var result User
			if err := client.Post("/usuarios", req, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUsuariosPuntosCmd() *cobra.Command {
	var p Points

	cmd := &cobra.Command{
		Use:   "puntos <id>",
		Short: "Add a point delta to a user",
		Long:  "Add a point delta to a user. Only the categories passed as flags are touched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := changedPoints(cmd, p)
			if len(delta) == 0 {
				return fmt.Errorf("pass at least one of --dojos, --pendejos, --mimidos, --castitontos, --chescos")
			}
			var result User
			if err := client.Put(userPath(args[0])+"/puntos", delta, &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}

	pointFlags(cmd, &p)
	return cmd
}

func newUsuariosDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(userPath(args[0]), nil); err != nil {
				return err
			}
			outputFor(cmd).PrintMessage("Usuario eliminado")
			return nil
		},
	}
}

// pointFlags registers one float flag per category
func pointFlags(cmd *cobra.Command, p *Points) {
	cmd.Flags().Float64Var(&p.Dojos, "dojos", 0, "Dojos")
	cmd.Flags().Float64Var(&p.Pendejos, "pendejos", 0, "Pendejos")
	cmd.Flags().Float64Var(&p.Mimidos, "mimidos", 0, "Mimidos")
	cmd.Flags().Float64Var(&p.Castitontos, "castitontos", 0, "Castitontos")
	cmd.Flags().Float64Var(&p.Chescos, "chescos", 0, "Chescos")
}

// changedPoints returns only the categories set on the command line
func changedPoints(cmd *cobra.Command, p Points) map[string]float64 {
	values := map[string]float64{
		"dojos":       p.Dojos,
		"pendejos":    p.Pendejos,
		"mimidos":     p.Mimidos,
		"castitontos": p.Castitontos,
		"chescos":     p.Chescos,
	}
	out := make(map[string]float64)
	for name, v := range values {
		if cmd.Flags().Changed(name) {
			out[name] = v
		}
	}
	return out
}
