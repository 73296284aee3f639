package cli

import (
	"fmt"
	"mime"
	"os"

	"github.com/spf13/cobra"
)

func newTablaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabla",
		Short: "Global table commands",
	}

	cmd.AddCommand(newTablaVerCmd())
	cmd.AddCommand(newTablaExportarCmd())

	return cmd
}

func newTablaVerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ver",
		Short: "Show the global table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Table
			if err := client.Get("/tabla-global", &result); err != nil {
				return err
			}
			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newTablaExportarCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Download the global table as an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, header, err := client.Download("/tabla-global/exportar")
			if err != nil {
				return err
			}

			if file == "" {
				file = "tabla-global.xlsx"
				if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
					file = params["filename"]
				}
			}
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", file, err)
			}

			outputFor(cmd).PrintMessage(fmt.Sprintf("Tabla exportada a %s", file))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Output path (default: name sent by the server)")
	return cmd
}
