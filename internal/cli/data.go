package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/wire"
)

// DataCmd returns the data command
func DataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Export or import the whole collection as JSON",
	}

	cmd.AddCommand(dataExportCmd())
	cmd.AddCommand(dataImportCmd())
	return cmd
}

func dataExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection (without credentials) as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := wire.DataService().Snapshot(commandContext(cmd))
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(col, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal collection: %w", err)
			}
			if output == "" || output == "-" {
				_, err = os.Stdout.Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Printf("✓ Exported %d cards to %s\n", len(col.Cards), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func dataImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Merge a JSON collection into the store",
		Long: `Merge a JSON collection into the store. Cards already stored keep their
creation time, initial snapshot and log history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			incoming := &models.Collection{}
			if err := json.Unmarshal(data, incoming); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			col, err := wire.DataService().Replace(commandContext(cmd), incoming)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Imported; the store now holds %d cards\n", len(col.Cards))
			return nil
		},
	}
}
