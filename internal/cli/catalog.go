package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/wire"
)

// CatalogCmd returns the catalog command
func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog operations and work centers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ops",
		Short: "List catalog operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.CatalogAdapter().ListOperations(commandContext(cmd))
			return err
		},
	})
	cmd.AddCommand(catalogAddOpCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "rm-op [op]",
		Short: "Delete a catalog operation (route steps keep their copy)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.CatalogAdapter().DeleteOperation(commandContext(cmd), args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "centers",
		Short: "List work centers",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.CatalogAdapter().ListCenters(commandContext(cmd))
			return err
		},
	})
	cmd.AddCommand(catalogAddCenterCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "rm-center [center]",
		Short: "Delete a work center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.CatalogAdapter().DeleteCenter(commandContext(cmd), args[0])
		},
	})

	return cmd
}

func catalogAddOpCmd() *cobra.Command {
	var req primary.AddOperationRequest

	cmd := &cobra.Command{
		Use:   "add-op [name]",
		Short: "Add a catalog operation",
		Long: `Add a catalog operation. A code is generated when --code is omitted.

Examples:
  routecard catalog add-op Grinding --rec 25
  routecard catalog add-op "Heat treatment" --code HT-01 --rec 120`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			_, err := wire.CatalogAdapter().AddOperation(commandContext(cmd), req)
			return err
		},
	}

	cmd.Flags().StringVar(&req.Code, "code", "", "Operation code (must be unique)")
	cmd.Flags().StringVar(&req.Desc, "desc", "", "Description")
	cmd.Flags().IntVar(&req.RecTime, "rec", 0, "Recommended minutes (default 30)")
	return cmd
}

func catalogAddCenterCmd() *cobra.Command {
	var desc string

	cmd := &cobra.Command{
		Use:   "add-center [name]",
		Short: "Add a work center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.CatalogAdapter().AddCenter(commandContext(cmd), args[0], desc)
			return err
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	return cmd
}
