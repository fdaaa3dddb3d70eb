package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/cli"
	"github.com/example/routecard/internal/version"
	"github.com/example/routecard/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "routecard",
		Short:   "Routecard - route cards and shop-floor operation tracking",
		Version: version.String(),
		Long: `Routecard tracks manufacturing route cards: the ordered operations a part
goes through, who runs them, how long they take and how many parts come out good.
Cards are served over HTTP to the shop floor and managed from this CLI.`,
		SilenceUsage: true,
	}
	cli.BindConfigFlag(rootCmd)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	// Card commands
	rootCmd.AddCommand(cli.CardCmd())
	rootCmd.AddCommand(cli.OpCmd())
	rootCmd.AddCommand(cli.GroupCmd())
	rootCmd.AddCommand(cli.CatalogCmd())
	rootCmd.AddCommand(cli.WatchCmd())

	// Collection exchange
	rootCmd.AddCommand(cli.DataCmd())

	err := rootCmd.Execute()
	wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
