package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/config"
	"github.com/example/routecard/internal/ctxutil"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/wire"
)

var configPath string

// BindConfigFlag adds the --config flag to root and hands the chosen path
// to wire before any command runs.
func BindConfigFlag(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.routecard/config.yaml)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			configPath = p
		}
		wire.SetConfigPath(configPath)
		return nil
	}
}

// commandContext returns the command's context carrying the CLI actor.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxutil.WithActor(ctx, wire.Config().CLIActor())
}

// intFlag returns a pointer to the flag value when it was set explicitly.
func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil
	}
	return &v
}

// stringFlag returns a pointer to the flag value when it was set explicitly.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil
	}
	return &v
}

// quantityFlag parses a quantity flag; blank means unset.
func quantityFlag(cmd *cobra.Command, name string) models.Quantity {
	v, _ := cmd.Flags().GetString(name)
	return models.ParseQuantity(v)
}
