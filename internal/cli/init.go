package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/config"
	"github.com/example/routecard/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config and prepare the store",
		Long: `Write ~/.routecard/config.yaml (or --config) with defaults, then open the
configured store, seeding the default catalog when it is empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				fmt.Printf("Config already exists at %s (use --force to overwrite)\n", path)
			} else {
				if err := config.DefaultConfig().SaveToFile(path); err != nil {
					return err
				}
				fmt.Printf("✓ Config written to %s\n", path)
			}

			wire.SetConfigPath(path)
			cfg := wire.Config()
			status := wire.CardService().SyncStatus()
			if status.Degraded {
				return fmt.Errorf("store %s is not writable: %s", cfg.Storage.Driver, status.LastError)
			}
			fmt.Printf("✓ %s store ready\n", cfg.Storage.Driver)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  routecard catalog ops")
			fmt.Println("  routecard card create \"Drive shaft\" --qty 10")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
