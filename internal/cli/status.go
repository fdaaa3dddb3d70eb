package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cliadapter "github.com/example/routecard/internal/adapters/cli"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var resync bool
	var history int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store health and card totals",
		Long: `Show the configured store, whether the last save reached it, and how
many live cards are in each state.

--resync loads the collection and writes it back to the store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg := wire.Config()

			if resync {
				if wire.Repository().Resync(ctx) {
					fmt.Printf("%s Collection saved\n", color.New(color.FgGreen).Sprint("✓"))
				} else {
					fmt.Printf("%s Save failed\n", color.New(color.FgRed).Sprint("✗"))
				}
			}

			status := wire.CardService().SyncStatus()
			fmt.Println("Routecard Status")
			fmt.Println()
			fmt.Printf("  Storage: %s\n", cfg.Storage.Driver)
			if v, ok, err := wire.SchemaVersion(); ok {
				if err != nil {
					fmt.Printf("  Schema:  unknown (%v)\n", err)
				} else {
					fmt.Printf("  Schema:  v%d\n", v)
				}
			}
			if status.Degraded {
				fmt.Printf("  Sync:    %s\n", color.New(color.FgRed).Sprint("DEGRADED"))
			} else {
				fmt.Printf("  Sync:    %s\n", color.New(color.FgGreen).Sprint("OK"))
			}
			if !status.LastSavedAt.IsZero() {
				fmt.Printf("  Saved:   %s\n", status.LastSavedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Println()

			views, err := wire.CardService().ListCards(ctx, primary.CardFilters{})
			if err != nil {
				return fmt.Errorf("failed to list cards: %w", err)
			}
			counts := map[models.ProcessState]int{}
			for _, v := range views {
				counts[v.ProcessState]++
			}
			fmt.Printf("  Cards:   %d live\n", len(views))
			for _, state := range []models.ProcessState{
				models.ProcessNotStarted, models.ProcessInProgress, models.ProcessPaused,
				models.ProcessMixed, models.ProcessDone,
			} {
				if counts[state] > 0 {
					fmt.Printf("    %-12s %d\n", state, counts[state])
				}
			}

			if history > 0 {
				records, ok, err := wire.SaveHistory(ctx, history)
				if ok {
					if err != nil {
						return fmt.Errorf("failed to read save history: %w", err)
					}
					fmt.Println()
					fmt.Println("Recent saves:")
					w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
					fmt.Fprintln(w, "  TIME\tCARDS\tBYTES")
					for _, r := range records {
						fmt.Fprintf(w, "  %s\t%d\t%d\n", r.SavedAt.Local().Format("2006-01-02 15:04:05"), r.CardCount, r.PayloadBytes)
					}
					w.Flush()
				}
			}

			fmt.Println()
			cliadapter.PrintSyncBanner(os.Stdout, status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&resync, "resync", false, "Save the collection again")
	cmd.Flags().IntVar(&history, "history", 5, "Show the last N saves (sqlite only)")
	return cmd
}
