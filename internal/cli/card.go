package cli

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/adapters/export"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/wire"
)

// CardCmd returns the card command
func CardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage route cards",
		Long: `Create, inspect and archive route cards.

Every command that takes a card accepts its ID or its 13-digit barcode.`,
	}

	cmd.AddCommand(cardListCmd())
	cmd.AddCommand(cardShowCmd())
	cmd.AddCommand(cardCreateCmd())
	cmd.AddCommand(cardUpdateCmd())
	cmd.AddCommand(cardDeleteCmd())
	cmd.AddCommand(cardArchiveCmd())
	cmd.AddCommand(cardRepeatCmd())
	cmd.AddCommand(cardDuplicateCmd())
	cmd.AddCommand(cardLogCmd())
	cmd.AddCommand(cardExportCmd())
	cmd.AddCommand(cardAttachCmd())
	cmd.AddCommand(cardFilesCmd())

	return cmd
}

func cardListCmd() *cobra.Command {
	var filters primary.CardFilters
	var status, state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Long: `List live cards, or archived cards with --archived.

Examples:
  routecard card list
  routecard card list --state MIXED
  routecard card list -q shaft`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters.Status = models.Status(status)
			filters.ProcessState = models.ProcessState(state)
			_, err := wire.CardAdapter().List(commandContext(cmd), filters)
			return err
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (NOT_STARTED, IN_PROGRESS, PAUSED, DONE)")
	cmd.Flags().StringVar(&state, "state", "", "Filter by process state (adds MIXED)")
	cmd.Flags().StringVarP(&filters.GroupID, "group", "g", "", "Show the children of a group")
	cmd.Flags().StringVarP(&filters.Query, "query", "q", "", "Search name, barcode, order, contract and drawing")
	cmd.Flags().BoolVar(&filters.Archived, "archived", false, "List archived cards")
	cmd.Flags().BoolVar(&filters.IncludeChildren, "children", false, "Include group children")

	return cmd
}

func cardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [card]",
		Short: "Show a card with its route and results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Show(commandContext(cmd), args[0])
			return err
		},
	}
}

func cardCreateCmd() *cobra.Command {
	var draft primary.CardDraft

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new card",
		Long: `Create a new route card with an empty route.

Examples:
  routecard card create "Drive shaft" --qty 10 --order PO-118
  routecard card create "Bushing" --qty 4 --per-item`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Name = args[0]
			draft.Quantity = quantityFlag(cmd, "qty")
			_, err := wire.CardAdapter().Create(commandContext(cmd), draft)
			return err
		},
	}

	addCardFieldFlags(cmd, &draft)
	return cmd
}

func addCardFieldFlags(cmd *cobra.Command, draft *primary.CardDraft) {
	cmd.Flags().String("qty", "", "Batch quantity (blank for unset)")
	cmd.Flags().StringVar(&draft.OrderNo, "order", "", "Order number")
	cmd.Flags().StringVar(&draft.ContractNumber, "contract", "", "Contract number")
	cmd.Flags().StringVar(&draft.Drawing, "drawing", "", "Drawing number")
	cmd.Flags().StringVar(&draft.Material, "material", "", "Material")
	cmd.Flags().StringVar(&draft.Desc, "desc", "", "Description")
	cmd.Flags().BoolVar(&draft.UseItemList, "per-item", false, "Track every unit individually")
}

func cardUpdateCmd() *cobra.Command {
	var unused primary.CardDraft

	cmd := &cobra.Command{
		Use:   "update [card]",
		Short: "Change card fields",
		Long: `Change the fields given as flags; every change is logged.

Examples:
  routecard card update 2000000000015 --qty 12
  routecard card update card_123 --drawing DR-7 --material "40Cr"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			req := primary.UpdateCardRequest{
				Ref:            args[0],
				Name:           stringFlag(cmd, "name"),
				OrderNo:        stringFlag(cmd, "order"),
				ContractNumber: stringFlag(cmd, "contract"),
				Desc:           stringFlag(cmd, "desc"),
				Drawing:        stringFlag(cmd, "drawing"),
				Material:       stringFlag(cmd, "material"),
			}
			if cmd.Flags().Changed("qty") {
				q := quantityFlag(cmd, "qty")
				req.Quantity = &q
			}
			if cmd.Flags().Changed("per-item") {
				v, _ := cmd.Flags().GetBool("per-item")
				req.UseItemList = &v
			}
			_, err := wire.CardAdapter().Update(commandContext(cmd), req)
			return err
		},
	}

	cmd.Flags().String("name", "", "Card name")
	addCardFieldFlags(cmd, &unused)
	return cmd
}

func cardDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [card]",
		Short: "Delete a card (use 'group delete' for groups)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			return wire.CardAdapter().Delete(commandContext(cmd), args[0])
		},
	}
}

func cardArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive [card]",
		Short: "Archive a finished card or group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Archive(commandContext(cmd), args[0])
			return err
		},
	}
}

func cardRepeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repeat [card]",
		Short: "Start a fresh copy of an archived card or group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Repeat(commandContext(cmd), args[0])
			return err
		},
	}
}

func cardDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate [card]",
		Short: "Copy a card with its route reset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Duplicate(commandContext(cmd), args[0])
			return err
		},
	}
}

func cardLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [card]",
		Short: "Show a card's change log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Log(commandContext(cmd), args[0])
			return err
		},
	}
}

func cardExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [card]",
		Short: "Export a card to an Excel workbook",
		Long: `Write the route, final results and change log of a card to .xlsx.

Examples:
  routecard card export 2000000000015
  routecard card export card_123 -o shaft.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			view, err := wire.CardService().GetCard(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get card: %w", err)
			}
			if output == "" {
				output = view.Card.Barcode + ".xlsx"
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := export.WriteCard(f, view, time.Now()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Printf("✓ Exported %s to %s\n", view.Card.Name, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <barcode>.xlsx)")
	return cmd
}

func cardAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [card] [file]",
		Short: "Attach a file to a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			name := filepath.Base(args[1])
			mediaType := mime.TypeByExtension(filepath.Ext(name))
			if mediaType == "" {
				mediaType = "application/octet-stream"
			}
			meta, err := wire.DataService().AddAttachment(commandContext(cmd), primary.AddAttachmentRequest{
				CardRef: args[0],
				Name:    name,
				Type:    mediaType,
				Content: "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
				Size:    int64(len(data)),
			})
			if err != nil {
				return fmt.Errorf("failed to attach file: %w", err)
			}
			fmt.Printf("✓ Attached %s (%d bytes) as %s\n", meta.Name, meta.Size, meta.ID)
			return nil
		},
	}
}

func cardFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files [card]",
		Short: "List a card's attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			files, err := wire.DataService().ListAttachments(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to list attachments: %w", err)
			}
			if len(files) == 0 {
				fmt.Println("No attachments.")
				return nil
			}
			for _, f := range files {
				fmt.Printf("%s  %-30s %8d  %s\n", f.ID, f.Name, f.Size, f.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
