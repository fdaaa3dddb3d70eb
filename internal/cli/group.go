package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/wire"
)

// GroupCmd returns the group command
func GroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups of identical cards",
		Long: `A group holds N copies of one card ("1. name", "2. name", ...).
Its status follows its children.`,
	}

	cmd.AddCommand(groupCreateCmd())
	cmd.AddCommand(groupDuplicateCmd())
	cmd.AddCommand(groupDeleteCmd())
	cmd.AddCommand(groupExecutorCmd())

	return cmd
}

func groupCreateCmd() *cobra.Command {
	var req primary.CreateGroupRequest

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a group of copies of a card",
		Long: `Create a group whose children copy a template card (--from) or the
fields given as flags.

Examples:
  routecard group create "Shaft batch" --from 2000000000015 --count 5
  routecard group create "Rings" --count 3 --qty 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			req.Draft.Name = args[0]
			req.Draft.Quantity = quantityFlag(cmd, "qty")
			if req.TemplateRef != "" {
				if err := validateCardRef(req.TemplateRef); err != nil {
					return err
				}
			}
			_, err := wire.CardAdapter().CreateGroup(commandContext(cmd), req)
			return err
		},
	}

	cmd.Flags().IntVarP(&req.Count, "count", "n", 2, "Number of cards in the group")
	cmd.Flags().StringVar(&req.TemplateRef, "from", "", "Card to copy")
	addCardFieldFlags(cmd, &req.Draft)
	return cmd
}

func groupDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate [group]",
		Short: "Copy a group and its live cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().DuplicateGroup(commandContext(cmd), args[0])
			return err
		},
	}
}

func groupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [group]",
		Short: "Delete a group and its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().DeleteGroup(commandContext(cmd), args[0])
			return err
		},
	}
}

func groupExecutorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "executor [group] [op-code] [name]",
		Short: "Assign an executor to one operation across the group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().GroupExecutor(commandContext(cmd), primary.SetGroupExecutorRequest{
				GroupRef: args[0],
				OpCode:   args[1],
				Executor: args[2],
			})
			return err
		},
	}
}
