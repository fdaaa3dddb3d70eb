package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/wire"
)

// OpCmd returns the op command
func OpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "op",
		Short: "Work with the operations of a card's route",
		Long: `Edit a card's route and run its operations.

Operations are addressed by ID or op code, e.g.:
  routecard op start 2000000000015 OP-0001`,
	}

	cmd.AddCommand(opAddCmd())
	cmd.AddCommand(opRemoveCmd())
	cmd.AddCommand(opMoveCmd("up", -1))
	cmd.AddCommand(opMoveCmd("down", 1))
	for _, action := range []string{"start", "pause", "resume", "stop"} {
		cmd.AddCommand(opActionCmd(action))
	}
	cmd.AddCommand(opCountsCmd())
	cmd.AddCommand(opItemCmd())
	cmd.AddCommand(opExecutorCmd())
	cmd.AddCommand(opCommentCmd())

	return cmd
}

func opAddCmd() *cobra.Command {
	var req primary.AddRouteStepRequest

	cmd := &cobra.Command{
		Use:   "add [card] [catalog-op] [center]",
		Short: "Append a catalog operation to a card's route",
		Long: `Append a step built from a catalog operation and a work center.

Examples:
  routecard op add 2000000000015 OP-0001 Machining --executor Ivanov
  routecard op add card_123 Turning Machining --auto-code --qty 5`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			req.CardRef, req.OpRef, req.CenterRef = args[0], args[1], args[2]
			req.Quantity = quantityFlag(cmd, "qty")
			_, err := wire.CardAdapter().AddStep(commandContext(cmd), req)
			return err
		},
	}

	cmd.Flags().StringVarP(&req.Executor, "executor", "e", "", "Executor")
	cmd.Flags().IntVar(&req.PlannedMinutes, "minutes", 0, "Planned minutes (default: catalog recommendation)")
	cmd.Flags().String("qty", "", "Step quantity (default: card quantity)")
	cmd.Flags().BoolVar(&req.AutoCode, "auto-code", false, "Number the step code from its position")

	return cmd
}

func opRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [card] [op]",
		Short: "Remove a step from a card's route",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().RemoveStep(commandContext(cmd), args[0], args[1])
			return err
		},
	}
}

func opMoveCmd(use string, delta int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [card] [op]",
		Short: "Move a step " + use + " by one position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().MoveStep(commandContext(cmd), args[0], args[1], delta)
			return err
		},
	}
}

func opActionCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [card] [op]",
		Short: strings.ToUpper(action[:1]) + action[1:] + " an operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Act(commandContext(cmd), args[0], args[1], action)
			return err
		},
	}
}

func opCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts [card] [op]",
		Short: "Record good, scrap and held counts for a step",
		Long: `Record aggregate counts. Only the flags given are changed.

Examples:
  routecard op counts 2000000000015 OP-0001 --good 9 --scrap 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Counts(commandContext(cmd), primary.RecordCountsRequest{
				CardRef: args[0],
				OpRef:   args[1],
				Good:    intFlag(cmd, "good"),
				Scrap:   intFlag(cmd, "scrap"),
				Hold:    intFlag(cmd, "hold"),
			})
			return err
		},
	}

	addCountFlags(cmd)
	return cmd
}

func opItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item [card] [op] [item]",
		Short: "Record one unit's result on a per-item card",
		Long: `Record one unit's result. The item is its ID or 1-based position.

Examples:
  routecard op item 2000000000015 OP-0001 3 --good 1 --name "SN-0043"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Item(commandContext(cmd), primary.RecordItemRequest{
				CardRef: args[0],
				OpRef:   args[1],
				ItemRef: args[2],
				Name:    stringFlag(cmd, "name"),
				Good:    intFlag(cmd, "good"),
				Scrap:   intFlag(cmd, "scrap"),
				Hold:    intFlag(cmd, "hold"),
			})
			return err
		},
	}

	addCountFlags(cmd)
	cmd.Flags().String("name", "", "Item name or serial number")
	return cmd
}

func addCountFlags(cmd *cobra.Command) {
	cmd.Flags().Int("good", 0, "Good count")
	cmd.Flags().Int("scrap", 0, "Scrap count")
	cmd.Flags().Int("hold", 0, "Held count")
}

func opExecutorCmd() *cobra.Command {
	var also []string

	cmd := &cobra.Command{
		Use:   "executor [card] [op] [name]",
		Short: "Set who carries out a step",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Executor(commandContext(cmd), primary.SetExecutorRequest{
				CardRef:    args[0],
				OpRef:      args[1],
				Executor:   args[2],
				Additional: also,
			})
			return err
		},
	}

	cmd.Flags().StringSliceVar(&also, "also", nil, "Additional executors (at most 2)")
	return cmd
}

func opCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment [card] [op] [text]",
		Short: "Set a step comment (40 characters)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCardRef(args[0]); err != nil {
				return err
			}
			_, err := wire.CardAdapter().Comment(commandContext(cmd), args[0], args[1], args[2])
			return err
		},
	}
}
