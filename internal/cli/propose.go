package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-upgrades/internal/app"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// NewProposeCmd creates the propose command and its subcommands
func NewProposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Stage a change for the next commit",
		Long: `Stage a change for an adopted contract. Each contract holds at most one
pending change; proposing again replaces it and moves the contract to the end
of the batch. Only the owner and registered proposers may propose.`,
	}
	cmd.AddCommand(newProposeUpgradeCmd(), newProposeCallCmd(), newProposeUpgradeAndCallCmd())
	return cmd
}

func newProposeUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <id> <implementation>",
		Short: "Stage an implementation upgrade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropose(cmd, args, func(a *app.App, id models.ContractID, impl common.Address) error {
				return a.Coordinator.ProposeUpgrade(cmd.Context(), a.Backend.Sender(), id, impl)
			})
		},
	}
}

func newProposeCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <id> <calldata>",
		Short: "Stage a call through the proxy",
		Long: `Stage a call executed through the proxy on commit. Call data is 0x-prefixed
hex, or a function signature without arguments such as "pause()".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := contractArg(cmd, a, args[:1])
			if err != nil {
				return err
			}
			data, err := parseCallData(args[1])
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("call data must not be empty")
			}
			if err := a.Coordinator.ProposeCall(cmd.Context(), a.Backend.Sender(), id, data); err != nil {
				return err
			}
			return printPending(cmd, a)
		},
	}
}

func newProposeUpgradeAndCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade-and-call <id> <implementation> <calldata>",
		Short: "Stage an upgrade followed by a call to the new implementation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseCallData(args[2])
			if err != nil {
				return err
			}
			return runPropose(cmd, args[:2], func(a *app.App, id models.ContractID, impl common.Address) error {
				return a.Coordinator.ProposeUpgradeAndCall(cmd.Context(), a.Backend.Sender(), id, impl, data)
			})
		},
	}
}

func runPropose(cmd *cobra.Command, args []string, propose func(*app.App, models.ContractID, common.Address) error) error {
	a, err := getApp(cmd)
	if err != nil {
		return err
	}
	id, err := contractArg(cmd, a, args[:1])
	if err != nil {
		return err
	}
	impl, err := parseAddress("implementation", args[1])
	if err != nil {
		return err
	}
	if err := propose(a, id, impl); err != nil {
		return err
	}
	return printPending(cmd, a)
}

func printPending(cmd *cobra.Command, a *app.App) error {
	pending, err := a.Coordinator.PendingDetails(cmd.Context())
	if err != nil {
		return err
	}
	if a.Config.JSON {
		return writeJSON(cmd.OutOrStdout(), pending)
	}
	return render.NewCoordinatorRenderer(cmd.OutOrStdout(), useColor()).RenderPending(pending)
}

// NewWithdrawCmd creates the withdraw command
func NewWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw [id...]",
		Short: "Drop pending changes",
		Long: `Drop the pending change of each given contract. Without arguments the
pending changes are offered for selection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			ids, err := withdrawTargets(cmd, a, args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := a.Coordinator.WithdrawChanges(cmd.Context(), a.Backend.Sender(), id); err != nil {
					return err
				}
				if !a.Config.JSON {
					fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Withdrew pending change for %s", id)))
				}
			}
			return printPending(cmd, a)
		},
	}
}

func withdrawTargets(cmd *cobra.Command, a *app.App, args []string) ([]models.ContractID, error) {
	if len(args) > 0 {
		state, err := a.Coordinator.State(cmd.Context())
		if err != nil {
			return nil, err
		}
		ids := make([]models.ContractID, 0, len(args))
		for _, arg := range args {
			id, err := resolveID(state, arg)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	pending, err := a.Coordinator.PendingDetails(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("no pending changes")
	}
	items := lo.Map(pending, func(c *models.PendingChange, _ int) interactive.MultiSelectItem {
		return interactive.MultiSelectItem{ID: c.ID, Detail: c.Kind()}
	})
	return a.Prompter.SelectMany(items, "Select changes to withdraw")
}
