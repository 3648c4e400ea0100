package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
)

// NewProposersCmd creates the proposers command
func NewProposersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposers",
		Short: "Manage accounts allowed to stage changes",
	}
	cmd.AddCommand(
		newProposerCmd("add", "Allow an account to propose and withdraw changes", "Added"),
		newProposerCmd("remove", "Revoke an account's proposer role", "Removed"),
	)
	return cmd
}

func newProposerCmd(use, short, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <address>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			addr, err := parseAddress("proposer", args[0])
			if err != nil {
				return err
			}

			update := app.Coordinator.AddProposer
			if use == "remove" {
				update = app.Coordinator.RemoveProposer
			}
			if err := update(cmd.Context(), app.Backend.Sender(), addr); err != nil {
				return err
			}

			state, err := app.Coordinator.State(cmd.Context())
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), map[string][]common.Address{"proposers": state.Proposers})
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("%s proposer %s", verb, addr.Hex())))
			return nil
		},
	}
}
