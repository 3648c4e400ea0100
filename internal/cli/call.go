package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
)

// NewCallCmd creates the call command
func NewCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <id> <calldata>",
		Short: "Execute a call through an adopted proxy immediately",
		Long: `Execute a call through an adopted proxy without staging it. Only the owner
may call. Pending changes are left untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := contractArg(cmd, app, args[:1])
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

			receipt, err := app.Coordinator.Call(cmd.Context(), app.Backend.Sender(), id, data)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), receipt)
			}
			return render.NewCoordinatorRenderer(cmd.OutOrStdout(), useColor()).RenderReceipt(fmt.Sprintf("Called %s", id), receipt)
		},
	}
}
