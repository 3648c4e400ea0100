package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return offline(&cobra.Command{
		Use:     "status",
		Aliases: []string{"ls"},
		Short:   "Show adopted contracts and the pending batch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getOfflineApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.ShowStatus.Run(cmd.Context())
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return render.NewCoordinatorRenderer(cmd.OutOrStdout(), useColor()).RenderStatus(result)
		},
	})
}
