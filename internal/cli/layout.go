package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/app"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// NewLayoutCmd creates the layout command
func NewLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compare storage layouts against the archived snapshots",
		Long: `Compare the compiled storage layout of managed contracts with the layout
archived when they were last deployed. Existing variables must keep their
label, slot, offset and type. New variables may only be appended, and may
take the place of a reserved __gap.`,
	}
	cmd.AddCommand(newLayoutCheckCmd(), newLayoutSnapshotCmd())
	return cmd
}

func newLayoutCheckCmd() *cobra.Command {
	var build bool

	cmd := offline(&cobra.Command{
		Use:   "check [id...]",
		Short: "Check layout compatibility of the given contracts, or all",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getOfflineApp(cmd)
			if err != nil {
				return err
			}
			if err := maybeBuild(cmd, app, build); err != nil {
				return err
			}

			results, err := app.CheckLayout.Check(cmd.Context(), contractIDs(args))
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			if failed := render.NewLayoutRenderer(cmd.OutOrStdout(), useColor()).RenderChecks(results); failed > 0 {
				return fmt.Errorf("%d incompatible storage layout(s)", failed)
			}
			return nil
		},
	})
	cmd.Flags().BoolVar(&build, "build", false, "Run forge build first")
	return cmd
}

func newLayoutSnapshotCmd() *cobra.Command {
	var build bool

	cmd := offline(&cobra.Command{
		Use:   "snapshot [id...]",
		Short: "Archive the current layouts as the new baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getOfflineApp(cmd)
			if err != nil {
				return err
			}
			if err := maybeBuild(cmd, app, build); err != nil {
				return err
			}

			names, err := app.CheckLayout.Snapshot(cmd.Context(), contractIDs(args))
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), names)
			}
			return render.NewLayoutRenderer(cmd.OutOrStdout(), useColor()).RenderSnapshot(names)
		},
	})
	cmd.Flags().BoolVar(&build, "build", false, "Run forge build first")
	return cmd
}

func maybeBuild(cmd *cobra.Command, a *app.OfflineApp, build bool) error {
	if !build {
		return nil
	}
	return a.Builder.Build(cmd.Context(), cmd.ErrOrStderr())
}

func contractIDs(args []string) []models.ContractID {
	return lo.Map(args, func(a string, _ int) models.ContractID { return models.ContractID(a) })
}
