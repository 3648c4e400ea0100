package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// NewForkCmd creates the fork command
func NewForkCmd() *cobra.Command {
	var params usecase.ForkParams

	cmd := &cobra.Command{
		Use:   "fork",
		Short: "Run a local anvil fork of the selected network",
		Long: `Start, stop or inspect a local anvil node forking the selected network.
Point migrate and verify at the fork with --network to rehearse a migration
without touching the live chain.`,
	}
	cmd.PersistentFlags().StringVar(&params.Name, "name", "", "Fork name (defaults to the network name)")
	cmd.PersistentFlags().IntVar(&params.Port, "port", usecase.DefaultForkPort, "Local RPC port")

	start := offline(&cobra.Command{
		Use:   "start",
		Short: "Fork the selected network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getOfflineApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.ManageFork.Start(cmd.Context(), params)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return render.NewForkRenderer(cmd.OutOrStdout()).RenderStarted(result)
		},
	})
	start.Flags().Uint64Var(&params.ForkBlock, "block", 0, "Fork at this block instead of the latest")

	stop := offline(&cobra.Command{
		Use:   "stop",
		Short: "Stop the fork",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getOfflineApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.ManageFork.Stop(cmd.Context(), params)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return render.NewForkRenderer(cmd.OutOrStdout()).RenderStopped(result)
		},
	})

	status := offline(&cobra.Command{
		Use:   "status",
		Short: "Show whether the fork is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getOfflineApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.ManageFork.Status(cmd.Context(), params)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return render.NewForkRenderer(cmd.OutOrStdout()).RenderStatus(result)
		},
	})

	cmd.AddCommand(start, stop, status)
	return cmd
}
