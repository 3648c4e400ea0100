package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/app"
	"github.com/trebuchet-org/treb-upgrades/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	appKey        contextKey = "app"
	offlineAppKey contextKey = "offline-app"

	// offlineAnnotation marks commands that only read local files
	offlineAnnotation = "offline"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treb-upgrades",
		Short: "Coordinated proxy upgrades and storage migrations for Foundry projects",
		Long: `treb-upgrades stages upgrades for a set of transparent proxies, reviews
them as one batch and commits the batch atomically together with the protocol
version. Contracts whose enumerable set storage changed encoding are migrated
in resumable chunks and can be rehearsed on a local fork first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}
			v := config.SetupViper(projectRoot, cmd)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if cmd.Annotations[offlineAnnotation] == "true" {
				offline, err := app.InitOfflineApp(v)
				if err != nil {
					return fmt.Errorf("failed to initialize app: %w", err)
				}
				ctx = context.WithValue(ctx, offlineAppKey, offline)
				cmd.SetContext(ctx)
				return nil
			}

			appInstance, cleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			ctx = context.WithValue(ctx, appKey, appInstance)

			var cancel context.CancelFunc = func() {}
			if appInstance.Config.Timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.PersistentPostRun = func(*cobra.Command, []string) {
				cancel()
				cleanup()
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (name from foundry.toml rpc_endpoints or an RPC URL)")
	rootCmd.PersistentFlags().String("coordinator", "", "Coordinator account address")
	rootCmd.PersistentFlags().String("profile", "", "Foundry profile")

	rootCmd.AddGroup(&cobra.Group{ID: "coordinator", Title: "Coordinator Commands"})
	rootCmd.AddGroup(&cobra.Group{ID: "migration", Title: "Migration Commands"})

	for _, c := range []*cobra.Command{
		NewInitCmd(),
		NewAdoptCmd(),
		NewProposeCmd(),
		NewWithdrawCmd(),
		NewStatusCmd(),
		NewCommitCmd(),
		NewCallCmd(),
		NewProposersCmd(),
	} {
		c.GroupID = "coordinator"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		NewLayoutCmd(),
		NewMigrateCmd(),
		NewVerifyCmd(),
		NewForkCmd(),
	} {
		c.GroupID = "migration"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// offline marks cmd as runnable without a network connection
func offline(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[offlineAnnotation] = "true"
	return cmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance, ok := cmd.Context().Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return appInstance, nil
}

// getOfflineApp retrieves the offline app instance from the command context
func getOfflineApp(cmd *cobra.Command) (*app.OfflineApp, error) {
	appInstance, ok := cmd.Context().Value(offlineAppKey).(*app.OfflineApp)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return appInstance, nil
}
