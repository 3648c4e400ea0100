package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
)

func addMigrationFlags(cmd *cobra.Command, call *string) {
	cmd.Flags().StringVar(call, "call", "", "Call data passed to the target implementation after the final swap")
	cmd.Flags().Int("chunk-size", 0, "Keys per upgradeChunk call (overrides the migration plan default)")
	cmd.Flags().Uint64("from-block", 0, "First block scanned for key events")
}

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	var call string

	cmd := &cobra.Command{
		Use:   "migrate <id> <target>",
		Short: "Move an adopted proxy to a new implementation",
		Long: `Move an adopted proxy to the target implementation using the strategy from
the migration plan. Contracts without a plan entry are repointed directly.

The chunked-set strategy points the proxy at the configured upgrader, migrates
the keys found in the plan's key events in chunks, and then points it at the
target. Progress is saved after every chunk, so running the same command again
after a failure resumes where it stopped. No changes may be pending for the
contract and the storage layout must be compatible.`,
		Example: `  treb-upgrades migrate MerchantRegistry 0x... --call "initializeV2()"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := contractArg(cmd, app, args[:1])
			if err != nil {
				return err
			}
			target, err := parseAddress("target", args[1])
			if err != nil {
				return err
			}
			data, err := parseCallData(call)
			if err != nil {
				return err
			}

			result, err := app.MigrateContract.Run(cmd.Context(), app.Backend.Sender(), id, target, data)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return render.NewMigrationRenderer(cmd.OutOrStdout(), useColor()).RenderMigrate(result)
		},
	}

	addMigrationFlags(cmd, &call)
	return cmd
}

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var call string

	cmd := &cobra.Command{
		Use:   "verify <id> <target>",
		Short: "Rehearse a chunked-set migration on a fork and compare set membership",
		Long: `Run the chunked-set migration against a local fork (anvil or hardhat) and
check that every migrated set holds the same members afterwards. Set storage
is read by temporarily swapping in the storage reader contract, so the command
refuses to run against anything but a dev node. Layout types that look like
enumerable sets but are missing from the plan are reported as unhandled.`,
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
			target, err := parseAddress("target", args[1])
			if err != nil {
				return err
			}
			data, err := parseCallData(call)
			if err != nil {
				return err
			}

			result, err := app.VerifySet.Run(cmd.Context(), app.Backend.Sender(), id, target, data)
			if result == nil {
				return err
			}
			// a failed comparison still reports the per-set differences
			if app.Config.JSON {
				if jsonErr := writeJSON(cmd.OutOrStdout(), result); jsonErr != nil {
					return jsonErr
				}
				return err
			}
			if renderErr := render.NewMigrationRenderer(cmd.OutOrStdout(), useColor()).RenderVerify(result); renderErr != nil {
				return renderErr
			}
			return err
		},
	}

	addMigrationFlags(cmd, &call)
	return cmd
}
