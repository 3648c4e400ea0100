package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var owner, registry string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the coordinator registry for the selected network",
		Long: `Create the coordinator registry for the --coordinator account on the selected
network. The owner may adopt proxies, commit batches and manage proposers.
The network and coordinator are saved to .treb/config.local.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			input := usecase.InitInput{Owner: app.Backend.Sender()}
			if owner != "" {
				if input.Owner, err = parseAddress("owner", owner); err != nil {
					return err
				}
			}
			if registry != "" {
				addr, err := parseAddress("registry", registry)
				if err != nil {
					return err
				}
				input.VersionRegistry = &addr
			}

			state, err := app.InitCoordinator.Run(cmd.Context(), input)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), state)
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Initialized coordinator %s on %s", state.Address.Hex(), app.Config.NetworkName())))
			fmt.Fprintf(cmd.OutOrStdout(), "   Owner: %s\n", state.Owner.Hex())
			if state.VersionRegistry != nil && *state.VersionRegistry != (common.Address{}) {
				fmt.Fprintf(cmd.OutOrStdout(), "   Version registry: %s\n", state.VersionRegistry.Hex())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Registry owner (defaults to the signer)")
	cmd.Flags().StringVar(&registry, "registry", "", "Protocol version registry updated by every commit")
	return cmd
}
