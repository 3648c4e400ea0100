package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
	"github.com/trebuchet-org/treb-upgrades/internal/usecase"
)

// NewAdoptCmd creates the adopt command
func NewAdoptCmd() *cobra.Command {
	var proxy, admin, contractName string

	cmd := &cobra.Command{
		Use:   "adopt <id>",
		Short: "Place an existing transparent proxy under coordinator control",
		Long: `Adopt a transparent proxy under a logical contract id.

The proxy admin must report itself as the admin of the proxy, and both the
admin and the contract behind the proxy must already be owned by the
coordinator account. The proxy is added to the address book with the artifact
name given by --contract so layout checks can find it.`,
		Example: `  treb-upgrades adopt MerchantRegistry --proxy 0x... --admin 0x... --contract MerchantRegistry`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			input := usecase.AdoptInput{ID: models.ContractID(args[0]), ContractName: contractName}
			if input.Proxy, err = parseAddress("proxy", proxy); err != nil {
				return err
			}
			if input.ProxyAdmin, err = parseAddress("admin", admin); err != nil {
				return err
			}

			record, err := app.AdoptContract.Run(cmd.Context(), app.Backend.Sender(), input)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			return render.NewCoordinatorRenderer(cmd.OutOrStdout(), useColor()).RenderAdopted(record)
		},
	}

	cmd.Flags().StringVar(&proxy, "proxy", "", "Proxy address (required)")
	cmd.Flags().StringVar(&admin, "admin", "", "Proxy admin address (required)")
	cmd.Flags().StringVar(&contractName, "contract", "", "Artifact name used for layout checks (defaults to the id)")
	_ = cmd.MarkFlagRequired("proxy")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}
