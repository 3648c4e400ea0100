package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-upgrades/internal/cli/render"
)

// NewCommitCmd creates the commit command
func NewCommitCmd() *cobra.Command {
	var (
		version string
		nonce   int64
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Apply every pending change in one atomic batch",
		Long: `Apply every pending change in proposal order and record the protocol version,
all in one transaction. If any call reverts nothing is applied and the pending
changes are kept.

--nonce guards against committing a batch someone else changed in the
meantime: the commit is refused unless the coordinator nonce still matches.
Without it the current nonce is read and used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			expected := uint64(nonce)
			if nonce < 0 {
				if expected, err = app.Coordinator.Nonce(ctx); err != nil {
					return err
				}
			}

			pending, err := app.Coordinator.PendingDetails(ctx)
			if err != nil {
				return err
			}
			renderer := render.NewCoordinatorRenderer(out, useColor())
			if !app.Config.JSON {
				if err := renderer.RenderPending(pending); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}

			if !yes && len(pending) > 0 {
				ok, err := app.Prompter.Confirm(fmt.Sprintf("Commit %d change(s) as version %s", len(pending), version))
				if errors.Is(err, interactive.ErrNonInteractive) {
					return fmt.Errorf("refusing to commit without confirmation, pass --yes")
				}
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "❌ Commit cancelled.")
					return nil
				}
			}

			result, err := app.Coordinator.Commit(ctx, app.Backend.Sender(), expected, version)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return writeJSON(out, result)
			}
			return renderer.RenderCommit(result)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Protocol version recorded by the batch (required)")
	cmd.Flags().Int64Var(&nonce, "nonce", -1, "Expected coordinator nonce")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}
