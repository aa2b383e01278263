package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/commands"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every participant's token and delivery status",
		Long: `Show every participant's token and delivery status.
Joins the roster with the success and failure ledgers. Read-only.

Statuses:
  sent      ticket delivered
  failed    last attempt failed (see REASON)
  pending   not attempted yet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			opts := commands.StatusOpts{
				ConfigPath: globalOpts.ConfigPath,
				JSON:       jsonOutput,
			}
			return commands.Status(cmd.Context(), fs.NewRealFS(), opts, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON array")

	return cmd
}
