package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/commands"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
	"github.com/NielsdaWheelz/tixmail/internal/tty"
)

func newCleanCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove rendered tickets",
		Long: `Remove rendered tickets from the output directory.
Only *_ticket.png and *_ticket.pdf files directly inside artifact.output_dir
are removed, and only when that directory lies under the event config's
directory. Ledgers, snapshot and event log are kept.

Confirmation:
  you must type 'clean' to confirm, or pass --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			opts := commands.CleanOpts{
				ConfigPath:  globalOpts.ConfigPath,
				Yes:         yes,
				Interactive: tty.IsInteractive(),
			}
			return commands.Clean(cmd.Context(), fs.NewRealFS(), opts, logger, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
