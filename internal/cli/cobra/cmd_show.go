package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/commands"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

func newShowCmd() *cobra.Command {
	var opts commands.ShowOpts

	cmd := &cobra.Command{
		Use:   "show (--token N | --email EMAIL)",
		Short: "Look up one participant by token or email",
		Long: `Look up one participant by token or email.
Searches the roster first, then the ledgers, so participants removed from
the roster after receiving a token are still found.`,
		Example: `  tixmail show --token 1004
  tixmail show --email ann@example.com --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			opts.ConfigPath = globalOpts.ConfigPath
			opts.HasToken = cmd.Flags().Changed("token")
			return commands.Show(cmd.Context(), fs.NewRealFS(), opts, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVar(&opts.Token, "token", 0, "participant token")
	cmd.Flags().StringVar(&opts.Email, "email", "", "participant email")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output as JSON")
	cmd.MarkFlagsMutuallyExclusive("token", "email")
	cmd.MarkFlagsOneRequired("token", "email")

	return cmd
}
