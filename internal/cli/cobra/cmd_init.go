package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/commands"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a tixmail.yaml template",
		Long: `Create a tixmail.yaml template in the current directory
(or at --config). Relative paths in it resolve against its directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := commands.InitOpts{
				ConfigPath: globalOpts.ConfigPath,
				Force:      force,
			}
			return commands.Init(cmd.Context(), fs.NewRealFS(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing event config")

	return cmd
}
