package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/commands"
	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, resources and ledgers",
		Long: `Check configuration, resources and ledgers.
Resolves the event config, checks that the SMTP environment is complete
(the password is never printed), that the ticket template and font exist,
and that the roster and both ledgers can be read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			opts := commands.DoctorOpts{
				ConfigPath: globalOpts.ConfigPath,
				Environ:    config.Environ(),
			}
			return commands.Doctor(cmd.Context(), fs.NewRealFS(), opts, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}
