package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/commands"
	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

func newSendCmd() *cobra.Command {
	var opts commands.SendOpts

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Issue tokens, render tickets and mail them",
		Long: `Issue tokens, render tickets and mail them.
Processes the roster in order. Participants already in the success ledger
are skipped; earlier failures are retried unless retry_failed is false.

SMTP settings come from the environment:
  EMAIL_ADDRESS, EMAIL_PASSWORD, SMTP_SERVER, SMTP_PORT (required)
  SMTP_TLS_POLICY (mandatory|opportunistic|none), SMTP_AUTH (auto|plain|login|cram-md5),
  SMTP_TIMEOUT (optional)

Per-participant failures never stop the run; they land in the failure
ledger. Ctrl-C finishes the participant in flight, saves the ledgers and
leaves the rest pending.

Exit codes:
  0  run finished (failures may be recorded)
  1  run aborted (config, roster, ledger, session or interrupt)
  3  --strict and at least one participant failed`,
		Example: `  tixmail send --dry-run
  tixmail send --only ann@example.com
  tixmail send --limit 20 --checkpoint`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			opts.ConfigPath = globalOpts.ConfigPath

			deps := commands.SendDeps{
				Logger:  logger,
				Environ: config.Environ(),
			}
			return commands.Send(cmd.Context(), fs.NewRealFS(), opts, deps, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Only, "only", "", "process only the participant with this email")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many participants were attempted (0 = all)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "write messages to the outbox instead of sending; ledgers untouched")
	cmd.Flags().BoolVar(&opts.Checkpoint, "checkpoint", false, "save the ledgers after every participant")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 3 when any participant failed")

	return cmd
}
