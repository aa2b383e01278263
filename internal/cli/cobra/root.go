// Package cobra provides the Cobra-based CLI command tree for tixmail.
package cobra

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tixmail/internal/commands"
	"github.com/NielsdaWheelz/tixmail/internal/version"
)

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	Verbose    bool
	LogFormat  string
	ConfigPath string
}

// globalOpts stores the parsed global options for access by subcommands.
var globalOpts GlobalOpts

// GetGlobalOpts returns the parsed global options.
func GetGlobalOpts() GlobalOpts {
	return globalOpts
}

// NewRootCmd creates the root cobra command for tixmail.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tixmail",
		Short: "Issue participation tokens and mail personalised tickets",
		Long: `tixmail - issue participation tokens and mail personalised tickets

tixmail reads an event roster, assigns each participant a unique sequential
token, renders a ticket (PNG or PDF), and emails it over SMTP. Outcomes are
recorded in success and failure ledgers so re-running never mails anyone
twice and never reuses a token.`,
		Version:       version.FullVersion(),
		SilenceErrors: true, // We handle error printing in main.go
		SilenceUsage:  true, // We handle usage printing manually
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalOpts.Verbose, "verbose", false, "debug logging and detailed error context")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogFormat, "log-format", commands.LogFormatAuto, "log format: auto, text or json")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.ConfigPath, "config", "c", "", "event config file (default: ./tixmail.yaml)")

	// Disable Cobra's default completion command (we register our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newInitCmd(),
		newDoctorCmd(),
		newSendCmd(),
		newStatusCmd(),
		newShowCmd(),
		newCleanCmd(),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
// This is the main entry point from main.go.
func Execute(ctx context.Context, stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

// commandLogger builds the logger for cmd from the global flags, scoped
// with the command name.
func commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	logger, err := commands.NewLogger(cmd.ErrOrStderr(), commands.LogOpts{
		Verbose: globalOpts.Verbose,
		Format:  globalOpts.LogFormat,
	})
	if err != nil {
		return nil, err
	}
	return logger.With("command", cmd.Name()), nil
}
