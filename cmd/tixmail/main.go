// Command tixmail issues participation tokens and mails personalised tickets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NielsdaWheelz/tixmail/internal/cli/cobra"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
)

func main() {
	// SIGINT lets the participant in flight finish; the rest stay pending
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cobra.Execute(ctx, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		// Use verbose mode if --verbose global flag was set
		opts := errors.PrintOptions{
			Verbose: cobra.GetGlobalOpts().Verbose,
		}
		errors.PrintWithOptions(os.Stderr, err, opts)
		os.Exit(errors.ExitCode(err))
	}
}
