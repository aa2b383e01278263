// Package commands implements tixmail CLI commands.
package commands

import (
	"io"
	"log/slog"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/tty"
)

// Log formats accepted by --log-format.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LogOpts controls the command logger.
type LogOpts struct {
	Verbose bool   // debug level
	Format  string // auto, text or json
}

// NewLogger creates the structured logger for a command run.
// With format auto, a terminal gets slog.TextHandler and anything else
// (CI, cron, pipes) gets slog.JSONHandler.
func NewLogger(w io.Writer, opts LogOpts) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if opts.Verbose {
		options.Level = slog.LevelDebug
	}

	format := opts.Format
	if format == "" || format == LogFormatAuto {
		format = LogFormatJSON
		if tty.IsTerminalWriter(w) {
			format = LogFormatText
		}
	}

	var handler slog.Handler
	switch format {
	case LogFormatText:
		handler = slog.NewTextHandler(w, options)
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, options)
	default:
		return nil, errors.New(errors.EUsage, "unsupported --log-format "+opts.Format+" (supported: auto, text, json)")
	}
	return slog.New(handler), nil
}

func discardLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
