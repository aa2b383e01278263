package commands

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/NielsdaWheelz/tixmail/internal/artifact"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// CleanOpts holds options for the clean command.
type CleanOpts struct {
	ConfigPath string
	// Yes skips the confirmation prompt.
	Yes bool
	// Interactive is true when stdin and stderr are terminals.
	Interactive bool
}

// Clean implements `tixmail clean`: removes rendered tickets from the output
// directory. Ledgers, snapshot and event log are never touched.
// The output directory must lie under the event config's directory.
func Clean(ctx context.Context, fsys fs.FS, opts CleanOpts, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) error {
	logger = discardLogger(logger)

	cfg, err := loadEvent(fsys, opts.ConfigPath, logger)
	if err != nil {
		return err
	}
	dir := cfg.Artifact.OutputDir

	if !opts.Yes {
		if !opts.Interactive {
			return errors.NewWithDetails(errors.EConfirmationRequired,
				"clean needs confirmation; rerun with --yes in non-interactive mode",
				map[string]string{"path": dir})
		}
		_, _ = fmt.Fprintf(stderr, "confirm: type 'clean' to remove tickets in %s: ", dir)
		input, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && input == "" {
			return errors.Wrap(errors.EAborted, "failed to read confirmation", err)
		}
		if strings.TrimSpace(input) != "clean" {
			return errors.New(errors.EAborted, "confirmation failed; expected 'clean'")
		}
	}

	removed, err := fs.RemoveMatching(dir, cfg.Dir, artifact.IsTicketFile)
	if err != nil {
		var notUnder *fs.ErrNotUnderPrefix
		if stderrors.As(err, &notUnder) {
			return errors.WrapWithDetails(errors.EUnsafePath, "refusing to clean outside the event directory", err,
				map[string]string{"path": dir, "hint": "point artifact.output_dir below " + cfg.Dir})
		}
		return errors.WrapWithDetails(errors.EInternal, "failed to remove tickets", err, map[string]string{"path": dir})
	}

	for _, p := range removed {
		logger.Debug("ticket removed", "path", p)
	}
	_, _ = fmt.Fprintf(stdout, "removed: %d\n", len(removed))
	return nil
}
