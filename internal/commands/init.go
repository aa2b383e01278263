package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
	"github.com/NielsdaWheelz/tixmail/internal/scaffold"
)

// InitOpts holds options for the init command.
type InitOpts struct {
	ConfigPath string
	Force      bool
}

// Init implements `tixmail init`: writes a starter tixmail.yaml.
// Refuses to overwrite an existing file unless Force is set.
func Init(ctx context.Context, fsys fs.FS, opts InitOpts, stdout, stderr io.Writer) error {
	path := configPathOrDefault(opts.ConfigPath)

	state := "created"
	if _, err := fsys.Stat(path); err == nil {
		if !opts.Force {
			return errors.NewWithDetails(errors.EEventConfigExists, "event config already exists; use --force to overwrite",
				map[string]string{"config": path})
		}
		state = "overwritten"
	} else if !os.IsNotExist(err) {
		return errors.WrapWithDetails(errors.EInternal, "failed to check event config", err, map[string]string{"config": path})
	}

	if err := fs.WriteFileAtomic(fsys, path, []byte(scaffold.EventYAMLTemplate), 0o644); err != nil {
		return errors.WrapWithDetails(errors.EPersistFailed, "failed to write event config", err, map[string]string{"config": path})
	}

	_, _ = fmt.Fprintf(stdout, "%s: %s\n", path, state)
	_, _ = fmt.Fprintln(stdout, "next: place the roster and ticket template next to it, then run `tixmail doctor`")
	return nil
}
