// Package tty provides TTY detection helpers for tixmail commands.
package tty

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY returns true if the given file is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// IsInteractive returns true if both stdin and stderr are TTYs.
// This is the condition required for interactive prompts.
func IsInteractive() bool {
	return IsTTY(os.Stdin) && IsTTY(os.Stderr)
}

// IsTerminalWriter reports whether w is a file attached to a terminal.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTTY(f)
}
