// Package artifact renders the per-participant ticket (PNG image or PDF)
// and records a BLAKE3 digest of the written bytes.
package artifact

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// Ticket is everything printed on one artifact.
type Ticket struct {
	Participant core.Participant
	Token       int
	Event       config.EventInfo
}

// Artifact is a rendered ticket on disk.
type Artifact struct {
	Path   string
	Digest string // hex BLAKE3-256 of the file content
}

// Renderer produces a ticket artifact. Rendering has no side effects other
// than writing the artifact file.
type Renderer interface {
	Render(ctx context.Context, t Ticket) (Artifact, error)
}

// New returns the renderer selected by spec.Kind.
func New(fsys fs.FS, spec config.ArtifactSpec, logger *slog.Logger) (Renderer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch spec.Kind {
	case config.ArtifactImage:
		return &ImageRenderer{FS: fsys, Spec: spec, Logger: logger}, nil
	case config.ArtifactPDF:
		return &PDFRenderer{FS: fsys, Spec: spec, Logger: logger}, nil
	}
	return nil, fmt.Errorf("unknown artifact kind %q", spec.Kind)
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Path returns where the artifact for name is written under outputDir.
func Path(outputDir, name, ext string) string {
	return filepath.Join(outputDir, core.ArtifactName(name, ext))
}

// Ext returns the file extension used for kind.
func Ext(kind string) string {
	if kind == config.ArtifactPDF {
		return ".pdf"
	}
	return ".png"
}

// SpecPath returns where the ticket for name lands under spec.
func SpecPath(spec config.ArtifactSpec, name string) string {
	return Path(spec.OutputDir, name, Ext(spec.Kind))
}

// IsTicketFile reports whether a file name looks like a rendered ticket.
func IsTicketFile(name string) bool {
	ext := filepath.Ext(name)
	if ext != ".png" && ext != ".pdf" {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(name, ext), core.ArtifactSuffix)
}

// write publishes data atomically and returns the artifact record.
func write(fsys fs.FS, path string, data []byte) (Artifact, error) {
	if err := fs.WriteFileAtomic(fsys, path, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write artifact: %w", err)
	}
	return Artifact{Path: path, Digest: Digest(data)}, nil
}
