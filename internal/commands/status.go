package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
	"github.com/NielsdaWheelz/tixmail/internal/render"
	"github.com/NielsdaWheelz/tixmail/internal/store"
)

// StatusOpts holds options for the status command.
type StatusOpts struct {
	ConfigPath string
	JSON       bool
}

// Status implements `tixmail status`: the roster joined with both ledgers.
// Read-only; a missing ledger shows every participant as pending.
func Status(ctx context.Context, fsys fs.FS, opts StatusOpts, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger = discardLogger(logger)

	cfg, err := loadEvent(fsys, opts.ConfigPath, logger)
	if err != nil {
		return err
	}
	records, err := loadRecords(fsys, cfg)
	if err != nil {
		return err
	}

	if opts.JSON {
		return render.WriteStatusJSON(stdout, records)
	}
	return render.WriteStatusHuman(stdout, render.FormatStatusRows(records))
}

// loadRecords builds the current per-participant view without running.
// Artifact paths are filled in for tickets present on disk.
func loadRecords(fsys fs.FS, cfg config.Event) ([]store.SnapshotRecord, error) {
	st := store.NewStore(fsys, cfg)
	defer func() { _ = st.Close() }()

	roster, err := st.LoadRoster()
	if err != nil {
		return nil, err
	}
	ledgers, err := st.LoadLedgers()
	if err != nil {
		return nil, err
	}

	records := store.BuildSnapshot(roster, ledgers, nil)
	for i := range records {
		if records[i].Status == store.SnapshotPending {
			continue
		}
		records[i].Artifact = existingArtifact(fsys, cfg, records[i].Name)
	}
	return records, nil
}
