package commands

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/NielsdaWheelz/tixmail/internal/artifact"
	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
	"github.com/NielsdaWheelz/tixmail/internal/render"
	"github.com/NielsdaWheelz/tixmail/internal/store"
)

// ShowOpts holds options for the show command. Exactly one of Token and
// Email selects the participant.
type ShowOpts struct {
	ConfigPath string
	Token      int  // valid when HasToken
	HasToken   bool // --token was given
	Email      string
	JSON       bool
}

// Show implements `tixmail show`: looks up one participant by token or email.
// Returns E_PARTICIPANT_NOT_FOUND when nothing matches.
func Show(ctx context.Context, fsys fs.FS, opts ShowOpts, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger = discardLogger(logger)

	if opts.HasToken == (opts.Email != "") {
		return errors.New(errors.EUsage, "exactly one of --token or --email is required")
	}

	cfg, err := loadEvent(fsys, opts.ConfigPath, logger)
	if err != nil {
		return err
	}
	records, err := loadRecords(fsys, cfg)
	if err != nil {
		return err
	}

	rec, ok := findRecord(records, opts)
	if !ok {
		// Ledgers can hold participants no longer on the roster
		rec, ok, err = findInLedgers(fsys, cfg, opts)
		if err != nil {
			return err
		}
	}
	if !ok {
		details := map[string]string{"email": opts.Email}
		what := "email " + opts.Email
		if opts.HasToken {
			details = map[string]string{"token": strconv.Itoa(opts.Token)}
			what = "token " + strconv.Itoa(opts.Token)
		}
		return errors.NewWithDetails(errors.EParticipantNotFound, "no participant with "+what, details)
	}

	if opts.JSON {
		return render.WriteStatusJSON(stdout, []store.SnapshotRecord{rec})
	}
	return render.WriteShowHuman(stdout, render.ShowData{
		Name:        rec.Name,
		Email:       rec.Email,
		Affiliation: rec.Affiliation,
		Cohort:      rec.Cohort,
		Token:       rec.Token,
		Status:      string(rec.Status),
		Reason:      rec.Reason,
		Artifact:    rec.Artifact,
	})
}

func findRecord(records []store.SnapshotRecord, opts ShowOpts) (store.SnapshotRecord, bool) {
	for _, r := range records {
		if matches(r.Email, r.Token, opts) {
			return r, true
		}
	}
	return store.SnapshotRecord{}, false
}

func findInLedgers(fsys fs.FS, cfg config.Event, opts ShowOpts) (store.SnapshotRecord, bool, error) {
	st := store.NewStore(fsys, cfg)
	defer func() { _ = st.Close() }()

	ledgers, err := st.LoadLedgers()
	if err != nil {
		return store.SnapshotRecord{}, false, err
	}
	for _, entries := range [][]core.LedgerEntry{ledgers.Success, ledgers.Failure} {
		for _, e := range entries {
			if !matches(e.Email, e.Token, opts) {
				continue
			}
			rec := store.SnapshotRecord{
				Name:        e.Name,
				Email:       e.Email,
				Affiliation: e.Affiliation,
				Cohort:      e.Cohort,
				Token:       e.Token,
				Status:      store.SnapshotFailed,
				Reason:      e.Reason,
				Artifact:    existingArtifact(fsys, cfg, e.Name),
			}
			if e.Status == core.StatusSent {
				rec.Status = store.SnapshotSent
				rec.EmailSent = true
			}
			return rec, true, nil
		}
	}
	return store.SnapshotRecord{}, false, nil
}

func matches(email string, token *int, opts ShowOpts) bool {
	if opts.HasToken {
		return token != nil && *token == opts.Token
	}
	return email != "" && core.EmailKey(email) == core.EmailKey(opts.Email)
}

// existingArtifact returns the ticket path for name if the file exists.
func existingArtifact(fsys fs.FS, cfg config.Event, name string) string {
	path := artifact.SpecPath(cfg.Artifact, name)
	if _, err := fsys.Stat(path); err != nil {
		return ""
	}
	return path
}
