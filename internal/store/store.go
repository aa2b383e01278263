// Package store persists the roster, the two outcome ledgers and the
// observational snapshot. Ledger files are written atomically via temp
// file + rename; the sqlite variant replaces a ledger in one transaction.
package store

import (
	"fmt"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// Store handles persistence of roster, ledgers and snapshot for one event.
type Store struct {
	FS fs.FS // filesystem interface for stubbing

	cfg     config.Event
	backend Backend
}

// NewStore creates a Store for the resolved event config. The ledger
// backend follows cfg.LedgerFormat().
func NewStore(filesystem fs.FS, cfg config.Event) *Store {
	return &Store{
		FS:      filesystem,
		cfg:     cfg,
		backend: newBackend(filesystem, cfg),
	}
}

func newBackend(filesystem fs.FS, cfg config.Event) Backend {
	paths := map[Kind]string{
		KindSuccess: cfg.Ledger.Success,
		KindFailure: cfg.Ledger.Failure,
	}
	switch cfg.LedgerFormat() {
	case config.FormatXLSX:
		return &fileBackend{fsys: filesystem, paths: paths, codec: xlsxCodec{}}
	case config.FormatJSON:
		return &fileBackend{fsys: filesystem, paths: paths, codec: jsonCodec{}}
	case config.FormatSQLite:
		return newSQLiteBackend(cfg.Ledger.Success, cfg.Ledger.Failure)
	default:
		return &fileBackend{fsys: filesystem, paths: paths, codec: csvCodec{}}
	}
}

// Close releases backend resources (the sqlite handle).
func (s *Store) Close() error {
	return s.backend.Close()
}

// LedgerPath returns the configured path of a ledger.
func (s *Store) LedgerPath(kind Kind) string {
	if kind == KindSuccess {
		return s.cfg.Ledger.Success
	}
	return s.cfg.Ledger.Failure
}

// LoadLedger reads one ledger. A missing ledger is empty, not an error.
// A ledger that exists but cannot be parsed returns E_LEDGER_CORRUPT and
// must never be treated as empty.
func (s *Store) LoadLedger(kind Kind) ([]core.LedgerEntry, error) {
	entries, _, err := s.backend.Load(kind)
	if err != nil {
		details := map[string]string{
			"ledger": string(kind),
			"path":   s.LedgerPath(kind),
			"format": s.cfg.LedgerFormat(),
		}
		if se, ok := err.(*schemaError); ok {
			if se.Row > 0 {
				details["row"] = fmt.Sprint(se.Row)
			}
			if se.Column != "" {
				details["column"] = se.Column
			}
		}
		return nil, errors.WrapWithDetails(errors.ELedgerCorrupt,
			fmt.Sprintf("%s ledger is corrupt: %v", kind, err), err, details)
	}
	return entries, nil
}

// Ledgers holds both ledgers as loaded at the start of a run.
type Ledgers struct {
	Success []core.LedgerEntry
	Failure []core.LedgerEntry
}

// LoadLedgers reads the success and then the failure ledger.
func (s *Store) LoadLedgers() (Ledgers, error) {
	success, err := s.LoadLedger(KindSuccess)
	if err != nil {
		return Ledgers{}, err
	}
	failure, err := s.LoadLedger(KindFailure)
	if err != nil {
		return Ledgers{}, err
	}
	return Ledgers{Success: success, Failure: failure}, nil
}

// Index answers ledger membership questions by normalised email.
func (l Ledgers) Index() *Index {
	idx := &Index{
		succeeded: make(map[string]core.LedgerEntry, len(l.Success)),
		failed:    make(map[string]core.LedgerEntry, len(l.Failure)),
	}
	for _, e := range l.Success {
		idx.succeeded[e.Key()] = e
	}
	for _, e := range l.Failure {
		idx.failed[e.Key()] = e
	}
	return idx
}

// Index is a read-only membership view over both ledgers.
type Index struct {
	succeeded map[string]core.LedgerEntry
	failed    map[string]core.LedgerEntry
}

// AlreadyProcessed reports whether email appears in either ledger.
func (i *Index) AlreadyProcessed(email string) bool {
	return i.Succeeded(email) || i.Failed(email)
}

// Succeeded reports whether email appears in the success ledger.
func (i *Index) Succeeded(email string) bool {
	_, ok := i.succeeded[core.EmailKey(email)]
	return ok
}

// Failed reports whether email appears in the failure ledger.
func (i *Index) Failed(email string) bool {
	_, ok := i.failed[core.EmailKey(email)]
	return ok
}

// Lookup returns the ledger entry recorded for email, preferring the
// success ledger.
func (i *Index) Lookup(email string) (core.LedgerEntry, bool) {
	return i.lookupKey(core.EmailKey(email))
}

// LookupParticipant is Lookup by participant identity, which also finds
// entries recorded for rows without an email.
func (i *Index) LookupParticipant(p core.Participant) (core.LedgerEntry, bool) {
	return i.lookupKey(p.Key())
}

func (i *Index) lookupKey(key string) (core.LedgerEntry, bool) {
	if e, ok := i.succeeded[key]; ok {
		return e, true
	}
	e, ok := i.failed[key]
	return e, ok
}

// Persist atomically overwrites a ledger with the full merged collection.
// Returns E_PERSIST_FAILED on any write error; the previous ledger stays
// intact in that case.
func (s *Store) Persist(kind Kind, entries []core.LedgerEntry) error {
	if err := s.backend.Save(kind, entries); err != nil {
		return errors.WrapWithDetails(errors.EPersistFailed,
			fmt.Sprintf("failed to persist %s ledger", kind), err,
			map[string]string{"ledger": string(kind), "path": s.LedgerPath(kind)})
	}
	return nil
}

// PersistLedgers writes the success ledger first, then the failure ledger.
// A delivered ticket recorded before a failed second write cannot be resent.
func (s *Store) PersistLedgers(l Ledgers) error {
	if err := s.Persist(KindSuccess, l.Success); err != nil {
		return err
	}
	return s.Persist(KindFailure, l.Failure)
}
