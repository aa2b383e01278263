package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/NielsdaWheelz/tixmail/internal/core"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS ledger_entries (
  kind          TEXT    NOT NULL,
  position      INTEGER NOT NULL,
  name          TEXT    NOT NULL,
  email         TEXT    NOT NULL,
  university_id TEXT    NOT NULL DEFAULT '',
  year          TEXT    NOT NULL DEFAULT '',
  token         INTEGER,
  status        TEXT    NOT NULL,
  reason        TEXT    NOT NULL DEFAULT '',
  PRIMARY KEY (kind, position)
)`

// sqliteBackend keeps both ledgers as rows of one table, keyed by kind.
// The database is opened lazily: loading a ledger that was never written
// does not create the file.
type sqliteBackend struct {
	paths map[Kind]string
	dbs   map[string]*sql.DB
}

func newSQLiteBackend(success, failure string) *sqliteBackend {
	return &sqliteBackend{
		paths: map[Kind]string{KindSuccess: success, KindFailure: failure},
		dbs:   make(map[string]*sql.DB),
	}
}

func (b *sqliteBackend) open(path string) (*sql.DB, error) {
	if db, ok := b.dbs[path]; ok {
		return db, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	b.dbs[path] = db
	return db, nil
}

func (b *sqliteBackend) Load(kind Kind) ([]core.LedgerEntry, bool, error) {
	path := b.paths[kind]
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return []core.LedgerEntry{}, false, nil
		}
		return nil, true, err
	}

	db, err := b.open(path)
	if err != nil {
		return nil, true, err
	}

	rows, err := db.Query(
		`SELECT name, email, university_id, year, token, status, reason
		   FROM ledger_entries
		  WHERE kind = ?
		  ORDER BY position`,
		string(kind),
	)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, true, &schemaError{Msg: "database has no ledger_entries table"}
		}
		return nil, true, err
	}
	defer func() { _ = rows.Close() }()

	entries := []core.LedgerEntry{}
	for rows.Next() {
		var (
			e      core.LedgerEntry
			token  sql.NullInt64
			status string
		)
		if err := rows.Scan(&e.Name, &e.Email, &e.Affiliation, &e.Cohort, &token, &status, &e.Reason); err != nil {
			return nil, true, err
		}
		if token.Valid {
			v := int(token.Int64)
			e.Token = &v
		}
		e.Status = core.Status(status)
		checked, err := checkEntry(kind, e)
		if err != nil {
			if se, ok := err.(*schemaError); ok {
				se.Row = len(entries) + 1
			}
			return nil, true, err
		}
		entries = append(entries, checked)
	}
	if err := rows.Err(); err != nil {
		return nil, true, err
	}
	return entries, true, nil
}

// Save replaces every row of kind inside one transaction, so readers see
// either the previous ledger or the new one.
func (b *sqliteBackend) Save(kind Kind, entries []core.LedgerEntry) (err error) {
	db, err := b.open(b.paths[kind])
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(sqliteSchema); err != nil {
		return err
	}
	if _, err = tx.Exec(`DELETE FROM ledger_entries WHERE kind = ?`, string(kind)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO ledger_entries (kind, position, name, email, university_id, year, token, status, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range entries {
		var token any
		if e.Token != nil {
			token = int64(*e.Token)
		}
		if _, err = stmt.Exec(string(kind), i, e.Name, e.Email, e.Affiliation, e.Cohort, token, string(e.Status), e.Reason); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (b *sqliteBackend) Close() error {
	var firstErr error
	for path, db := range b.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(b.dbs, path)
	}
	return firstErr
}
