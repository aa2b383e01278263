package config

import (
	"path/filepath"
	"strings"
	"text/template"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
)

// Ledger formats.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// ValidateEvent validates a resolved event config.
// Returns E_INVALID_EVENT_CONFIG for the first problem found.
func ValidateEvent(cfg Event) error {
	if cfg.Version != 1 {
		return errors.New(errors.EInvalidEventConfig, "version must be 1")
	}
	if cfg.BaseToken < 0 {
		return errors.New(errors.EInvalidEventConfig, "base_token must not be negative")
	}
	if cfg.Roster == "" {
		return errors.New(errors.EInvalidEventConfig, "missing required field roster")
	}
	if cfg.Ledger.Success == "" {
		return errors.New(errors.EInvalidEventConfig, "missing required field ledger.success")
	}
	if cfg.Ledger.Failure == "" {
		return errors.New(errors.EInvalidEventConfig, "missing required field ledger.failure")
	}

	format := cfg.LedgerFormat()
	switch format {
	case FormatCSV, FormatXLSX, FormatJSON:
		if cfg.Ledger.Success == cfg.Ledger.Failure {
			return errors.New(errors.EInvalidEventConfig, "ledger.success and ledger.failure must differ for "+format+" ledgers")
		}
	case FormatSQLite:
	default:
		return errors.NewWithDetails(errors.EInvalidEventConfig, "unsupported ledger format", map[string]string{
			"format": format,
			"hint":   "use csv, xlsx, json or sqlite",
		})
	}

	switch cfg.Artifact.Kind {
	case ArtifactImage:
		if cfg.Artifact.Template == "" {
			return errors.New(errors.EInvalidEventConfig, "artifact.template is required for image tickets")
		}
	case ArtifactPDF:
	default:
		return errors.NewWithDetails(errors.EInvalidEventConfig, "artifact.kind must be image or pdf", map[string]string{
			"format": cfg.Artifact.Kind,
		})
	}
	if cfg.Artifact.OutputDir == "" {
		return errors.New(errors.EInvalidEventConfig, "missing required field artifact.output_dir")
	}
	if cfg.Artifact.TitleSize <= 0 || cfg.Artifact.DetailSize <= 0 {
		return errors.New(errors.EInvalidEventConfig, "artifact font sizes must be positive")
	}

	if strings.TrimSpace(cfg.Message.Subject) == "" {
		return errors.New(errors.EInvalidEventConfig, "message.subject must not be empty")
	}
	if _, err := template.New("body").Parse(cfg.Message.Body); err != nil {
		return errors.Wrap(errors.EInvalidEventConfig, "message.body is not a valid template: "+err.Error(), err)
	}
	return nil
}

// LedgerFormat returns the configured ledger format, inferring it from the
// success ledger extension when unset.
func (e Event) LedgerFormat() string {
	if e.Ledger.Format != "" {
		return strings.ToLower(e.Ledger.Format)
	}
	switch strings.ToLower(filepath.Ext(e.Ledger.Success)) {
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatCSV
}

// FirstValidationError extracts the human-readable message from an error.
func FirstValidationError(err error) string {
	if err == nil {
		return ""
	}
	if te, ok := errors.AsTixError(err); ok {
		return te.Msg
	}
	return err.Error()
}
