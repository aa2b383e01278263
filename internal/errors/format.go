// Package errors provides error formatting for tixmail CLI output.
package errors

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// PrintOptions controls error output formatting.
type PrintOptions struct {
	// Verbose enables detailed error output with more context keys and the cause chain.
	Verbose bool
}

// Context key whitelist (default mode, in order)
var defaultContextKeys = []string{
	"op",
	"config",
	"roster",
	"ledger",
	"path",
	"email",
	"token",
	"missing",
	"host",
	"port",
}

// Additional context keys for verbose mode
var verboseContextKeys = []string{
	"op",
	"run_id",
	"config",
	"roster",
	"ledger",
	"format",
	"path",
	"row",
	"column",
	"email",
	"token",
	"missing",
	"host",
	"port",
	"tls_policy",
	"hint",
}

const (
	maxValueLen      = 256 // Max chars for single-line context values
	maxExtraValueLen = 128 // Max chars for extra section values
)

// Format formats an error for display without I/O.
func Format(err error, opts PrintOptions) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	te, ok := AsTixError(err)
	if !ok {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("error_code: ")
	sb.WriteString(string(te.Code))
	sb.WriteString("\n")

	sb.WriteString(te.Msg)
	sb.WriteString("\n")

	contextKeys := defaultContextKeys
	if opts.Verbose {
		contextKeys = verboseContextKeys
	}

	printedKeys := make(map[string]bool)
	wroteContext := false

	for _, key := range contextKeys {
		if te.Details == nil {
			continue
		}
		val, ok := te.Details[key]
		if !ok || val == "" || key == "hint" {
			continue
		}
		if !wroteContext {
			sb.WriteString("\n")
			wroteContext = true
		}
		printedKeys[key] = true
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(sanitizeValue(val, maxValueLen))
		sb.WriteString("\n")
	}

	if opts.Verbose && te.Details != nil {
		var extraKeys []string
		for key := range te.Details {
			if !printedKeys[key] && key != "hint" {
				extraKeys = append(extraKeys, key)
			}
		}
		if len(extraKeys) > 0 {
			sort.Strings(extraKeys)
			sb.WriteString("\nextra:\n")
			for _, key := range extraKeys {
				val := te.Details[key]
				if val == "" {
					continue
				}
				sb.WriteString("  ")
				sb.WriteString(key)
				sb.WriteString(": ")
				sb.WriteString(sanitizeValue(val, maxExtraValueLen))
				sb.WriteString("\n")
			}
		}
	}

	if opts.Verbose && te.Cause != nil {
		sb.WriteString("\ncause: ")
		sb.WriteString(sanitizeValue(te.Cause.Error(), maxValueLen))
		sb.WriteString("\n")
	}

	if te.Details != nil {
		if hint, ok := te.Details["hint"]; ok && hint != "" {
			sb.WriteString("\nhint: ")
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
	}

	for _, try := range deriveTryLines(te) {
		sb.WriteString("try: ")
		sb.WriteString(try)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintWithOptions writes a formatted error to w with the given options.
func PrintWithOptions(w io.Writer, err error, opts PrintOptions) {
	if err == nil {
		return
	}
	_, _ = io.WriteString(w, Format(err, opts))
}

// sanitizeValue sanitizes a value for single-line context output.
//   - Trims trailing whitespace first
//   - Normalizes CRLF to LF
//   - Replaces newlines with literal \n
//   - Truncates to maxLen chars
func sanitizeValue(val string, maxLen int) string {
	val = strings.TrimRight(val, " \t\r\n")
	val = strings.ReplaceAll(val, "\r\n", "\n")
	val = strings.ReplaceAll(val, "\n", "\\n")
	if len(val) > maxLen {
		return val[:maxLen] + "…"
	}
	return val
}

// deriveTryLines returns actionable suggestions based on error code.
func deriveTryLines(te *TixError) []string {
	if te == nil {
		return nil
	}

	var lines []string

	switch te.Code {
	case EConfigMissing:
		lines = append(lines, "tixmail doctor")
	case EInvalidEventConfig:
		if te.Details != nil && te.Details["config"] != "" {
			lines = append(lines, fmt.Sprintf("tixmail doctor --config %s", te.Details["config"]))
		} else {
			lines = append(lines, "tixmail init")
		}
	case ESessionFailed:
		lines = append(lines, "tixmail send --dry-run")
	case EPartialFailure, EInterrupted:
		lines = append(lines, "tixmail status", "tixmail send")
	case EParticipantNotFound:
		lines = append(lines, "tixmail status")
	}

	return lines
}

// FormatHint formats a hint for output.
// If hint already starts with "hint:", returns as-is.
// Otherwise prepends "hint: ".
func FormatHint(hint string) string {
	if hint == "" {
		return ""
	}
	if strings.HasPrefix(hint, "hint:") {
		return hint
	}
	return "hint: " + hint
}

// GetHint extracts the hint from an error's details, if present.
func GetHint(err error) string {
	te, ok := AsTixError(err)
	if !ok || te.Details == nil {
		return ""
	}
	return te.Details["hint"]
}
