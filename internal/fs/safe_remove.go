// Package fs provides filesystem utilities for tixmail.
// This file implements guarded removal of rendered ticket artifacts.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotUnderPrefix is returned when a target path is not under the allowed prefix.
type ErrNotUnderPrefix struct {
	Target string
	Prefix string
}

func (e *ErrNotUnderPrefix) Error() string {
	return fmt.Sprintf("target %q is not under allowed prefix %q", e.Target, e.Prefix)
}

// RemoveMatching deletes the regular files directly inside dir whose base name
// satisfies match, and returns the removed paths in sorted order.
//
// dir must resolve (after symlinks) to a true subpath of allowedPrefix;
// otherwise ErrNotUnderPrefix is returned and nothing is removed.
// A missing dir is not an error. Subdirectories are never descended into.
func RemoveMatching(dir, allowedPrefix string, match func(name string) bool) ([]string, error) {
	cleanDir := filepath.Clean(dir)

	resolvedDir, err := filepath.EvalSymlinks(cleanDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ErrNotUnderPrefix{Target: dir, Prefix: allowedPrefix}
	}
	resolvedPrefix, err := filepath.EvalSymlinks(filepath.Clean(allowedPrefix))
	if err != nil {
		return nil, &ErrNotUnderPrefix{Target: dir, Prefix: allowedPrefix}
	}
	if !IsSubpath(resolvedDir, resolvedPrefix) {
		return nil, &ErrNotUnderPrefix{Target: dir, Prefix: allowedPrefix}
	}

	entries, err := os.ReadDir(resolvedDir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !match(entry.Name()) {
			continue
		}
		p := filepath.Join(cleanDir, entry.Name())
		if err := os.Remove(p); err != nil {
			sort.Strings(removed)
			return removed, err
		}
		removed = append(removed, p)
	}
	sort.Strings(removed)
	return removed, nil
}

// IsSubpath returns true if target is a proper subpath of prefix.
// Both paths should already be cleaned and resolved.
func IsSubpath(target, prefix string) bool {
	prefixWithSep := prefix
	if !strings.HasSuffix(prefixWithSep, string(filepath.Separator)) {
		prefixWithSep = prefix + string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefixWithSep) && len(target) > len(prefix)
}
