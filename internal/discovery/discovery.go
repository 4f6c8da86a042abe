// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package discovery expands local directory targets into the source files
// beneath them, so a patch can be checked or applied across a whole tree.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"blockfix/internal/logger"
)

// ErrNoFiles is returned by Expand when targets were given but every one of
// them was a directory without matching files.
var ErrNoFiles = errors.New("no matching files in the given targets")

// DefaultExtensions are scanned when no extension filter is given.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
}

// IsDir reports whether path names an existing local directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FindFiles walks root and returns the regular files whose extension is in
// exts (case-insensitive), sorted. Unreadable subdirectories are logged and
// skipped.
func FindFiles(root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	want := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want = append(want, e)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if slices.Contains(want, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}

// Expand replaces every identifier naming a local directory with the files
// found beneath it. Other identifiers, including host:path targets, pass
// through unchanged. A non-empty identifier list never expands to nothing:
// ErrNoFiles is returned instead.
func Expand(identifiers []string, exts []string) ([]string, error) {
	var out []string
	for _, id := range identifiers {
		if !IsDir(id) {
			out = append(out, id)
			continue
		}
		files, err := FindFiles(id, exts)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			logger.Warn("no matching files in directory", "dir", id)
		}
		out = append(out, files...)
	}
	if len(identifiers) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(identifiers, ", "))
	}
	return out, nil
}
