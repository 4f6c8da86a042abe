// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package target

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"blockfix/internal/config"
)

// Local reads and writes files on this machine.
type Local struct{}

func (Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := config.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(resolved)
}

// WriteFile replaces the file through a temporary sibling and a rename,
// so readers never observe a half-written file. The original mode is kept.
// A symlink is followed and the file it points to is replaced, leaving the
// link in place. Ownership is that of the writing user.
func (Local) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resolved, err := config.ResolvePath(path)
	if err != nil {
		return err
	}
	if linked, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = linked
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(resolved); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(resolved), "."+filepath.Base(resolved)+".blockfix-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("failed to set mode on temporary file: %w", err)
	}
	return os.Rename(tmpName, resolved)
}
