// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package target

import (
	"bytes"
	"context"
	"fmt"

	"blockfix/internal/config"
	"blockfix/internal/util"
)

// Remote reads and writes files on an SSH host by streaming them through
// cat. Writing truncates the file in place so its mode and owner survive.
type Remote struct {
	Host   config.SSHHost
	Runner Runner
}

func (r *Remote) ReadFile(ctx context.Context, path string) ([]byte, error) {
	cmd := "cat -- " + util.QuoteArgForShell(path)
	data, err := r.Runner.Run(ctx, r.Host, cmd, nil)
	if err != nil {
		return nil, fmt.Errorf("reading %s:%s: %w", r.Host.Name, path, err)
	}
	return data, nil
}

func (r *Remote) WriteFile(ctx context.Context, path string, data []byte) error {
	cmd := "cat > " + util.QuoteArgForShell(path)
	if _, err := r.Runner.Run(ctx, r.Host, cmd, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s:%s: %w", r.Host.Name, path, err)
	}
	return nil
}
