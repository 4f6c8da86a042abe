// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package target resolves the files a patch is applied to. A target is
// either a local path or a file on a configured SSH host, written as
// host:path.
package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"blockfix/internal/config"
	"blockfix/internal/patch"
)

// Target is a parsed target identifier.
type Target struct {
	Path string
	Host *config.SSHHost // nil for local files
}

func (t Target) IsRemote() bool {
	return t.Host != nil
}

// ServerName is "local" or the name of the remote host.
func (t Target) ServerName() string {
	if t.Host == nil {
		return "local"
	}
	return t.Host.Name
}

func (t Target) String() string {
	if t.Host == nil {
		return t.Path
	}
	return t.Host.Name + ":" + t.Path
}

// Key identifies the underlying file, so differently spelled identifiers
// for one file compare equal. Local paths are made absolute with symlinks
// resolved where possible; remote paths are cleaned.
func (t Target) Key() string {
	if t.Host != nil {
		return t.Host.Name + ":" + path.Clean(t.Path)
	}
	p, err := config.ResolvePath(t.Path)
	if err != nil {
		return filepath.Clean(t.Path)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if linked, err := filepath.EvalSymlinks(p); err == nil {
		p = linked
	}
	return p
}

// Parse interprets identifier against the configured hosts. The host:path
// form is only recognised when host names an enabled host; anything else
// is treated as a local path.
func Parse(identifier string, hosts []config.SSHHost) (Target, error) {
	if identifier == "" {
		return Target{}, errors.New("empty target")
	}

	if name, path, ok := strings.Cut(identifier, ":"); ok && name != "" {
		for i := range hosts {
			if hosts[i].Name != name || hosts[i].Disabled {
				continue
			}
			if path == "" {
				return Target{}, fmt.Errorf("target %q has no path after the host name", identifier)
			}
			host := hosts[i]
			return Target{Path: path, Host: &host}, nil
		}
	}

	return Target{Path: identifier}, nil
}

// Runner executes a command on a remote host. *ssh.Manager implements it.
type Runner interface {
	Run(ctx context.Context, host config.SSHHost, cmd string, stdin io.Reader) ([]byte, error)
}

// Store returns the store that reads and writes this target.
func (t Target) Store(runner Runner) (patch.Store, error) {
	if t.Host == nil {
		return Local{}, nil
	}
	if runner == nil {
		return nil, fmt.Errorf("no ssh connection available for %s", t)
	}
	return &Remote{Host: *t.Host, Runner: runner}, nil
}
