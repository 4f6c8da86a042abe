// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ssh

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"blockfix/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuthMethods(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	methods, err := getAuthMethods(config.SSHHost{Name: "web", Password: "secret"})
	require.NoError(t, err)
	assert.Len(t, methods, 1)

	methods, err = getAuthMethods(config.SSHHost{Name: "web"})
	require.NoError(t, err)
	assert.Empty(t, methods)

	_, err = getAuthMethods(config.SSHHost{Name: "web", KeyPath: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "id_bad")
	require.NoError(t, os.WriteFile(bad, []byte("not a key"), 0600))
	_, err = getAuthMethods(config.SSHHost{Name: "web", KeyPath: bad})
	assert.Error(t, err)
}

func TestHostKeyCallbackWithoutKnownHosts(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cb, err := createHostKeyCallback()
	require.NoError(t, err)
	assert.NotNil(t, cb)
}

func TestRunWithoutAuthFails(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	m := NewManager()
	defer m.CloseAll()

	_, err := m.Run(context.Background(), config.SSHHost{Name: "web", Hostname: "127.0.0.1", User: "deploy"}, "true", nil)
	assert.ErrorContains(t, err, "no suitable authentication method")
}
