// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blockfix/internal/patch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadConfigMissingFile(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Patches)
	assert.Empty(t, cfg.SSHHosts)
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := useTempConfigDir(t)

	cfg := Config{
		Patches: []patch.Patch{{Name: "logs", Pattern: `console\.log\(.*\);\n`, Count: -1}},
	}
	require.NoError(t, cfg.AddHost(SSHHost{Name: "web", Hostname: "10.0.0.2", User: "deploy"}))
	require.NoError(t, SaveConfig(cfg))

	_, err := os.Stat(filepath.Join(dir, "blockfix", "config.yaml"))
	require.NoError(t, err)

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := useTempConfigDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blockfix"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blockfix", "config.yaml"), []byte("ssh_hosts: [:"), 0640))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestHosts(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.AddHost(SSHHost{Name: "a", Hostname: "a.example"}))
	require.NoError(t, cfg.AddHost(SSHHost{Name: "b", Hostname: "b.example", Disabled: true}))

	assert.Error(t, cfg.AddHost(SSHHost{Name: "a"}), "duplicate")
	assert.Error(t, cfg.AddHost(SSHHost{Name: "bad:name"}))
	assert.Error(t, cfg.AddHost(SSHHost{}))

	enabled := cfg.EnabledHosts()
	require.Len(t, enabled, 1)
	assert.Equal(t, "a", enabled[0].Name)
	assert.Len(t, cfg.SSHHosts, 2, "EnabledHosts must not modify the config")

	require.NoError(t, cfg.RemoveHost("a"))
	assert.ErrorIs(t, cfg.RemoveHost("a"), ErrHostNotFound)
	assert.Len(t, cfg.SSHHosts, 1)
}

func TestResolvePath(t *testing.T) {
	dir := useTempConfigDir(t)

	p, err := ResolvePath("~/src/App.tsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "App.tsx"), p)

	p, err = ResolvePath("App.tsx")
	require.NoError(t, err)
	assert.Equal(t, "App.tsx", p)
}

func TestBuiltin(t *testing.T) {
	patches, err := Builtin()
	require.NoError(t, err)

	c := NewCatalogue(patches)
	p, err := c.Lookup(DefaultPatch)
	require.NoError(t, err)
	assert.Equal(t, "App.tsx", p.Path)
	assert.True(t, strings.HasPrefix(p.Block, "\n    // Handle Photo Catalyst completion\n"))
	assert.True(t, strings.HasSuffix(p.Block, "        }\n    };\n"))
	assert.Contains(t, p.Block, `souvenir...\n\n", 'success');`)
	assert.NotContains(t, p.Block, "souvenir...\n", "toast text keeps its escaped newlines")
	assert.Contains(t, p.Block, "analysée")
}

func TestCatalogueOverride(t *testing.T) {
	base := []patch.Patch{{Name: "a", Block: "x"}, {Name: "b", Block: "y"}}
	user := []patch.Patch{{Name: "b", Block: "z"}, {Name: "c", Block: "w"}}

	c := NewCatalogue(base, user)
	b, err := c.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "z", b.Block)

	var names []string
	for _, p := range c.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, []string{"b"}, c.Names("b"))

	_, err = c.Lookup("missing")
	assert.ErrorIs(t, err, ErrPatchNotFound)
}

func TestLoadCatalogueWithPatchFile(t *testing.T) {
	useTempConfigDir(t)
	file := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
patches:
  - name: photo-catalyst-duplicate
    path: src/App.tsx
    block: "dup\n"
  - name: trailing-debug
    pattern: "(?m)^debugger;\n"
`), 0644))

	c, err := LoadCatalogue(Config{}, file)
	require.NoError(t, err)

	p, err := c.Lookup(DefaultPatch)
	require.NoError(t, err)
	assert.Equal(t, "src/App.tsx", p.Path)
	assert.Equal(t, "dup\n", p.Block)

	_, err = c.Lookup("trailing-debug")
	assert.NoError(t, err)
}

func TestLoadPatchFileRejectsInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("patches:\n  - name: empty\n"), 0644))

	_, err := LoadPatchFile(file)
	assert.ErrorIs(t, err, patch.ErrNoBlock)
}

func TestDecodeSSHConfig(t *testing.T) {
	home := useTempConfigDir(t)
	hosts, err := DecodeSSHConfig(strings.NewReader(`
Host *
  ServerAliveInterval 30

Host web
  HostName 10.0.0.2
  User deploy
  Port 2222
  IdentityFile ~/.ssh/web_ed25519

Host nouser
  HostName 10.0.0.3

Host *.internal
  User ops
`))
	require.NoError(t, err)
	require.Len(t, hosts, 1)

	web, ok := FindPotentialHost(hosts, "web")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.2", web.Hostname)
	assert.Equal(t, 2222, web.Port)
	assert.Equal(t, filepath.Join(home, ".ssh", "web_ed25519"), web.KeyPath)

	host, err := ConvertToSSHHost(web, "")
	require.NoError(t, err)
	assert.Equal(t, "web", host.Name)
	assert.Equal(t, "deploy", host.User)
}
