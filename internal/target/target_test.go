// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package target

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"blockfix/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hosts = []config.SSHHost{
	{Name: "web", Hostname: "10.0.0.2", User: "deploy"},
	{Name: "old", Hostname: "10.0.0.9", User: "deploy", Disabled: true},
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		path     string
		server   string
		isRemote bool
	}{
		{"App.tsx", "App.tsx", "local", false},
		{"web:/srv/app/App.tsx", "/srv/app/App.tsx", "web", true},
		{"web:~/app/App.tsx", "~/app/App.tsx", "web", true},
		{"old:/srv/App.tsx", "old:/srv/App.tsx", "local", false},
		{"unknown:App.tsx", "unknown:App.tsx", "local", false},
		{"C:\\src\\App.tsx", "C:\\src\\App.tsx", "local", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, hosts)
			require.NoError(t, err)
			assert.Equal(t, tt.path, got.Path)
			assert.Equal(t, tt.server, got.ServerName())
			assert.Equal(t, tt.isRemote, got.IsRemote())
		})
	}

	_, err := Parse("", hosts)
	assert.Error(t, err)
	_, err = Parse("web:", hosts)
	assert.Error(t, err)
}

func TestTargetString(t *testing.T) {
	tgt, err := Parse("web:/srv/App.tsx", hosts)
	require.NoError(t, err)
	assert.Equal(t, "web:/srv/App.tsx", tgt.String())
}

func TestLocalWritePreservesMode(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "App.tsx")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0600))

	var store Local
	require.NoError(t, store.WriteFile(ctx, path, []byte("after")))

	data, err := store.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "after", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestLocalReadMissing(t *testing.T) {
	_, err := Local{}.ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.tsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type call struct {
	host  string
	cmd   string
	stdin string
}

type fakeRunner struct {
	calls  []call
	output []byte
	err    error
}

func (f *fakeRunner) Run(_ context.Context, host config.SSHHost, cmd string, stdin io.Reader) ([]byte, error) {
	c := call{host: host.Name, cmd: cmd}
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		c.stdin = string(data)
	}
	f.calls = append(f.calls, c)
	return f.output, f.err
}

func TestRemoteStore(t *testing.T) {
	ctx := context.Background()
	tgt, err := Parse("web:/srv/my app/App.tsx", hosts)
	require.NoError(t, err)

	runner := &fakeRunner{output: []byte("content")}
	store, err := tgt.Store(runner)
	require.NoError(t, err)

	data, err := store.ReadFile(ctx, tgt.Path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, store.WriteFile(ctx, tgt.Path, []byte("patched")))

	require.Len(t, runner.calls, 2)
	assert.Equal(t, call{host: "web", cmd: "cat -- '/srv/my app/App.tsx'"}, runner.calls[0])
	assert.Equal(t, call{host: "web", cmd: "cat > '/srv/my app/App.tsx'", stdin: "patched"}, runner.calls[1])
}

func TestRemoteStoreErrors(t *testing.T) {
	tgt, err := Parse("web:/srv/App.tsx", hosts)
	require.NoError(t, err)

	_, err = tgt.Store(nil)
	assert.Error(t, err)

	boom := errors.New("boom")
	store, err := tgt.Store(&fakeRunner{err: boom})
	require.NoError(t, err)
	_, err = store.ReadFile(context.Background(), tgt.Path)
	assert.ErrorIs(t, err, boom)
}

func TestLocalStoreForLocalTarget(t *testing.T) {
	tgt, err := Parse("App.tsx", hosts)
	require.NoError(t, err)
	store, err := tgt.Store(nil)
	require.NoError(t, err)
	assert.IsType(t, Local{}, store)
}

func TestKey(t *testing.T) {
	dir := t.TempDir()
	app := filepath.Join(dir, "App.tsx")
	require.NoError(t, os.WriteFile(app, []byte("x"), 0644))
	require.NoError(t, os.Symlink(app, filepath.Join(dir, "link.tsx")))
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	want := Target{Path: app}.Key()
	for _, id := range []string{"App.tsx", "./App.tsx", dir + "/../" + filepath.Base(dir) + "/App.tsx", "link.tsx"} {
		tgt, err := Parse(id, hosts)
		require.NoError(t, err)
		assert.Equal(t, want, tgt.Key(), id)
	}

	a, err := Parse("web:/srv/./app//App.tsx", hosts)
	require.NoError(t, err)
	b, err := Parse("web:/srv/app/App.tsx", hosts)
	require.NoError(t, err)
	assert.Equal(t, b.Key(), a.Key())
	assert.NotEqual(t, want, b.Key())
}

func TestLocalWriteFollowsSymlink(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "App.tsx")
	link := filepath.Join(dir, "link.tsx")
	require.NoError(t, os.WriteFile(file, []byte("before"), 0640))
	require.NoError(t, os.Symlink(file, link))

	var store Local
	require.NoError(t, store.WriteFile(ctx, link, []byte("after")))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link replaced by a regular file")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "after", string(data))

	info, err = os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}
