// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	return root
}

func TestFindFiles(t *testing.T) {
	root := makeTree(t,
		"App.tsx",
		"components/Card.TSX",
		"components/style.css",
		"node_modules/react/index.js",
		"services/api.ts",
		".git/HEAD",
	)

	files, err := FindFiles(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "App.tsx"),
		filepath.Join(root, "components", "Card.TSX"),
		filepath.Join(root, "services", "api.ts"),
	}, files)

	files, err = FindFiles(root, []string{"css"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "components", "style.css")}, files)
}

func TestFindFilesMissingRoot(t *testing.T) {
	_, err := FindFiles(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	root := makeTree(t, "a.ts", "b.ts")

	out, err := Expand([]string{"web:/srv/App.tsx", root, "single.tsx"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"web:/srv/App.tsx",
		filepath.Join(root, "a.ts"),
		filepath.Join(root, "b.ts"),
		"single.tsx",
	}, out)
}

func TestExpandEmptyDirectory(t *testing.T) {
	empty := makeTree(t, "notes.md")

	_, err := Expand([]string{empty}, nil)
	assert.ErrorIs(t, err, ErrNoFiles)

	other := makeTree(t, "a.ts")
	out, err := Expand([]string{empty, other}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(other, "a.ts")}, out)

	out, err = Expand(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
