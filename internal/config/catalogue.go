// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"blockfix/internal/patch"

	"gopkg.in/yaml.v3"
)

// DefaultPatch is applied when no --patch flag is given.
const DefaultPatch = "photo-catalyst-duplicate"

var ErrPatchNotFound = errors.New("patch not found")

//go:embed builtin.yaml
var builtinYAML []byte

// patchFile is the on-disk layout shared by builtin.yaml and --patches files.
type patchFile struct {
	Patches []patch.Patch `yaml:"patches"`
}

func parsePatches(data []byte, source string) ([]patch.Patch, error) {
	var f patchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse patches from %s: %w", source, err)
	}
	for _, p := range f.Patches {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid patch in %s: %w", source, err)
		}
	}
	return f.Patches, nil
}

// Builtin returns the patches embedded in the binary.
func Builtin() ([]patch.Patch, error) {
	return parsePatches(builtinYAML, "builtin catalogue")
}

// LoadPatchFile reads a standalone YAML patch catalogue.
func LoadPatchFile(path string) ([]patch.Patch, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch file %s: %w", resolved, err)
	}
	return parsePatches(data, resolved)
}

// Catalogue is the merged, name-indexed set of known patches.
type Catalogue struct {
	patches map[string]patch.Patch
	order   []string
}

// NewCatalogue merges the given sources. A patch in a later source
// replaces an earlier one with the same name.
func NewCatalogue(sources ...[]patch.Patch) *Catalogue {
	c := &Catalogue{patches: make(map[string]patch.Patch)}
	for _, src := range sources {
		for _, p := range src {
			if _, exists := c.patches[p.Name]; !exists {
				c.order = append(c.order, p.Name)
			}
			c.patches[p.Name] = p
		}
	}
	return c
}

// LoadCatalogue builds the catalogue from the builtin patches, the user
// config and, if extraFile is non-empty, a --patches file.
func LoadCatalogue(cfg Config, extraFile string) (*Catalogue, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.Patches {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid patch in config: %w", err)
		}
	}
	sources := [][]patch.Patch{builtin, cfg.Patches}
	if extraFile != "" {
		extra, err := LoadPatchFile(extraFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, extra)
	}
	return NewCatalogue(sources...), nil
}

// Lookup returns the patch called name.
func (c *Catalogue) Lookup(name string) (patch.Patch, error) {
	p, ok := c.patches[name]
	if !ok {
		return patch.Patch{}, fmt.Errorf("%w: %s", ErrPatchNotFound, name)
	}
	return p, nil
}

// All returns patches in the order they were first defined.
func (c *Catalogue) All() []patch.Patch {
	out := make([]patch.Patch, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.patches[name])
	}
	return out
}

// Names returns the sorted patch names that start with prefix.
func (c *Catalogue) Names(prefix string) []string {
	var names []string
	for _, name := range c.order {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
