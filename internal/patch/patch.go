// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package patch implements the text operation at the heart of blockfix:
// locating a fixed block of text in a file and removing it while leaving
// every other byte untouched.
package patch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNoBlock    = errors.New("patch defines neither a block nor a pattern")
	ErrAmbiguous  = errors.New("patch defines both a block and a pattern")
	ErrEmptyMatch = errors.New("pattern matches the empty string")
)

// Patch describes a block of text to remove from a file.
type Patch struct {
	// Name is the unique identifier used on the command line
	Name string `yaml:"name" json:"name"`

	// Description is a short human readable summary
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Path is the default target used when none is given explicitly
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Block is matched literally
	Block string `yaml:"block,omitempty" json:"block,omitempty"`

	// Pattern is an RE2 expression, used when Block is empty
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Count caps how many occurrences are removed: 0 means the first one
	// only, a negative value means all of them.
	Count int `yaml:"count,omitempty" json:"count,omitempty"`
}

// Match is one occurrence of a patch inside some content.
// Start and End are byte offsets; lines are 1-based.
type Match struct {
	Start     int `json:"start"`
	End       int `json:"end"`
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Validate reports whether the patch can be compiled and applied.
func (p Patch) Validate() error {
	if p.Name == "" {
		return errors.New("patch name is required")
	}
	_, err := p.Compile()
	return err
}

// Compile turns the patch into the expression used for matching.
func (p Patch) Compile() (*regexp.Regexp, error) {
	var expr string
	switch {
	case p.Block != "" && p.Pattern != "":
		return nil, fmt.Errorf("patch %q: %w", p.Name, ErrAmbiguous)
	case p.Block != "":
		expr = regexp.QuoteMeta(p.Block)
	case p.Pattern != "":
		expr = p.Pattern
	default:
		return nil, fmt.Errorf("patch %q: %w", p.Name, ErrNoBlock)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("patch %q: invalid pattern: %w", p.Name, err)
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("patch %q: %w", p.Name, ErrEmptyMatch)
	}
	return re, nil
}

func (p Patch) limit() int {
	switch {
	case p.Count == 0:
		return 1
	case p.Count < 0:
		return -1
	default:
		return p.Count
	}
}

// Find returns the occurrences Apply would remove, in order.
func (p Patch) Find(content []byte) ([]Match, error) {
	re, err := p.Compile()
	if err != nil {
		return nil, err
	}

	locs := re.FindAllIndex(content, p.limit())
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		first, last := lineSpan(content, loc[0], loc[1])
		matches = append(matches, Match{
			Start:     loc[0],
			End:       loc[1],
			StartLine: first,
			EndLine:   last,
		})
	}
	return matches, nil
}

// lineSpan reports the lines holding the visible part of content[start:end].
// Newlines at either edge of the span belong to neighbouring lines.
func lineSpan(content []byte, start, end int) (int, int) {
	s, e := start, end
	for s < e && content[s] == '\n' {
		s++
	}
	for e > s && content[e-1] == '\n' {
		e--
	}
	first := bytes.Count(content[:s], []byte{'\n'}) + 1
	if s == e {
		return first, first
	}
	return first, bytes.Count(content[:e-1], []byte{'\n'}) + 1
}

// Apply removes the matched occurrences from content. The returned slice
// is always a fresh copy; content is never modified.
func (p Patch) Apply(content []byte) ([]byte, int, error) {
	matches, err := p.Find(content)
	if err != nil {
		return nil, 0, err
	}
	return cut(content, matches), len(matches), nil
}

func cut(content []byte, matches []Match) []byte {
	out := make([]byte, 0, len(content))
	last := 0
	for _, m := range matches {
		out = append(out, content[last:m.Start]...)
		last = m.End
	}
	return append(out, content[last:]...)
}

// Store reads and writes whole files. Implementations live in the target
// package.
type Store interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
}

// Result summarises one run of a patch against one target.
type Result struct {
	Patch   string  `json:"patch"`
	Target  string  `json:"target"`
	Matches []Match `json:"matches"`
	Removed int     `json:"removed"`
	Changed bool    `json:"changed"`
	DryRun  bool    `json:"dry_run"`
	Before  int     `json:"before_bytes"`
	After   int     `json:"after_bytes"`
}

// Run reads target through store, removes the block and writes the result
// back. Nothing is written when there is no match or dryRun is set.
func (p Patch) Run(ctx context.Context, store Store, target string, dryRun bool) (Result, error) {
	res := Result{Patch: p.Name, Target: target, DryRun: dryRun}

	content, err := store.ReadFile(ctx, target)
	if err != nil {
		return res, fmt.Errorf("failed to read %s: %w", target, err)
	}
	res.Before = len(content)

	matches, err := p.Find(content)
	if err != nil {
		return res, err
	}
	res.Matches = matches
	res.Removed = len(matches)
	res.After = res.Before
	if len(matches) == 0 {
		return res, nil
	}

	out := cut(content, matches)
	res.After = len(out)
	res.Changed = true
	if dryRun {
		return res, nil
	}

	if err := store.WriteFile(ctx, target, out); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", target, err)
	}
	return res, nil
}

// Excerpt returns the text of a match.
func Excerpt(content []byte, m Match) string {
	return string(content[m.Start:m.End])
}
