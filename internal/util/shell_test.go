// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteArgForShell(t *testing.T) {
	tests := map[string]string{
		"App.tsx":          `'App.tsx'`,
		"my app/App.tsx":   `'my app/App.tsx'`,
		"it's.tsx":         `'it'\''s.tsx'`,
		"~/src/App.tsx":    `~/'src/App.tsx'`,
		"/srv/$(rm -rf)/x": `'/srv/$(rm -rf)/x'`,
		"":                 `''`,
	}
	for in, want := range tests {
		assert.Equal(t, want, QuoteArgForShell(in), in)
	}
}
