// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package util holds small helpers shared by the remote target code.
package util

import "strings"

// QuoteArgForShell single-quotes arg for a POSIX shell. A leading "~/" is
// left outside the quotes so the remote shell still expands it.
func QuoteArgForShell(arg string) string {
	if rest, ok := strings.CutPrefix(arg, "~/"); ok {
		return `~/` + quote(rest)
	}
	return quote(arg)
}

func quote(s string) string {
	return `'` + strings.ReplaceAll(s, "'", `'\''`) + `'`
}
