// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	lineNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	removedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	blockBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	footerKeyStyle = lipgloss.NewStyle().
			Inherit(footerStyle).
			Foreground(lipgloss.Color("39"))

	footerSeparatorStyle = lipgloss.NewStyle().
				Inherit(footerStyle).
				Foreground(lipgloss.Color("240"))
)

// NumberLines renders block as removed lines numbered from firstLine.
// Newlines at the edges of block belong to the surrounding lines and are
// not shown.
func NumberLines(block string, firstLine int) string {
	block = strings.Trim(block, "\n")
	lines := strings.Split(block, "\n")
	width := len(fmt.Sprint(firstLine + len(lines) - 1))

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(lineNumberStyle.Render(fmt.Sprintf("%*d", width, firstLine+i)))
		b.WriteString(" ")
		b.WriteString(removedStyle.Render("- " + line))
	}
	return b.String()
}

// RenderBlock draws a titled, bordered box around a numbered block.
func RenderBlock(title, block string, firstLine int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		blockBoxStyle.Render(NumberLines(block, firstLine)),
	)
}
