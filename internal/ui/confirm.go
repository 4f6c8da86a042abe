// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package ui implements the interactive confirmation shown by
// `blockfix apply --interactive`.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Choice is the outcome of a confirmation prompt.
type Choice int

const (
	Undecided Choice = iota
	Accept
	Skip
	Abort
)

// chrome is the number of terminal rows taken by the title and footer.
const chrome = 4

// ConfirmModel asks whether one block should be removed.
type ConfirmModel struct {
	title    string
	body     string
	keys     KeyMap
	viewport viewport.Model
	ready    bool
	choice   Choice
}

func NewConfirmModel(title, body string) ConfirmModel {
	return ConfirmModel{title: title, body: body, keys: DefaultKeyMap}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chrome, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.body)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.choice = Accept
			return m, tea.Quit
		case key.Matches(msg, m.keys.No):
			m.choice = Skip
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit):
			m.choice = Abort
			return m, tea.Quit
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConfirmModel) View() string {
	if !m.ready {
		return titleStyle.Render(m.title) + "\n\n" + m.body
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", titleStyle.Render(m.title), m.viewport.View(), m.footer())
}

func (m ConfirmModel) footer() string {
	var parts []string
	for _, b := range m.keys.footerBindings() {
		h := b.Help()
		parts = append(parts, footerKeyStyle.Render(h.Key)+" "+footerStyle.Render(h.Desc))
	}
	return strings.Join(parts, footerSeparatorStyle.Render(" | "))
}

// Choice reports what the user picked.
func (m ConfirmModel) Choice() Choice {
	return m.choice
}

// Confirm runs the prompt on the terminal and returns the user's choice.
func Confirm(title, body string) (Choice, error) {
	p := tea.NewProgram(NewConfirmModel(title, body), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Abort, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return final.(ConfirmModel).Choice(), nil
}
