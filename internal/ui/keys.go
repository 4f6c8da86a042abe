// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the confirmation prompt.
type KeyMap struct {
	Up     key.Binding // Scroll up
	Down   key.Binding // Scroll down
	PgUp   key.Binding // Page up
	PgDown key.Binding // Page down
	Yes    key.Binding // Apply the patch
	No     key.Binding // Skip the patch
	Quit   key.Binding // Skip and stop
}

// DefaultKeyMap provides the default keybindings.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PgUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PgDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "remove"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "skip"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

// footerBindings are shown in the prompt footer, in order.
func (k KeyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.Up, k.Down, k.Quit}
}
