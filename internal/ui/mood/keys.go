// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mood

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the mood screen. Printable keys
// always go to the prompt, so every action sits on a control key.
type KeyMap struct {
	NextChip  key.Binding
	PrevChip  key.Binding
	Accept    key.Binding
	Clear     key.Binding
	Themes    key.Binding
	Up        key.Binding
	Down      key.Binding
	SaveTheme key.Binding
	PlayPause key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextChip: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next mood word"),
		),
		PrevChip: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous mood word"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "add word / generate now"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Themes: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "saved themes"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+k"),
			key.WithHelp("up", "previous theme"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+j"),
			key.WithHelp("down", "next theme"),
		),
		SaveTheme: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save theme"),
		),
		PlayPause: key.NewBinding(
			key.WithKeys("ctrl+p", "ctrl+@"),
			key.WithHelp("C-p", "play/pause"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.SaveTheme, k.Themes, k.Help, k.Quit}
}

// FullHelp returns the bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextChip, k.PrevChip, k.Accept, k.Clear},
		{k.Themes, k.Up, k.Down},
		{k.PlayPause, k.SaveTheme, k.Help, k.Quit},
	}
}
