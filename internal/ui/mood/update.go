// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mood

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SehejGit/lofi-hack/internal/logger"
	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		cmd := m.applySnapshot(msg.Snapshot)
		return m, tea.Batch(cmd, m.waitForChange())

	case ThemesLoadedMsg:
		if msg.Err != nil {
			logger.Error("THEMES_LOAD_FAILED", msg.Err, nil)
			return m, nil
		}
		m.themes.SetItems(msg.Themes)
		return m, nil

	case ThemeSavedMsg:
		if msg.Err != nil {
			logger.Error("THEME_SAVE_FAILED", msg.Err, nil)
			return m, nil
		}
		logger.Info("THEME_SAVED", logger.Fields{"id": msg.Record.ID, "name": msg.Record.Name})
		return m, tea.Batch(m.setNotice("saved "+msg.Record.Name), m.loadThemes())

	case NoticeExpiredMsg:
		if msg.ID == m.noticeID {
			m.status.Notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncIndicator()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applySnapshot copies orchestrator state into the components.
func (m *Model) applySnapshot(s orchestrator.Snapshot) tea.Cmd {
	m.snap = s
	m.chips.SetWords(s.Suggestions, s.DefaultSuggestions)
	m.chips.SetLoading(s.SuggestionsLoading)
	m.status.Playback = s.Playback
	m.status.Paused = s.Paused

	var cmd tea.Cmd
	if s.Generating {
		cmd = m.spinner.Start()
	} else {
		m.spinner.Stop()
	}
	m.syncIndicator()
	return cmd
}

func (m *Model) syncIndicator() {
	if m.spinner.IsActive() {
		m.status.Indicator = m.spinner.View()
		return
	}
	m.status.Indicator = ""
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.input.Width = max(width-8, 10)
	m.chips.SetWidth(width)
	m.status.SetWidth(width)
	m.help.Width = width

	// Header, prompt box, chips, status bar and a spacer.
	avail := max(height-8, 6)
	if m.theme.GetLayoutMode() == styles.LayoutWide {
		listWidth := min(max(width/3, 30), 50)
		m.bg.SetSize(width-listWidth, avail)
		m.themes.SetSize(listWidth, avail)
		return
	}
	m.bg.SetSize(width, avail*2/3)
	m.themes.SetSize(width, avail-avail*2/3)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		return m, m.togglePlayback()

	case key.Matches(msg, m.keys.SaveTheme):
		return m.handleSave()

	case key.Matches(msg, m.keys.Themes):
		if m.focus == FocusThemes {
			m.focus = FocusPrompt
		} else if m.themes.Len() > 0 {
			m.focus = FocusThemes
			m.chips.ClearSelection()
		}
		return m, nil
	}

	if m.focus == FocusThemes {
		return m.handleThemesKey(msg)
	}
	return m.handlePromptKey(msg)
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextChip):
		m.chips.Next()
		return m, nil

	case key.Matches(msg, m.keys.PrevChip):
		m.chips.Prev()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.chips.ClearSelection()
		return m, nil

	case key.Matches(msg, m.keys.Accept):
		if word, ok := m.chips.Selected(); ok {
			m.setPrompt(appendWord(m.input.Value(), word))
			m.chips.ClearSelection()
			return m, nil
		}
		if strings.TrimSpace(m.input.Value()) != "" {
			m.orch.Submit(m.input.Value())
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.orch.SetPrompt(after)
	}
	return m, cmd
}

func (m Model) handleThemesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.themes.Up()
	case key.Matches(msg, m.keys.Down):
		m.themes.Down()
	case key.Matches(msg, m.keys.Clear):
		m.focus = FocusPrompt
	case key.Matches(msg, m.keys.Accept):
		rec, ok := m.themes.Selected()
		if !ok {
			return m, nil
		}
		m.focus = FocusPrompt
		m.input.SetValue(rec.Prompt)
		m.input.CursorEnd()
		m.orch.Submit(rec.Prompt)
		logger.Info("THEME_SELECTED", logger.Fields{"id": rec.ID})
	}
	return m, nil
}

// setPrompt replaces the prompt text and forwards it as a keystroke.
func (m *Model) setPrompt(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.orch.SetPrompt(text)
}

func (m *Model) togglePlayback() tea.Cmd {
	err := m.orch.TogglePlayback()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, orchestrator.ErrNotPlaying):
		return m.setNotice("nothing playing yet")
	default:
		logger.Warn("PLAYBACK_TOGGLE_FAILED", logger.Fields{"error": err.Error()})
		return nil
	}
}

func (m Model) handleSave() (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}
	if m.snap.Generated == "" {
		return m, m.setNotice("generate a theme first")
	}
	return m, m.saveTheme(m.snap.Generated, m.input.Value())
}

// appendWord adds word to prompt separated by one space.
func appendWord(prompt, word string) string {
	trimmed := strings.TrimRight(prompt, " ")
	if trimmed == "" {
		return word
	}
	return trimmed + " " + word
}
