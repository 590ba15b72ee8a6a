// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mood

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SehejGit/lofi-hack/internal/ui/styles"
	"github.com/SehejGit/lofi-hack/internal/util"
)

// View renders the mood screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderPrompt(),
		m.chips.View(),
		m.renderBody(),
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	}
	sections = append(sections, m.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("lofi")
	mood := ""
	if m.snap.Generated != "" {
		room := max(m.width-lipgloss.Width(title)-6, 8)
		mood = "  " + m.theme.HeaderMood.Render(util.TruncateWidth(m.snap.Generated, room))
	}
	return m.theme.Header.Render(title + mood)
}

func (m Model) renderPrompt() string {
	box := m.theme.PromptBox
	if m.focus == FocusPrompt {
		box = m.theme.PromptBoxFocused
	}
	label := m.theme.PromptLabel.Render("mood")
	return box.Width(max(m.width-2, 12)).Render(label + " " + m.input.View())
}

// renderBody lays out the background and the saved themes side by side on
// wide terminals and stacked otherwise.
func (m Model) renderBody() string {
	bg := m.bg.View(m.snap.Background, m.snap.BackgroundPrompt)
	if m.store == nil {
		return bg
	}
	list := m.themes.View(m.focus == FocusThemes)
	if m.theme.GetLayoutMode() == styles.LayoutWide {
		return lipgloss.JoinHorizontal(lipgloss.Top, bg, list)
	}
	return strings.Join([]string{bg, list}, "\n")
}
