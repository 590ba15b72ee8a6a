// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SehejGit/lofi-hack/internal/ui/styles"
	"github.com/SehejGit/lofi-hack/internal/util"
)

// maxChipWidth keeps one long suggestion from taking a whole row.
const maxChipWidth = 32

// Chips renders the suggestion words as a wrapping row of chips. Selection
// is cleared whenever the words change.
type Chips struct {
	words    []string
	defaults bool
	loading  bool
	selected int
	width    int

	theme *styles.Theme
}

// NewChips creates an empty chip row.
func NewChips(theme *styles.Theme) *Chips {
	return &Chips{selected: -1, width: 80, theme: theme}
}

// SetWidth sets the available columns.
func (c *Chips) SetWidth(width int) {
	c.width = width
}

// SetWords replaces the chips. defaults marks the fixed fallback list.
func (c *Chips) SetWords(words []string, defaults bool) {
	if !slices.Equal(c.words, words) {
		c.selected = -1
	}
	c.words = append(c.words[:0:0], words...)
	c.defaults = defaults
}

// SetLoading marks a suggestions request in flight.
func (c *Chips) SetLoading(loading bool) {
	c.loading = loading
}

// Words returns the current words.
func (c *Chips) Words() []string {
	return c.words
}

// Next moves the selection right, wrapping to the first chip.
func (c *Chips) Next() {
	if len(c.words) == 0 {
		c.selected = -1
		return
	}
	c.selected = (c.selected + 1) % len(c.words)
}

// Prev moves the selection left, wrapping to the last chip.
func (c *Chips) Prev() {
	if len(c.words) == 0 {
		c.selected = -1
		return
	}
	if c.selected <= 0 {
		c.selected = len(c.words) - 1
		return
	}
	c.selected--
}

// ClearSelection drops the selection.
func (c *Chips) ClearSelection() {
	c.selected = -1
}

// Selected returns the selected word.
func (c *Chips) Selected() (string, bool) {
	if c.selected < 0 || c.selected >= len(c.words) {
		return "", false
	}
	return c.words[c.selected], true
}

// View renders the chips, wrapping at the configured width.
func (c *Chips) View() string {
	label := "mood"
	if c.defaults {
		label = "try"
	}
	if c.loading {
		label += "…"
	}
	head := c.theme.ChipsLabel.Render(label + " ")
	indent := strings.Repeat(" ", lipgloss.Width(head))

	var lines []string
	line := head
	lineWidth := lipgloss.Width(head)
	for i, w := range c.words {
		style := c.theme.Chip
		switch {
		case i == c.selected:
			style = c.theme.ChipSelected
		case c.defaults:
			style = c.theme.ChipDefault
		}
		chip := style.Render(util.TruncateWidth(w, maxChipWidth))
		cw := lipgloss.Width(chip)
		if lineWidth > lipgloss.Width(head) && lineWidth+1+cw > c.width {
			lines = append(lines, line)
			line, lineWidth = indent, len(indent)
		}
		if lineWidth > len(indent) {
			line += " "
			lineWidth++
		}
		line += chip
		lineWidth += cw
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
