// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/SehejGit/lofi-hack/internal/storage"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
	"github.com/SehejGit/lofi-hack/internal/util"
)

// ThemeList is a scrollable list of saved themes, newest first.
type ThemeList struct {
	items  []storage.Record
	cursor int
	offset int
	width  int
	height int
	now    func() time.Time

	theme *styles.Theme
}

// NewThemeList creates an empty list.
func NewThemeList(theme *styles.Theme) *ThemeList {
	return &ThemeList{width: 40, height: 8, now: time.Now, theme: theme}
}

// SetSize sets the list dimensions, borders included.
func (l *ThemeList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clamp()
}

// SetItems replaces the list, keeping the cursor on the same record when
// it is still present.
func (l *ThemeList) SetItems(items []storage.Record) {
	var keep string
	if r, ok := l.Selected(); ok {
		keep = r.ID
	}
	l.items = items
	l.cursor = 0
	for i, r := range items {
		if r.ID == keep {
			l.cursor = i
			break
		}
	}
	l.clamp()
}

// Len returns the number of items.
func (l *ThemeList) Len() int {
	return len(l.items)
}

// Up moves the cursor up.
func (l *ThemeList) Up() {
	if l.cursor > 0 {
		l.cursor--
	}
	l.clamp()
}

// Down moves the cursor down.
func (l *ThemeList) Down() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
	}
	l.clamp()
}

// Selected returns the record under the cursor.
func (l *ThemeList) Selected() (storage.Record, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return storage.Record{}, false
	}
	return l.items[l.cursor], true
}

func (l *ThemeList) rows() int {
	// Border top/bottom and the title line.
	return max(l.height-3, 1)
}

func (l *ThemeList) clamp() {
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.rows() {
		l.offset = l.cursor - l.rows() + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the list. focused highlights the cursor row.
func (l *ThemeList) View(focused bool) string {
	inner := max(l.width-4, 8)
	lines := []string{l.theme.ThemeMeta.Render(util.PadRight("saved themes", inner))}

	if len(l.items) == 0 {
		lines = append(lines, l.theme.ThemeMeta.Render(util.PadRight("nothing saved yet", inner)))
	}

	end := min(l.offset+l.rows(), len(l.items))
	now := l.now()
	for i := l.offset; i < end; i++ {
		r := l.items[i]
		when := relativeTime(r.CreatedAt, now)
		nameWidth := max(inner-util.StringWidth(when)-3, 4)

		marker := "  "
		style := l.theme.ThemeItem
		if focused && i == l.cursor {
			marker = "> "
			style = l.theme.ThemeItemSelected
		}
		row := style.Render(marker+util.PadRight(r.Name, nameWidth)) + " " + l.theme.ThemeMeta.Render(when)
		lines = append(lines, row)
	}

	return l.theme.ThemeList.Width(l.width - 2).Render(strings.Join(lines, "\n"))
}
