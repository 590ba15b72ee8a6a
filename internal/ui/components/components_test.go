// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/storage"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

// =============================================================================
// CHIPS
// =============================================================================

func TestChips_CycleAndWrap(t *testing.T) {
	c := NewChips(testTheme())
	c.SetWords([]string{"chill", "rain", "jazz"}, false)

	_, ok := c.Selected()
	assert.False(t, ok)

	c.Next()
	w, _ := c.Selected()
	assert.Equal(t, "chill", w)
	c.Next()
	c.Next()
	c.Next()
	w, _ = c.Selected()
	assert.Equal(t, "chill", w, "Next wraps around")

	c.Prev()
	w, _ = c.Selected()
	assert.Equal(t, "jazz", w, "Prev wraps to the end")
}

func TestChips_NewWordsClearSelection(t *testing.T) {
	c := NewChips(testTheme())
	c.SetWords([]string{"chill", "rain"}, false)
	c.Next()

	c.SetWords([]string{"chill", "rain"}, false)
	_, ok := c.Selected()
	assert.True(t, ok, "same words keep the selection")

	c.SetWords([]string{"neon"}, false)
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestChips_EmptyNext(t *testing.T) {
	c := NewChips(testTheme())
	c.Next()
	c.Prev()
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestChips_ViewWraps(t *testing.T) {
	c := NewChips(testTheme())
	c.SetWidth(30)
	c.SetWords(orchestrator.DefaultSuggestions, true)

	view := c.View()
	assert.Greater(t, len(strings.Split(view, "\n")), 1)
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 36)
	}
	assert.Contains(t, view, "try")
}

// =============================================================================
// THEME LIST
// =============================================================================

func records(names ...string) []storage.Record {
	out := make([]storage.Record, len(names))
	for i, n := range names {
		out[i] = storage.Record{ID: n, Name: n, Prompt: n + " prompt", CreatedAt: time.Now()}
	}
	return out
}

func TestThemeList_Navigation(t *testing.T) {
	l := NewThemeList(testTheme())
	_, ok := l.Selected()
	assert.False(t, ok)

	l.SetItems(records("a", "b", "c"))
	l.Down()
	l.Down()
	l.Down()
	r, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", r.ID)

	l.Up()
	r, _ = l.Selected()
	assert.Equal(t, "b", r.ID)
}

func TestThemeList_SetItemsKeepsCursor(t *testing.T) {
	l := NewThemeList(testTheme())
	l.SetItems(records("a", "b", "c"))
	l.Down()

	l.SetItems(records("new", "a", "b", "c"))
	r, _ := l.Selected()
	assert.Equal(t, "b", r.ID)

	l.SetItems(records("x"))
	r, _ = l.Selected()
	assert.Equal(t, "x", r.ID)
}

func TestThemeList_ScrollsToCursor(t *testing.T) {
	l := NewThemeList(testTheme())
	l.SetSize(40, 5) // two visible rows
	l.SetItems(records("a", "b", "c", "d"))
	l.Down()
	l.Down()
	l.Down()

	view := l.View(true)
	assert.Contains(t, view, "> d")
	assert.NotContains(t, view, " a ")
}

func TestThemeList_Empty(t *testing.T) {
	l := NewThemeList(testTheme())
	assert.Contains(t, l.View(false), "nothing saved yet")
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTime(now.Add(-tt.ago), now))
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestPlaybackLabel(t *testing.T) {
	assert.Contains(t, PlaybackLabel(orchestrator.PlaybackPlaying, false), "playing")
	assert.Contains(t, PlaybackLabel(orchestrator.PlaybackPlaying, true), "paused")
	assert.Contains(t, PlaybackLabel(orchestrator.PlaybackFailed, false), styles.StatusIndicators.Failed)
	assert.Contains(t, PlaybackLabel(orchestrator.PlaybackLoading, false), "buffering")
	assert.Contains(t, PlaybackLabel(orchestrator.PlaybackIdle, false), "idle")
}

func TestStatusBar_DropsHintsToFit(t *testing.T) {
	s := NewStatusBar(testTheme())
	s.SetWidth(40)
	s.Playback = orchestrator.PlaybackPlaying
	s.Shortcuts = []key.Binding{
		key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("C-p", "play/pause")),
		key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save theme")),
		key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit with a long description")),
	}

	view := s.View()
	assert.Equal(t, 40, lipgloss.Width(view))
	assert.Contains(t, view, "playing")
	assert.Contains(t, view, "play/pause")
	assert.NotContains(t, view, "long description")
}

// =============================================================================
// SPINNER AND BACKGROUND
// =============================================================================

func TestSpinner_StartStop(t *testing.T) {
	s := NewSpinner(testTheme())
	assert.Empty(t, s.View())

	now := time.Unix(100, 0)
	s.now = func() time.Time { return now }
	require.NotNil(t, s.Start())
	assert.Nil(t, s.Start(), "already running")

	now = now.Add(4 * time.Second)
	assert.Contains(t, s.View(), "generating")
	assert.Contains(t, s.View(), "4s")

	s.Stop()
	assert.Empty(t, s.View())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0s", formatElapsed(200*time.Millisecond))
	assert.Equal(t, "1m12s", formatElapsed(72*time.Second))
}

type previewHandle struct{}

func (previewHandle) Release() error                { return nil }
func (previewHandle) Preview(cols, rows int) string { return "PREVIEW" }

type plainHandle struct{}

func (plainHandle) Release() error { return nil }

func TestBackground_View(t *testing.T) {
	b := NewBackground(testTheme(), true)
	b.SetSize(40, 12)

	assert.Contains(t, b.View(nil, ""), "default background")
	assert.Contains(t, b.View(nil, ""), "lofi radio")

	v := b.View(previewHandle{}, "rainy night")
	assert.Contains(t, v, "PREVIEW")
	assert.Contains(t, v, "rainy night")

	assert.Contains(t, b.View(plainHandle{}, "rainy night"), "lofi radio")

	off := NewBackground(testTheme(), false)
	assert.NotContains(t, off.View(previewHandle{}, "x"), "PREVIEW")
}
