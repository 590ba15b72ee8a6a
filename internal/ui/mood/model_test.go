// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mood

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/storage"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeOrch struct {
	mu        sync.Mutex
	prompts   []string
	submits   []string
	toggleErr error
	toggles   int
	snap      orchestrator.Snapshot
	changes   chan struct{}
}

func newFakeOrch() *fakeOrch {
	return &fakeOrch{
		changes: make(chan struct{}, 1),
		snap: orchestrator.Snapshot{
			Suggestions:        orchestrator.DefaultSuggestions,
			DefaultSuggestions: true,
		},
	}
}

func (f *fakeOrch) SetPrompt(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
}

func (f *fakeOrch) Submit(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, p)
}

func (f *fakeOrch) TogglePlayback() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles++
	return f.toggleErr
}

func (f *fakeOrch) Snapshot() orchestrator.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeOrch) Changes() <-chan struct{} { return f.changes }

func (f *fakeOrch) publish(s orchestrator.Snapshot) {
	f.mu.Lock()
	f.snap = s
	f.mu.Unlock()
	select {
	case f.changes <- struct{}{}:
	default:
	}
}

type fakeStore struct {
	mu   sync.Mutex
	recs []storage.Record
	err  error
}

func (s *fakeStore) Add(_ context.Context, collection string, rec storage.Record) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return storage.Record{}, s.err
	}
	rec.ID = "id-" + rec.Name
	rec.CreatedAt = time.Now()
	s.recs = append([]storage.Record{rec}, s.recs...)
	return rec, nil
}

func (s *fakeStore) List(_ context.Context, collection string, limit int) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.Record(nil), s.recs...), s.err
}

func newModel(t *testing.T, store ThemeStore) (Model, *fakeOrch) {
	t.Helper()
	orch := newFakeOrch()
	m := New(Options{Orchestrator: orch, Store: store, Theme: styles.NewTheme("dark")})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), orch
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// =============================================================================
// PROMPT
// =============================================================================

func TestTypingForwardsEveryKeystroke(t *testing.T) {
	m, orch := newModel(t, nil)

	m = typeText(t, m, "rain")

	assert.Equal(t, "rain", m.Prompt())
	assert.Equal(t, []string{"r", "ra", "rai", "rain"}, orch.prompts)
	assert.Empty(t, orch.submits)
}

func TestNavigationKeysDoNotForwardPrompt(t *testing.T) {
	m, orch := newModel(t, nil)
	m = typeText(t, m, "rain")
	orch.prompts = nil

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})

	assert.Empty(t, orch.prompts)
	assert.Equal(t, "rain", m.Prompt())
}

func TestEnterSubmitsPrompt(t *testing.T) {
	m, orch := newModel(t, nil)
	m = typeText(t, m, "rainy night")

	_, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"rainy night"}, orch.submits)
}

func TestEnterOnEmptyPromptDoesNothing(t *testing.T) {
	m, orch := newModel(t, nil)

	_, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, orch.submits)
}

// =============================================================================
// CHIPS
// =============================================================================

func TestAcceptChipAppendsWord(t *testing.T) {
	m, orch := newModel(t, nil)
	m = typeText(t, m, "night ")
	orch.prompts = nil

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := "night " + orchestrator.DefaultSuggestions[0]
	assert.Equal(t, want, m.Prompt())
	assert.Equal(t, []string{want}, orch.prompts)
	assert.Empty(t, orch.submits, "accepting a chip must not submit")

	// The selection is cleared, so a second Enter submits.
	_, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{want}, orch.submits)
}

func TestShiftTabSelectsLastChip(t *testing.T) {
	m, _ := newModel(t, nil)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	last := orchestrator.DefaultSuggestions[len(orchestrator.DefaultSuggestions)-1]
	assert.Equal(t, last, m.Prompt())
}

func TestEscClearsChipSelection(t *testing.T) {
	m, orch := newModel(t, nil)
	m = typeText(t, m, "dawn")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	_, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"dawn"}, orch.submits)
}

func TestAppendWord(t *testing.T) {
	assert.Equal(t, "cozy", appendWord("", "cozy"))
	assert.Equal(t, "rain cozy", appendWord("rain", "cozy"))
	assert.Equal(t, "rain cozy", appendWord("rain   ", "cozy"))
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestSnapshotMsgUpdatesStateAndRearms(t *testing.T) {
	m, orch := newModel(t, nil)

	snap := orchestrator.Snapshot{
		Version:     3,
		Suggestions: []string{"warm", "neon"},
		Generated:   "neon city",
		Generating:  true,
		Playback:    orchestrator.PlaybackPlaying,
	}
	m, cmd := send(t, m, SnapshotMsg{Snapshot: snap})
	require.NotNil(t, cmd)

	assert.Equal(t, uint64(3), m.Snapshot().Version)
	assert.Equal(t, []string{"warm", "neon"}, m.chips.Words())
	assert.True(t, m.spinner.IsActive())
	assert.Contains(t, m.View(), "neon city")

	m, _ = send(t, m, SnapshotMsg{Snapshot: orchestrator.Snapshot{Version: 4}})
	assert.False(t, m.spinner.IsActive())

	// The re-armed waiter delivers the next published state.
	orch.publish(orchestrator.Snapshot{Version: 5})
	msg := m.waitForChange()()
	got, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(5), got.Snapshot.Version)
}

// =============================================================================
// PLAYBACK
// =============================================================================

func TestPlayPauseToggles(t *testing.T) {
	m, orch := newModel(t, nil)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, orch.toggles)
	assert.Empty(t, m.Notice())
}

func TestPlayPauseWithoutTrackShowsNotice(t *testing.T) {
	m, orch := newModel(t, nil)
	orch.toggleErr = orchestrator.ErrNotPlaying

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.NotNil(t, cmd)
	assert.Equal(t, "nothing playing yet", m.Notice())

	// A stale expiry leaves a newer notice alone.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m, _ = send(t, m, NoticeExpiredMsg{ID: 1})
	assert.Equal(t, "nothing playing yet", m.Notice())
	m, _ = send(t, m, NoticeExpiredMsg{ID: 2})
	assert.Empty(t, m.Notice())
}

// =============================================================================
// SAVED THEMES
// =============================================================================

func TestSaveRequiresGeneratedTheme(t *testing.T) {
	m, _ := newModel(t, &fakeStore{})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, "generate a theme first", m.Notice())
}

func TestSaveStoresGeneratedTheme(t *testing.T) {
	store := &fakeStore{}
	m, _ := newModel(t, store)
	m = typeText(t, m, "rainy night cozy")
	m, _ = send(t, m, SnapshotMsg{Snapshot: orchestrator.Snapshot{Generated: "rainy night"}})

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	saved, ok := cmd().(ThemeSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, "rainy night", saved.Record.Name)
	assert.Equal(t, "rainy night cozy", saved.Record.Prompt)

	m, cmd = send(t, m, saved)
	assert.NotNil(t, cmd)
	assert.Equal(t, "saved rainy night", m.Notice())

	loaded, ok := m.loadThemes()().(ThemesLoadedMsg)
	require.True(t, ok)
	m, _ = send(t, m, loaded)
	assert.Equal(t, 1, m.themes.Len())
}

func TestSaveFailureIsLogged(t *testing.T) {
	m, _ := newModel(t, &fakeStore{})

	m, cmd := send(t, m, ThemeSavedMsg{Err: errors.New("disk full")})

	assert.Nil(t, cmd)
	assert.Empty(t, m.Notice())
}

func TestSelectSavedThemeSubmits(t *testing.T) {
	store := &fakeStore{recs: []storage.Record{
		{ID: "b", Name: "beach", Prompt: "sunny beach", CreatedAt: time.Now()},
		{ID: "a", Name: "forest", Prompt: "misty forest", CreatedAt: time.Now()},
	}}
	m, orch := newModel(t, store)
	loaded := m.loadThemes()().(ThemesLoadedMsg)
	m, _ = send(t, m, loaded)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, FocusThemes, m.Focus())

	// Up and down move within the list while it has focus.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, FocusPrompt, m.Focus())
	assert.Equal(t, "misty forest", m.Prompt())
	assert.Equal(t, []string{"misty forest"}, orch.submits)
}

func TestThemesFocusNeedsItems(t *testing.T) {
	m, _ := newModel(t, &fakeStore{})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	assert.Equal(t, FocusPrompt, m.Focus())
}

func TestNoStoreDisablesThemes(t *testing.T) {
	m, _ := newModel(t, nil)

	assert.Nil(t, m.loadThemes())
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.NotContains(t, m.View(), "saved themes")
}

// =============================================================================
// VIEW
// =============================================================================

func TestViewLayouts(t *testing.T) {
	m, _ := newModel(t, &fakeStore{})

	wide := m.View()
	assert.Contains(t, wide, "lofi")
	assert.Contains(t, wide, "saved themes")
	assert.Contains(t, wide, "default background")

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 50, Height: 30})
	narrow := m.View()
	assert.Contains(t, narrow, "saved themes")
	assert.Greater(t, strings.Count(narrow, "\n"), strings.Count(wide, "\n")/2)
}

func TestHelpToggle(t *testing.T) {
	m, _ := newModel(t, nil)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, m.View(), "next mood word")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.NotContains(t, m.View(), "next mood word")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, nil)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
