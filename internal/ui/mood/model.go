// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mood

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/storage"
	"github.com/SehejGit/lofi-hack/internal/ui/components"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
)

// Orchestrator is the part of the orchestrator the screen drives.
type Orchestrator interface {
	SetPrompt(prompt string)
	Submit(prompt string)
	TogglePlayback() error
	Snapshot() orchestrator.Snapshot
	Changes() <-chan struct{}
}

// ThemeStore persists saved themes.
type ThemeStore interface {
	Add(ctx context.Context, collection string, rec storage.Record) (storage.Record, error)
	List(ctx context.Context, collection string, limit int) ([]storage.Record, error)
}

// Focus is the element receiving navigation keys.
type Focus int

const (
	FocusPrompt Focus = iota
	FocusThemes
)

const (
	// themeListLimit bounds how many saved themes are loaded.
	themeListLimit = 200

	storeTimeout  = 5 * time.Second
	noticeTimeout = 4 * time.Second
)

// Options configures New.
type Options struct {
	Orchestrator Orchestrator
	// Store may be nil; saving and the themes list are then disabled.
	Store ThemeStore
	Theme *styles.Theme
	// ShowPreview draws generated images in the background panel.
	ShowPreview bool
}

// Model is the bubbletea model for the mood screen.
type Model struct {
	orch  Orchestrator
	store ThemeStore
	theme *styles.Theme
	keys  KeyMap

	input   textinput.Model
	chips   *components.Chips
	bg      *components.Background
	themes  *components.ThemeList
	status  *components.StatusBar
	spinner components.Spinner
	help    help.Model

	snap     orchestrator.Snapshot
	focus    Focus
	showHelp bool
	noticeID int
	width    int
	height   int
	quitting bool
}

// New creates the mood screen.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}

	in := textinput.New()
	in.Placeholder = "describe a mood, e.g. rainy night in Tokyo"
	in.Prompt = ""
	in.CharLimit = 280
	in.Focus()

	keys := DefaultKeyMap()
	status := components.NewStatusBar(theme)
	status.Shortcuts = keys.ShortHelp()

	m := Model{
		orch:    opts.Orchestrator,
		store:   opts.Store,
		theme:   theme,
		keys:    keys,
		input:   in,
		chips:   components.NewChips(theme),
		bg:      components.NewBackground(theme, opts.ShowPreview),
		themes:  components.NewThemeList(theme),
		status:  status,
		spinner: components.NewSpinner(theme),
		help:    help.New(),
		width:   80,
		height:  24,
	}
	if m.store == nil {
		m.keys.SaveTheme.SetEnabled(false)
		m.keys.Themes.SetEnabled(false)
		m.status.Shortcuts = m.keys.ShortHelp()
	}
	m.applySnapshot(m.orch.Snapshot())
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts listening for orchestrator changes and loads saved themes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange(), m.loadThemes())
}

// Prompt returns the prompt text.
func (m Model) Prompt() string {
	return m.input.Value()
}

// Focus returns the focused element.
func (m Model) Focus() Focus {
	return m.focus
}

// Snapshot returns the last applied orchestrator snapshot.
func (m Model) Snapshot() orchestrator.Snapshot {
	return m.snap
}

// Notice returns the status bar notice.
func (m Model) Notice() string {
	return m.status.Notice
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForChange blocks until the orchestrator publishes, then delivers the
// latest snapshot. Change signals coalesce, so one command per message is
// enough to never miss the final state.
func (m Model) waitForChange() tea.Cmd {
	o := m.orch
	return func() tea.Msg {
		<-o.Changes()
		return SnapshotMsg{Snapshot: o.Snapshot()}
	}
}

func (m Model) loadThemes() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		recs, err := store.List(ctx, storage.CollectionSavedThemes, themeListLimit)
		return ThemesLoadedMsg{Themes: recs, Err: err}
	}
}

// saveTheme stores the generated theme under the generated prompt, with the
// prompt as currently typed.
func (m Model) saveTheme(name, prompt string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		rec, err := store.Add(ctx, storage.CollectionSavedThemes, storage.Record{Name: name, Prompt: prompt})
		return ThemeSavedMsg{Record: rec, Err: err}
	}
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeID++
	id := m.noticeID
	m.status.Notice = text
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return NoticeExpiredMsg{ID: id}
	})
}
