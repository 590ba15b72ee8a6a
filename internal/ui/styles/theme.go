// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMood  lipgloss.Style

	// ==========================================================================
	// PROMPT
	// ==========================================================================

	PromptBox        lipgloss.Style
	PromptBoxFocused lipgloss.Style
	PromptLabel      lipgloss.Style

	// ==========================================================================
	// SUGGESTION CHIPS
	// ==========================================================================

	Chip         lipgloss.Style
	ChipSelected lipgloss.Style
	ChipDefault  lipgloss.Style
	ChipsLabel   lipgloss.Style

	// ==========================================================================
	// BACKGROUND PANEL
	// ==========================================================================

	Background        lipgloss.Style
	BackgroundCaption lipgloss.Style

	// ==========================================================================
	// SAVED THEMES
	// ==========================================================================

	ThemeList         lipgloss.Style
	ThemeItem         lipgloss.Style
	ThemeItemSelected lipgloss.Style
	ThemeMeta         lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	Spinner      lipgloss.Style
	Generating   lipgloss.Style
	StateIdle    lipgloss.Style
	StateLoading lipgloss.Style
	StateReady   lipgloss.Style
	StatePlaying lipgloss.Style
	StateFailed  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Notice       lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "light":
		isDark = false
	case "dark":
		isDark = true
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
		Width:        80,
		Height:       24,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Foreground(Dusk).Bold(true)
	t.HeaderMood = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.PromptBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PromptBoxFocused = t.PromptBox.BorderForeground(Dusk)
	t.PromptLabel = lipgloss.NewStyle().Foreground(Dusk).Bold(true)

	t.Chip = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(DuskDeep).
		Padding(0, 1)
	t.ChipSelected = t.Chip.
		Foreground(TextInverse).
		Background(Neon).
		Bold(true)
	t.ChipDefault = t.Chip.Foreground(TextSecondary)
	t.ChipsLabel = lipgloss.NewStyle().Foreground(TextMuted)

	t.Background = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Overlay)
	t.BackgroundCaption = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.ThemeList = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Warm).
		Padding(0, 1)
	t.ThemeItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ThemeItemSelected = lipgloss.NewStyle().Foreground(Warm).Bold(true)
	t.ThemeMeta = lipgloss.NewStyle().Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Foreground(Dusk)
	t.Generating = lipgloss.NewStyle().Foreground(Dusk).Italic(true)
	t.StateIdle = lipgloss.NewStyle().Foreground(TextMuted)
	t.StateLoading = lipgloss.NewStyle().Foreground(Neon)
	t.StateReady = lipgloss.NewStyle().Foreground(Good)
	t.StatePlaying = lipgloss.NewStyle().Foreground(Good).Bold(true)
	t.StateFailed = lipgloss.NewStyle().Foreground(Bad).Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Neon).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Notice = lipgloss.NewStyle().Foreground(Warm)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns, saved themes beside the background
)
