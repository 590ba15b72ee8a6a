// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the lofi TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Dusk - Primary accent, title, focused prompt
var Dusk = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// DuskDeep - Chip background
var DuskDeep = lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#3B3655"}

// Neon - Selected chip, active key hints
var Neon = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Warm - Playing indicator, saved themes
var Warm = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Good - Ready and playing states
var Good = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Bad - Failed playback
var Bad = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// ACCESSIBILITY: Shapes alongside colors
// =============================================================================

// StatusIndicatorSet contains text/shape indicators for playback states.
type StatusIndicatorSet struct {
	Idle    string
	Loading string
	Ready   string
	Playing string
	Paused  string
	Failed  string
}

// StatusIndicators are ASCII so they render in any terminal font.
var StatusIndicators = StatusIndicatorSet{
	Idle:    "[-]",
	Loading: "[ ]",
	Ready:   "[OK]",
	Playing: "[>]",
	Paused:  "[||]",
	Failed:  "[X]",
}

// RenderError renders an error line with the failed indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Bad).Bold(true).Render(StatusIndicators.Failed + " " + message)
}

// RenderSuccess renders a success line.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Good).Bold(true).Render(StatusIndicators.Ready + " " + message)
}
