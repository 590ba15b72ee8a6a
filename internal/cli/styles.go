// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Dusk)
	SectionStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary).MarginTop(1)
	LabelStyle   = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(14)
	ValueStyle   = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	SuccessStyle = lipgloss.NewStyle().Foreground(styles.Good).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(styles.Bad).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(styles.Warm)
	DimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
	PromptStyle  = lipgloss.NewStyle().Foreground(styles.Neon).Bold(true)
	ChipStyle    = lipgloss.NewStyle().Foreground(styles.Neon)
)

// RenderStatus renders a bracketed status word.
func RenderStatus(status string) string {
	switch strings.ToLower(status) {
	case "ok", "up", "ready", "playing":
		return SuccessStyle.Render("[OK]")
	case "fail", "down", "failed", "error":
		return ErrorStyle.Render("[FAIL]")
	case "warn", "loading", "pending":
		return WarningStyle.Render("[WARN]")
	default:
		return DimStyle.Render("[" + strings.ToUpper(status) + "]")
	}
}

// RenderLabel renders a fixed width field label.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}

// RenderPlayback renders a playback state with its indicator.
func RenderPlayback(state orchestrator.PlaybackState, paused bool) string {
	ind := styles.StatusIndicators
	switch {
	case paused:
		return WarningStyle.Render(ind.Paused + " paused")
	case state == orchestrator.PlaybackPlaying:
		return SuccessStyle.Render(ind.Playing + " playing")
	case state == orchestrator.PlaybackReady:
		return SuccessStyle.Render(ind.Ready + " ready")
	case state == orchestrator.PlaybackLoading:
		return WarningStyle.Render(ind.Loading + " buffering")
	case state == orchestrator.PlaybackFailed:
		return ErrorStyle.Render(ind.Failed + " no audio")
	default:
		return DimStyle.Render(ind.Idle + " idle")
	}
}
