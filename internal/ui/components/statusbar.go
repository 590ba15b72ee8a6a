// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
	"github.com/SehejGit/lofi-hack/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar shows the playback state, the generating indicator, a one-off
// notice and key hints.
type StatusBar struct {
	Playback  orchestrator.PlaybackState
	Paused    bool
	Indicator string // rendered spinner, empty when idle
	Notice    string
	Shortcuts []key.Binding
	Width     int

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// PlaybackLabel returns the indicator and word for the playback state.
func PlaybackLabel(state orchestrator.PlaybackState, paused bool) string {
	switch state {
	case orchestrator.PlaybackLoading:
		return styles.StatusIndicators.Loading + " buffering"
	case orchestrator.PlaybackReady:
		return styles.StatusIndicators.Ready + " ready"
	case orchestrator.PlaybackPlaying:
		if paused {
			return styles.StatusIndicators.Paused + " paused"
		}
		return styles.StatusIndicators.Playing + " playing"
	case orchestrator.PlaybackFailed:
		return styles.StatusIndicators.Failed + " no audio"
	default:
		return styles.StatusIndicators.Idle + " idle"
	}
}

func (s *StatusBar) playbackStyle() lipgloss.Style {
	switch s.Playback {
	case orchestrator.PlaybackLoading:
		return s.theme.StateLoading
	case orchestrator.PlaybackReady:
		return s.theme.StateReady
	case orchestrator.PlaybackPlaying:
		if s.Paused {
			return s.theme.StateReady
		}
		return s.theme.StatePlaying
	case orchestrator.PlaybackFailed:
		return s.theme.StateFailed
	default:
		return s.theme.StateIdle
	}
}

// View renders the status bar on one line.
func (s *StatusBar) View() string {
	left := []string{s.playbackStyle().Render(PlaybackLabel(s.Playback, s.Paused))}
	if s.Indicator != "" {
		left = append(left, s.Indicator)
	}
	if s.Notice != "" {
		left = append(left, s.theme.Notice.Render(util.TruncateWidth(s.Notice, max(s.Width/3, 10))))
	}
	leftStr := strings.Join(left, "  ")

	var hints []string
	for _, b := range s.Shortcuts {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hints = append(hints, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
	}

	inner := s.Width - 2
	if inner < 1 {
		inner = 1
	}
	right := ""
	// Drop hints from the end until the line fits.
	for len(hints) > 0 {
		right = strings.Join(hints, "  ")
		if lipgloss.Width(leftStr)+lipgloss.Width(right)+2 <= inner {
			break
		}
		hints = hints[:len(hints)-1]
		right = ""
	}

	gap := inner - lipgloss.Width(leftStr) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(s.Width).Render(leftStr + strings.Repeat(" ", gap) + right)
}
