// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the lofi TUI.

# Color System (colors.go)

  - Dusk - Primary accent for the title and focused prompt
  - Neon - Selected suggestion chip and key hints
  - Warm - Saved themes
  - Good / Bad - Playback states

Playback states also carry ASCII shape indicators (StatusIndicators) so
they read without color.

# Theme System (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	if theme.GetLayoutMode() == styles.LayoutWide {
		// saved themes render beside the background
	}
*/
package styles
