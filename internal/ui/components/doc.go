// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the lofi TUI.

Each component takes a *styles.Theme and renders with View:

  - Chips (chips.go) - suggestion words; Tab cycles the selection
  - Background (background.go) - generated image preview or the default scene
  - ThemeList (themelist.go) - saved themes, newest first
  - StatusBar (statusbar.go) - playback state, notices and key hints
  - Spinner (spinner.go) - the "generating..." indicator

Components hold no orchestrator state of their own; the mood screen copies
each published snapshot into them before rendering.
*/
package components
