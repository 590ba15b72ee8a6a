// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mood provides the main lofi screen.
//
// The screen is a thin view over the orchestrator: every keystroke is
// forwarded with SetPrompt, and rendering uses the latest published
// snapshot, delivered as a SnapshotMsg by a command that blocks on the
// orchestrator's change signal. The screen never waits on generation.
//
// # Usage
//
//	m := mood.New(mood.Options{Orchestrator: orch, Store: store, Theme: theme})
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	_, err := p.Run()
package mood
