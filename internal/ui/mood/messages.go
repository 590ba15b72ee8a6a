// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mood

import (
	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/storage"
)

// SnapshotMsg carries a freshly published orchestrator state.
type SnapshotMsg struct {
	Snapshot orchestrator.Snapshot
}

// ThemesLoadedMsg carries the saved themes list.
type ThemesLoadedMsg struct {
	Themes []storage.Record
	Err    error
}

// ThemeSavedMsg reports the outcome of a save.
type ThemeSavedMsg struct {
	Record storage.Record
	Err    error
}

// NoticeExpiredMsg clears the status bar notice it was scheduled for.
type NoticeExpiredMsg struct {
	ID int
}
