// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across lofi packages.
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync, used for the
//     config file and the audio cache markers
//
// Display Width:
//   - TruncateWidth, PadRight, StringWidth: column-aware string helpers for
//     suggestion chips and saved theme rows, backed by go-runewidth
package util
