// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package media holds the terminal renditions of generated media.
//
// Decoder turns image bytes into an *Image: the encoded file is kept in a
// temp directory for external viewers and a half-block ANSI preview is
// rendered for the TUI background.
//
// Element is the audio element driven by the orchestrator's readiness gate.
// It downloads a track into a cache directory, signals readiness once enough
// bytes are buffered, and plays the file through an external player command
// such as ffplay or mpv.
package media
