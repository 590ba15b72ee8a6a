// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generator provides the HTTP client for the mood generation backend.
//
// The backend exposes three POST endpoints that all take {"prompt": "..."}:
//
//	/api/suggest-words   -> {"suggestions": ["...", ...]}
//	/api/generate-image  -> raw image bytes (Content-Type: image/*)
//	/api/generate-music  -> {"audioPath": "/audio/123.mp3"}
//
// Client implements the orchestrator's SuggestionProvider, ImageProvider and
// AudioProvider. Audio paths are resolved against the configured base URL so
// callers always receive an absolute locator.
//
// Outgoing requests are rate limited, tagged with an X-Request-ID header and
// traced through an otelhttp transport. Failures are returned as
// *ClientError values that carry an orchestrator.ErrorKind.
package generator
