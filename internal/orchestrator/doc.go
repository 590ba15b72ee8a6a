// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator turns a stream of prompt edits into debounced
// generation requests and applies their results.
//
// Every keystroke resets two timers. The short one asks a SuggestionProvider
// for mood words, the long one starts a media cycle that fetches an image and
// an audio track concurrently. Each media cycle carries a monotonic sequence
// id; results that do not match the latest id when they arrive are dropped.
//
// All state lives on a single event loop goroutine. Provider calls and the
// audio readiness wait run on their own goroutines and post their outcome
// back to the loop, so late or superseded work can never mutate state.
//
// Usage:
//
//	o := orchestrator.New(orchestrator.Options{
//	    Suggestions: client,
//	    Images:      client,
//	    Audio:       client,
//	    Decoder:     media.NewDecoder(dir),
//	    Element:     element,
//	})
//	defer o.Close()
//	o.SetPrompt("rainy night")
//	<-o.Changes()
//	snap := o.Snapshot()
package orchestrator
