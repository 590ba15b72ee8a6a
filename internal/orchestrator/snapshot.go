// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
)

// Snapshot is an immutable view of the orchestrator state.
type Snapshot struct {
	// Version increases with every published change.
	Version uint64

	Prompt string

	Suggestions        []string
	DefaultSuggestions bool
	SuggestionsLoading bool

	// Background is nil when the default background is shown.
	Background       ImageHandle
	BackgroundPrompt string

	// Generated is the prompt of the most recent cycle that produced media.
	Generated string

	// SequenceID is the latest issued media cycle.
	SequenceID uint64
	Generating bool

	Playback PlaybackState
	Paused   bool
	Locator  string

	LastFailure *Failure
}

// publish stores a fresh snapshot and wakes the change listener.
func (o *Orchestrator) publish() {
	o.version++
	s := &Snapshot{
		Version:            o.version,
		Prompt:             o.prompt,
		Suggestions:        append([]string(nil), o.suggestions...),
		DefaultSuggestions: o.suggestionsDefault,
		SuggestionsLoading: o.suggestionsPending,
		Background:         o.image,
		BackgroundPrompt:   o.imagePrompt,
		Generated:          o.generated,
		SequenceID:         o.seq,
		Generating:         o.imagePending || o.audioPending || o.gate.state == PlaybackLoading,
		Playback:           o.gate.state,
		Paused:             o.gate.paused,
		Locator:            o.gate.locator,
		LastFailure:        o.failure,
	}
	o.published.Store(s)
	select {
	case o.changes <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest published state. It never blocks on the
// event loop.
func (o *Orchestrator) Snapshot() Snapshot {
	return *o.published.Load()
}

// Changes is signalled after every published change. Signals coalesce, so
// a reader should call Snapshot after each receive. Meant for one reader.
func (o *Orchestrator) Changes() <-chan struct{} {
	return o.changes
}

// WaitFor blocks until cond holds for a published snapshot or ctx is done.
func (o *Orchestrator) WaitFor(ctx context.Context, cond func(Snapshot) bool) (Snapshot, error) {
	for {
		s := o.Snapshot()
		if cond(s) {
			return s, nil
		}
		select {
		case <-o.changes:
		case <-o.done:
			return o.Snapshot(), ErrClosed
		case <-ctx.Done():
			return o.Snapshot(), ctx.Err()
		}
	}
}
