// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
	"time"
)

// DefaultReadyTimeout bounds the wait for an audio element to become ready.
const DefaultReadyTimeout = 5000 * time.Millisecond

// PlaybackState is the audio gate state.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackLoading
	PlaybackReady
	PlaybackPlaying
	PlaybackFailed
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackIdle:
		return "idle"
	case PlaybackLoading:
		return "loading"
	case PlaybackReady:
		return "ready"
	case PlaybackPlaying:
		return "playing"
	case PlaybackFailed:
		return "failed"
	default:
		return fmt.Sprintf("PlaybackState(%d)", int(s))
	}
}

// LoadSignals carries the outcome of assigning a locator to an element.
// Ready is closed once the element can play through. Err receives at most
// one error, during load or later while playing.
type LoadSignals struct {
	Ready <-chan struct{}
	Err   <-chan error
}

// AudioElement is the playable resource the gate drives. Load must not
// block; buffering happens in the background and stops when ctx is done.
type AudioElement interface {
	Load(ctx context.Context, locator string) LoadSignals
	Play() error
	Pause() error
	Stop() error
}

// awaitReady collapses the ready, error and timeout sources into one
// outcome. A nil return means ready.
func awaitReady(ctx context.Context, clock Clock, timeout time.Duration, sig LoadSignals) error {
	expired := make(chan struct{})
	t := clock.AfterFunc(timeout, func() { close(expired) })
	defer t.Stop()

	select {
	case <-sig.Ready:
		return nil
	case err := <-sig.Err:
		if err == nil {
			err = fmt.Errorf("audio element reported an unspecified error")
		}
		return &Failure{Kind: NetworkFailure, Pipeline: "audio", Err: err}
	case <-expired:
		return &Failure{Kind: TimeoutFailure, Pipeline: "audio", Err: ErrReadyTimeout}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// audioGate is the loop-owned readiness state for the current track.
type audioGate struct {
	state   PlaybackState
	seq     uint64
	locator string
	paused  bool
	cancel  context.CancelFunc
}

// abandon releases the pending wait and any buffering for the current
// locator.
func (g *audioGate) abandon() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// current reports whether a signal tagged seq still belongs to the gate in
// the given state.
func (g *audioGate) current(seq uint64, states ...PlaybackState) bool {
	if g.seq != seq {
		return false
	}
	for _, s := range states {
		if g.state == s {
			return true
		}
	}
	return false
}
