// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure in one of the generation pipelines.
type ErrorKind int

const (
	// NetworkFailure means a provider request was rejected or unreachable.
	NetworkFailure ErrorKind = iota + 1
	// DecodeFailure means a provider response could not be interpreted.
	DecodeFailure
	// TimeoutFailure means the audio element never became ready in time.
	TimeoutFailure
	// PlaybackFailure means the audio element reported an error after load.
	PlaybackFailure
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network"
	case DecodeFailure:
		return "decode"
	case TimeoutFailure:
		return "timeout"
	case PlaybackFailure:
		return "playback"
	default:
		return "unknown"
	}
}

// Sentinel errors produced by the audio gate.
var (
	// ErrReadyTimeout is returned when no readiness signal arrives in time.
	ErrReadyTimeout = errors.New("audio element not ready before timeout")

	// ErrClosed is returned by operations on a closed orchestrator.
	ErrClosed = errors.New("orchestrator closed")

	// ErrNothingGenerated is returned when there is no generated theme yet.
	ErrNothingGenerated = errors.New("no theme has been generated")
)

// kinded is implemented by errors that know their own failure kind.
type kinded interface {
	FailureKind() ErrorKind
}

// Failure records the most recent failed pipeline step.
type Failure struct {
	Kind       ErrorKind
	Pipeline   string
	SequenceID uint64
	Err        error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s failure (seq %d): %v", f.Pipeline, f.Kind, f.SequenceID, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf classifies err. Errors that do not carry a kind are treated as
// network failures, which is what an unreachable or misbehaving provider
// looks like from here.
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	var k kinded
	if errors.As(err, &k) {
		return k.FailureKind()
	}
	if errors.Is(err, ErrReadyTimeout) {
		return TimeoutFailure
	}
	return NetworkFailure
}
