// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"time"
)

// =============================================================================
// CLOCK
// =============================================================================

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock creates timers. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return realClock{}
}

// =============================================================================
// SCHEDULER
// =============================================================================

// armed is one live timer slot.
type armed struct {
	timer Timer
	gen   uint64
}

// Scheduler keeps at most one pending callback per key.
//
// Scheduler is not safe for concurrent use. It is owned by the event loop:
// Arm and Cancel must be called on the loop, and fired callbacks are handed
// back to the loop through post before they run. A callback whose slot was
// re-armed or cancelled in the meantime is dropped on arrival, so a timer
// that fires concurrently with Cancel never runs.
type Scheduler struct {
	clock  Clock
	post   func(func()) bool
	timers map[string]armed
	gen    uint64
}

// NewScheduler creates a scheduler. post delivers fired callbacks to the
// owning loop and reports false once the loop has stopped.
func NewScheduler(clock Clock, post func(func()) bool) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		clock:  clock,
		post:   post,
		timers: make(map[string]armed),
	}
}

// Arm schedules fn to run after delay, replacing any pending callback
// under the same key.
func (s *Scheduler) Arm(key string, delay time.Duration, fn func()) {
	s.Cancel(key)
	s.gen++
	gen := s.gen
	t := s.clock.AfterFunc(delay, func() {
		s.post(func() {
			cur, ok := s.timers[key]
			if !ok || cur.gen != gen {
				return
			}
			delete(s.timers, key)
			fn()
		})
	})
	s.timers[key] = armed{timer: t, gen: gen}
}

// Cancel stops the pending callback under key, if any.
func (s *Scheduler) Cancel(key string) {
	if a, ok := s.timers[key]; ok {
		a.timer.Stop()
		delete(s.timers, key)
	}
}

// CancelAll stops every pending callback.
func (s *Scheduler) CancelAll() {
	for key := range s.timers {
		s.Cancel(key)
	}
}

// Pending reports whether a callback is armed under key.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.timers[key]
	return ok
}
