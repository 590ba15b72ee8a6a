// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// runNow is a post func that runs callbacks on the caller.
func runNow(fn func()) bool {
	fn()
	return true
}

func TestScheduler_ArmReplacesPending(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, runNow)

	var fired []string
	s.Arm("a", 100*time.Millisecond, func() { fired = append(fired, "first") })
	clock.Advance(50 * time.Millisecond)
	s.Arm("a", 100*time.Millisecond, func() { fired = append(fired, "second") })

	clock.Advance(60 * time.Millisecond)
	assert.Empty(t, fired, "replaced timer must not fire")

	clock.Advance(40 * time.Millisecond)
	assert.Equal(t, []string{"second"}, fired)
	assert.False(t, s.Pending("a"))
}

func TestScheduler_KeysAreIndependent(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, runNow)

	var fired []string
	s.Arm("short", 10*time.Millisecond, func() { fired = append(fired, "short") })
	s.Arm("long", 30*time.Millisecond, func() { fired = append(fired, "long") })

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"short"}, fired)
	assert.True(t, s.Pending("long"))

	clock.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"short", "long"}, fired)
}

func TestScheduler_CancelAll(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, runNow)

	count := 0
	s.Arm("a", time.Second, func() { count++ })
	s.Arm("b", time.Second, func() { count++ })
	s.CancelAll()

	clock.Advance(time.Hour)
	assert.Zero(t, count)
	assert.Zero(t, clock.Pending())
}

func TestScheduler_FiredButQueuedCallbackIsInertAfterCancel(t *testing.T) {
	clock := &fakeClock{}
	var queue []func()
	s := NewScheduler(clock, func(fn func()) bool {
		queue = append(queue, fn)
		return true
	})

	ran := false
	s.Arm("a", time.Millisecond, func() { ran = true })
	clock.Advance(time.Millisecond)
	if assert.Len(t, queue, 1) {
		s.Cancel("a")
		queue[0]()
	}
	assert.False(t, ran)
}

func TestScheduler_RearmedWhileQueued(t *testing.T) {
	clock := &fakeClock{}
	var queue []func()
	s := NewScheduler(clock, func(fn func()) bool {
		queue = append(queue, fn)
		return true
	})

	var fired []int
	s.Arm("a", time.Millisecond, func() { fired = append(fired, 1) })
	clock.Advance(time.Millisecond)
	s.Arm("a", time.Millisecond, func() { fired = append(fired, 2) })
	clock.Advance(time.Millisecond)

	for _, fn := range queue {
		fn()
	}
	assert.Equal(t, []int{2}, fired)
}
