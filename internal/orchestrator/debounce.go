// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"strings"
	"time"
)

// Default debounce windows.
const (
	DefaultSuggestionDelay = 500 * time.Millisecond
	DefaultMediaDelay      = 2000 * time.Millisecond
)

const (
	keySuggestions = "suggestions"
	keyMedia       = "media"
)

// Debouncer derives SuggestionsRequested and MediaRequested events from
// prompt edits. Both timers are reset on every edit and both read the
// prompt as it is when they elapse.
type Debouncer struct {
	sched   *Scheduler
	short   time.Duration
	long    time.Duration
	current func() string

	onSuggestions func(prompt string)
	onMedia       func(prompt string)
}

// NewDebouncer creates a debouncer on top of sched. current returns the
// prompt at elapse time.
func NewDebouncer(sched *Scheduler, short, long time.Duration, current func() string, onSuggestions, onMedia func(string)) *Debouncer {
	if short <= 0 {
		short = DefaultSuggestionDelay
	}
	if long <= 0 {
		long = DefaultMediaDelay
	}
	return &Debouncer{
		sched:         sched,
		short:         short,
		long:          long,
		current:       current,
		onSuggestions: onSuggestions,
		onMedia:       onMedia,
	}
}

// Input records an edit. A blank prompt cancels both timers.
func (d *Debouncer) Input(prompt string) {
	if isBlank(prompt) {
		d.sched.Cancel(keySuggestions)
		d.sched.Cancel(keyMedia)
		return
	}
	d.sched.Arm(keySuggestions, d.short, func() {
		if p := d.current(); !isBlank(p) {
			d.onSuggestions(p)
		}
	})
	d.sched.Arm(keyMedia, d.long, func() {
		if p := d.current(); !isBlank(p) {
			d.onMedia(p)
		}
	})
}

// Flush cancels both timers without firing them.
func (d *Debouncer) Flush() {
	d.sched.Cancel(keySuggestions)
	d.sched.Cancel(keyMedia)
}

// SetDelays changes the windows used by subsequent edits.
func (d *Debouncer) SetDelays(short, long time.Duration) {
	if short > 0 {
		d.short = short
	}
	if long > 0 {
		d.long = long
	}
}

// Delays returns the current windows.
func (d *Debouncer) Delays() (short, long time.Duration) {
	return d.short, d.long
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
