// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// =============================================================================
// MANUAL CLOCK
// =============================================================================

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every due callback in deadline order
// on the calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due, rest []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case t.at <= c.now:
			t.fired = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending counts live timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// =============================================================================
// PROVIDERS
// =============================================================================

type reply struct {
	words   []string
	data    []byte
	locator string
	err     error
}

type pendingCall struct {
	ctx    context.Context
	prompt string
	reply  chan reply
}

// stubProvider records prompts. With auto set it answers immediately;
// otherwise each call waits for the test to answer it. Answers are
// delivered even after ctx is cancelled, like a backend that ignores
// disconnects.
type stubProvider struct {
	mu      sync.Mutex
	prompts []string
	calls   chan pendingCall
	auto    func(prompt string) reply
}

func newStub(auto func(string) reply) *stubProvider {
	return &stubProvider{calls: make(chan pendingCall, 32), auto: auto}
}

func (s *stubProvider) do(ctx context.Context, prompt string) reply {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	auto := s.auto
	s.mu.Unlock()
	if auto != nil {
		return auto(prompt)
	}
	c := pendingCall{ctx: ctx, prompt: prompt, reply: make(chan reply, 1)}
	s.calls <- c
	return <-c.reply
}

func (s *stubProvider) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func (s *stubProvider) next(t *testing.T) pendingCall {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for provider call")
		return pendingCall{}
	}
}

func (s *stubProvider) Suggest(ctx context.Context, prompt string) ([]string, error) {
	r := s.do(ctx, prompt)
	return r.words, r.err
}

func (s *stubProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	r := s.do(ctx, prompt)
	return r.data, r.err
}

func (s *stubProvider) GenerateAudio(ctx context.Context, prompt string) (string, error) {
	r := s.do(ctx, prompt)
	return r.locator, r.err
}

// =============================================================================
// IMAGES
// =============================================================================

type fakeHandle struct {
	name       string
	released   atomic.Bool
	releaseErr error
}

func (h *fakeHandle) Release() error {
	h.released.Store(true)
	return h.releaseErr
}

type fakeDecoder struct {
	mu      sync.Mutex
	handles []*fakeHandle
}

var errCorrupt = errors.New("unknown image format")

func (d *fakeDecoder) Decode(data []byte) (ImageHandle, error) {
	if string(data) == "corrupt" {
		return nil, errCorrupt
	}
	h := &fakeHandle{name: string(data)}
	d.mu.Lock()
	d.handles = append(d.handles, h)
	d.mu.Unlock()
	return h, nil
}

func (d *fakeDecoder) all() []*fakeHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeHandle(nil), d.handles...)
}

// =============================================================================
// AUDIO ELEMENT
// =============================================================================

type fakeLoad struct {
	locator string
	ctx     context.Context
	ready   chan struct{}
	errs    chan error
	once    sync.Once
}

func (l *fakeLoad) markReady() {
	l.once.Do(func() { close(l.ready) })
}

type fakeElement struct {
	mu      sync.Mutex
	loads   []*fakeLoad
	plays   int
	pauses  int
	stops   int
	playErr error
}

func (e *fakeElement) Load(ctx context.Context, locator string) LoadSignals {
	l := &fakeLoad{locator: locator, ctx: ctx, ready: make(chan struct{}), errs: make(chan error, 1)}
	e.mu.Lock()
	e.loads = append(e.loads, l)
	e.mu.Unlock()
	return LoadSignals{Ready: l.ready, Err: l.errs}
}

func (e *fakeElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plays++
	return e.playErr
}

func (e *fakeElement) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauses++
	return nil
}

func (e *fakeElement) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	return nil
}

func (e *fakeElement) load(t *testing.T, i int) *fakeLoad {
	t.Helper()
	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.loads) > i
	}, waitTimeout, time.Millisecond)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads[i]
}

func (e *fakeElement) counts() (plays, pauses, stops int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plays, e.pauses, e.stops
}

// =============================================================================
// HARNESS
// =============================================================================

type transition struct {
	from, to PlaybackState
	seq      uint64
}

type harness struct {
	o       *Orchestrator
	clock   *fakeClock
	suggest *stubProvider
	images  *stubProvider
	audio   *stubProvider
	decoder *fakeDecoder
	element *fakeElement

	mu          sync.Mutex
	transitions []transition
}

func newHarness(t *testing.T, suggest, images, audio *stubProvider) *harness {
	t.Helper()
	h := &harness{
		clock:   &fakeClock{},
		suggest: suggest,
		images:  images,
		audio:   audio,
		decoder: &fakeDecoder{},
		element: &fakeElement{},
	}
	h.o = New(Options{
		Suggestions: suggest,
		Images:      images,
		Audio:       audio,
		Decoder:     h.decoder,
		Element:     h.element,
		Clock:       h.clock,
		OnPlaybackChange: func(from, to PlaybackState, seq uint64) {
			h.mu.Lock()
			h.transitions = append(h.transitions, transition{from, to, seq})
			h.mu.Unlock()
		},
	})
	t.Cleanup(func() { _ = h.o.Close() })
	return h
}

func (h *harness) states() []PlaybackState {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []PlaybackState
	for _, tr := range h.transitions {
		out = append(out, tr.to)
	}
	return out
}

// sync waits until every event queued so far has been applied.
func (h *harness) sync() {
	h.o.call(func() {})
}

func (h *harness) waitFor(t *testing.T, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	s, err := h.o.WaitFor(ctx, cond)
	require.NoError(t, err, "last snapshot: %+v", s)
	return s
}

func autoWords(words ...string) func(string) reply {
	return func(string) reply { return reply{words: words} }
}

func autoImage(prompt string) reply {
	return reply{data: []byte(prompt)}
}

func autoLocator(prompt string) reply {
	return reply{locator: "http://backend.test/audio/" + prompt + ".mp3"}
}
