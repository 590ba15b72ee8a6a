// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SehejGit/lofi-hack/internal/logger"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// SuggestionProvider returns mood words for a prompt.
type SuggestionProvider interface {
	Suggest(ctx context.Context, prompt string) ([]string, error)
}

// ImageProvider returns an encoded image for a prompt.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// AudioProvider returns the absolute locator of a playable track.
type AudioProvider interface {
	GenerateAudio(ctx context.Context, prompt string) (string, error)
}

// ImageHandle is a decoded, displayable image. Release frees it.
type ImageHandle interface {
	Release() error
}

// ImageDecoder turns encoded image bytes into a handle.
type ImageDecoder interface {
	Decode(data []byte) (ImageHandle, error)
}

// DefaultSuggestions are shown before the first successful suggestion call
// and whenever one fails or comes back empty.
var DefaultSuggestions = []string{
	"Rainy night in Tokyo",
	"Cozy coffee shop ambiance",
	"Beach sunset meditation",
	"Late night coding session",
	"Forest meditation retreat",
}

// ErrNotPlaying is returned by TogglePlayback when no track is playing.
var ErrNotPlaying = errors.New("no track is playing")

// GenerationRequest is one fired media cycle.
type GenerationRequest struct {
	Prompt     string
	SequenceID uint64
}

// Timings groups the tunable delays.
type Timings struct {
	SuggestionDelay time.Duration
	MediaDelay      time.Duration
	ReadyTimeout    time.Duration
}

// DefaultTimings returns the stock delays.
func DefaultTimings() Timings {
	return Timings{
		SuggestionDelay: DefaultSuggestionDelay,
		MediaDelay:      DefaultMediaDelay,
		ReadyTimeout:    DefaultReadyTimeout,
	}
}

// Options configures an Orchestrator.
type Options struct {
	Suggestions SuggestionProvider
	Images      ImageProvider
	Audio       AudioProvider
	Decoder     ImageDecoder
	Element     AudioElement

	// Clock defaults to the system clock.
	Clock Clock

	// Zero fields fall back to DefaultTimings.
	Timings Timings

	// Defaults replaces DefaultSuggestions when non-empty.
	Defaults []string

	// OnPlaybackChange is called on the event loop for every gate
	// transition. It must not block or call back into the Orchestrator.
	OnPlaybackChange func(from, to PlaybackState, seq uint64)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

type event struct {
	apply   func()
	discard func()
}

// Orchestrator owns the prompt and everything derived from it.
type Orchestrator struct {
	opts  Options
	clock Clock

	events    chan event
	done      chan struct{}
	mu        sync.RWMutex // guards closed
	closed    bool
	closeOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc

	published atomic.Pointer[Snapshot]
	changes   chan struct{}

	// Loop-owned state below.
	stopped      bool
	sched        *Scheduler
	debounce     *Debouncer
	readyTimeout time.Duration
	defaults     []string
	version      uint64

	prompt string

	suggestSeq         uint64
	cancelSuggest      context.CancelFunc
	suggestions        []string
	suggestionsDefault bool
	suggestionsPending bool

	seq          uint64
	cancelCycle  context.CancelFunc
	imagePending bool
	audioPending bool
	image        ImageHandle
	imagePrompt  string
	generated    string

	gate    audioGate
	failure *Failure
}

// New creates an Orchestrator and starts its event loop.
func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Element == nil {
		opts.Element = silentElement{}
	}
	t := opts.Timings
	if t.ReadyTimeout <= 0 {
		t.ReadyTimeout = DefaultReadyTimeout
	}

	o := &Orchestrator{
		opts:         opts,
		clock:        opts.Clock,
		events:       make(chan event, 64),
		done:         make(chan struct{}),
		changes:      make(chan struct{}, 1),
		readyTimeout: t.ReadyTimeout,
		defaults:     DefaultSuggestions,
	}
	if len(opts.Defaults) > 0 {
		o.defaults = append([]string(nil), opts.Defaults...)
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())
	o.sched = NewScheduler(o.clock, o.post)
	o.debounce = NewDebouncer(o.sched, t.SuggestionDelay, t.MediaDelay,
		func() string { return o.prompt },
		o.requestSuggestions,
		o.requestMedia,
	)
	o.suggestions = o.defaults
	o.suggestionsDefault = true
	o.publish()

	go o.loop()
	return o
}

func (o *Orchestrator) loop() {
	defer close(o.done)
	for ev := range o.events {
		if o.stopped {
			if ev.discard != nil {
				ev.discard()
			}
			continue
		}
		ev.apply()
	}
}

// enqueue hands ev to the loop. It must never be called from the loop.
func (o *Orchestrator) enqueue(ev event) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return false
	}
	o.events <- ev
	return true
}

func (o *Orchestrator) post(fn func()) bool {
	return o.enqueue(event{apply: fn})
}

// call runs fn on the loop and waits for it to finish.
func (o *Orchestrator) call(fn func()) bool {
	done := make(chan struct{})
	ran := false
	ok := o.enqueue(event{
		apply: func() {
			defer close(done)
			ran = true
			fn()
		},
		discard: func() { close(done) },
	})
	if !ok {
		return false
	}
	<-done
	return ran
}

// =============================================================================
// INPUT
// =============================================================================

// SetPrompt replaces the prompt and resets both debounce timers. It returns
// once the new prompt is visible in Snapshot.
func (o *Orchestrator) SetPrompt(prompt string) {
	o.call(func() {
		o.prompt = prompt
		o.debounce.Input(prompt)
		o.publish()
	})
}

// Submit replaces the prompt and fires both requests immediately, skipping
// the debounce windows. A blank prompt only cancels pending timers.
func (o *Orchestrator) Submit(prompt string) {
	o.call(func() {
		o.prompt = prompt
		o.debounce.Flush()
		if !isBlank(prompt) {
			o.requestSuggestions(prompt)
			o.requestMedia(prompt)
		}
		o.publish()
	})
}

// TogglePlayback pauses or resumes the playing track.
func (o *Orchestrator) TogglePlayback() error {
	var err error
	ok := o.call(func() {
		if o.gate.state != PlaybackPlaying {
			err = ErrNotPlaying
			return
		}
		if o.gate.paused {
			err = o.opts.Element.Play()
		} else {
			err = o.opts.Element.Pause()
		}
		if err != nil {
			logger.Warn("PLAYBACK_TOGGLE_FAILED", logger.Fields{"seq": o.gate.seq, "error": err.Error()})
			return
		}
		o.gate.paused = !o.gate.paused
		o.publish()
	})
	if !ok {
		return ErrClosed
	}
	return err
}

// SetTimings applies new delays. Pending timers keep their old deadline.
func (o *Orchestrator) SetTimings(t Timings) {
	o.call(func() {
		o.debounce.SetDelays(t.SuggestionDelay, t.MediaDelay)
		if t.ReadyTimeout > 0 {
			o.readyTimeout = t.ReadyTimeout
		}
		short, long := o.debounce.Delays()
		logger.Info("TIMINGS_UPDATED", logger.Fields{
			"suggestions_ms": short.Milliseconds(),
			"media_ms":       long.Milliseconds(),
			"ready_ms":       o.readyTimeout.Milliseconds(),
		})
	})
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

func (o *Orchestrator) requestSuggestions(prompt string) {
	o.suggestSeq++
	tag := o.suggestSeq
	if o.cancelSuggest != nil {
		o.cancelSuggest()
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.cancelSuggest = cancel
	o.suggestionsPending = true
	logger.Info("SUGGESTIONS_REQUESTED", logger.Fields{"tag": tag, "prompt": prompt})

	provider := o.opts.Suggestions
	go func() {
		var words []string
		var err error
		if provider != nil {
			words, err = provider.Suggest(ctx, prompt)
		}
		o.post(func() { o.applySuggestions(tag, words, err) })
	}()
	o.publish()
}

func (o *Orchestrator) applySuggestions(tag uint64, words []string, err error) {
	if tag != o.suggestSeq {
		logger.Info("SUGGESTIONS_STALE", logger.Fields{"tag": tag, "latest": o.suggestSeq})
		return
	}
	o.cancelSuggest()
	o.cancelSuggest = nil
	o.suggestionsPending = false

	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			cleaned = append(cleaned, w)
		}
	}
	switch {
	case err != nil:
		logger.Warn("SUGGESTIONS_FAILED", logger.Fields{"tag": tag, "kind": KindOf(err).String(), "error": err.Error()})
		o.suggestions, o.suggestionsDefault = o.defaults, true
	case len(cleaned) == 0:
		o.suggestions, o.suggestionsDefault = o.defaults, true
	default:
		o.suggestions, o.suggestionsDefault = cleaned, false
	}
	o.publish()
}

// =============================================================================
// MEDIA
// =============================================================================

func (o *Orchestrator) requestMedia(prompt string) {
	o.seq++
	req := GenerationRequest{Prompt: prompt, SequenceID: o.seq}

	if o.cancelCycle != nil {
		o.cancelCycle()
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.cancelCycle = cancel
	o.imagePending = o.opts.Images != nil
	o.audioPending = o.opts.Audio != nil
	o.resetGate()

	logger.Info("MEDIA_REQUESTED", logger.Fields{"seq": req.SequenceID, "prompt": prompt})

	if o.opts.Images != nil {
		go o.fetchImage(ctx, req)
	}
	if o.opts.Audio != nil {
		go o.fetchAudio(ctx, req)
	}
	o.publish()
}

func (o *Orchestrator) fetchImage(ctx context.Context, req GenerationRequest) {
	data, err := o.opts.Images.GenerateImage(ctx, req.Prompt)
	var handle ImageHandle
	if err == nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		} else if o.opts.Decoder == nil {
			err = &Failure{Kind: DecodeFailure, Pipeline: "image", SequenceID: req.SequenceID, Err: errors.New("no image decoder configured")}
		} else if handle, err = o.opts.Decoder.Decode(data); err != nil {
			err = &Failure{Kind: DecodeFailure, Pipeline: "image", SequenceID: req.SequenceID, Err: err}
		}
	}

	release := func() { releaseImage(handle) }
	if !o.enqueue(event{apply: func() { o.applyImage(req, handle, err) }, discard: release}) {
		release()
	}
}

func (o *Orchestrator) applyImage(req GenerationRequest, handle ImageHandle, err error) {
	if req.SequenceID != o.seq {
		logger.Info("IMAGE_STALE", logger.Fields{"seq": req.SequenceID, "latest": o.seq})
		releaseImage(handle)
		return
	}
	o.imagePending = false
	o.finishCycle()

	prev := o.image
	if err != nil {
		o.recordFailure("image", req.SequenceID, err)
		o.image, o.imagePrompt = nil, ""
	} else {
		o.image, o.imagePrompt = handle, req.Prompt
		o.generated = req.Prompt
		logger.Info("IMAGE_APPLIED", logger.Fields{"seq": req.SequenceID})
	}
	o.publish()

	if prev != o.image {
		releaseImage(prev)
	}
}

func releaseImage(h ImageHandle) {
	if h == nil {
		return
	}
	if err := h.Release(); err != nil {
		logger.Warn("IMAGE_RELEASE_FAILED", logger.Fields{"error": err.Error()})
	}
}

func (o *Orchestrator) fetchAudio(ctx context.Context, req GenerationRequest) {
	locator, err := o.opts.Audio.GenerateAudio(ctx, req.Prompt)
	o.post(func() { o.applyAudio(req, locator, err) })
}

func (o *Orchestrator) applyAudio(req GenerationRequest, locator string, err error) {
	if req.SequenceID != o.seq {
		logger.Info("AUDIO_STALE", logger.Fields{"seq": req.SequenceID, "latest": o.seq})
		return
	}
	o.audioPending = false
	o.finishCycle()

	if err != nil {
		o.recordFailure("audio", req.SequenceID, err)
		o.setPlayback(PlaybackFailed)
		o.publish()
		return
	}
	o.generated = req.Prompt
	o.startLoading(req.SequenceID, locator)
	o.publish()
}

// finishCycle releases the cycle context once both results are in.
func (o *Orchestrator) finishCycle() {
	if !o.imagePending && !o.audioPending && o.cancelCycle != nil {
		o.cancelCycle()
		o.cancelCycle = nil
	}
}

// =============================================================================
// AUDIO GATE
// =============================================================================

func (o *Orchestrator) setPlayback(to PlaybackState) {
	from := o.gate.state
	if from == to {
		return
	}
	o.gate.state = to
	logger.Info("AUDIO_STATE", logger.Fields{"seq": o.gate.seq, "from": from.String(), "to": to.String()})
	if o.opts.OnPlaybackChange != nil {
		o.opts.OnPlaybackChange(from, to, o.gate.seq)
	}
}

// resetGate returns the gate to Idle for a new cycle.
func (o *Orchestrator) resetGate() {
	o.gate.abandon()
	if o.gate.state != PlaybackIdle {
		if err := o.opts.Element.Stop(); err != nil {
			logger.Warn("AUDIO_STOP_FAILED", logger.Fields{"error": err.Error()})
		}
	}
	o.gate.seq = o.seq
	o.gate.locator = ""
	o.gate.paused = false
	o.setPlayback(PlaybackIdle)
}

func (o *Orchestrator) startLoading(seq uint64, locator string) {
	o.gate.abandon()
	ctx, cancel := context.WithCancel(o.ctx)
	o.gate.cancel = cancel
	o.gate.seq = seq
	o.gate.locator = locator
	o.gate.paused = false
	o.setPlayback(PlaybackLoading)

	sig := o.opts.Element.Load(ctx, locator)
	clock, timeout := o.clock, o.readyTimeout
	go func() {
		err := awaitReady(ctx, clock, timeout, sig)
		o.post(func() { o.onReadiness(seq, err) })
		if err != nil {
			return
		}
		select {
		case perr := <-sig.Err:
			o.post(func() { o.onPlaybackError(seq, perr) })
		case <-ctx.Done():
		}
	}()
}

func (o *Orchestrator) onReadiness(seq uint64, err error) {
	if !o.gate.current(seq, PlaybackLoading) {
		logger.Info("AUDIO_SIGNAL_IGNORED", logger.Fields{"seq": seq, "current": o.gate.seq})
		return
	}
	if err != nil {
		o.gate.abandon()
		o.recordFailure("audio", seq, err)
		o.setPlayback(PlaybackFailed)
		o.publish()
		return
	}

	o.setPlayback(PlaybackReady)
	if perr := o.opts.Element.Play(); perr != nil {
		o.gate.abandon()
		o.recordFailure("audio", seq, &Failure{Kind: PlaybackFailure, Pipeline: "audio", SequenceID: seq, Err: perr})
		o.setPlayback(PlaybackFailed)
	} else {
		o.setPlayback(PlaybackPlaying)
	}
	o.publish()
}

func (o *Orchestrator) onPlaybackError(seq uint64, err error) {
	if !o.gate.current(seq, PlaybackReady, PlaybackPlaying) {
		return
	}
	if err == nil {
		err = errors.New("player exited")
	}
	o.gate.abandon()
	o.recordFailure("audio", seq, &Failure{Kind: PlaybackFailure, Pipeline: "audio", SequenceID: seq, Err: err})
	o.setPlayback(PlaybackFailed)
	o.publish()
}

func (o *Orchestrator) recordFailure(pipeline string, seq uint64, err error) {
	f := &Failure{Kind: KindOf(err), Pipeline: pipeline, SequenceID: seq, Err: err}
	var inner *Failure
	if errors.As(err, &inner) {
		f.Kind = inner.Kind
		f.Err = inner.Err
	}
	o.failure = f
	logger.Error("GENERATION_FAILED", f.Err, logger.Fields{
		"pipeline": pipeline,
		"seq":      seq,
		"kind":     f.Kind.String(),
	})
}

// =============================================================================
// TEARDOWN
// =============================================================================

// Close cancels pending timers and in-flight work, stops playback and
// releases the current image. Nothing is applied after Close returns.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.call(o.teardown)
		o.mu.Lock()
		o.closed = true
		o.mu.Unlock()
		close(o.events)
		<-o.done
	})
	return nil
}

func (o *Orchestrator) teardown() {
	o.stopped = true
	o.sched.CancelAll()
	o.cancel()
	o.gate.abandon()
	if err := o.opts.Element.Stop(); err != nil {
		logger.Warn("AUDIO_STOP_FAILED", logger.Fields{"error": err.Error()})
	}
	releaseImage(o.image)
	o.image = nil
	logger.Info("ORCHESTRATOR_CLOSED", logger.Fields{"seq": o.seq})
}

// silentElement is used when no audio element is configured. It is ready
// immediately and plays nothing.
type silentElement struct{}

func (silentElement) Load(ctx context.Context, locator string) LoadSignals {
	ready := make(chan struct{})
	close(ready)
	return LoadSignals{Ready: ready, Err: make(chan error)}
}

func (silentElement) Play() error  { return nil }
func (silentElement) Pause() error { return nil }
func (silentElement) Stop() error  { return nil }
