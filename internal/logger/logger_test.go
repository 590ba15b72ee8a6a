// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestFormatFields_SortedAndQuoted(t *testing.T) {
	got := formatFields(Fields{
		"seq":    uint64(3),
		"prompt": "rainy night",
		"kind":   "network",
		"delay":  250 * time.Millisecond,
	})
	assert.Equal(t, `delay=250ms kind=network prompt="rainy night" seq=3`, got)
}

func TestFormatFields_Empty(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
}

func TestInfo_WritesEventLine(t *testing.T) {
	buf := captureLog(t)
	Info("MEDIA_REQUESTED", Fields{"seq": 7})
	assert.Equal(t, "MEDIA_REQUESTED | seq=7\n", buf.String())
}

func TestError_IncludesError(t *testing.T) {
	buf := captureLog(t)
	Error("STORE_FAILED", errors.New("disk full"), Fields{"collection": "saved_themes"})
	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "STORE_FAILED | "))
	assert.Contains(t, line, `error="disk full"`)
	assert.Contains(t, line, "collection=saved_themes")
}

func TestInit_EmptyDSN(t *testing.T) {
	flush, err := Init(Options{})
	require.NoError(t, err)
	require.NotNil(t, flush)
	flush()
}

// recordingTransport keeps events in memory instead of sending them.
type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *recordingTransport) Configure(sentry.ClientOptions)        {}
func (r *recordingTransport) Flush(time.Duration) bool              { return true }
func (r *recordingTransport) FlushWithContext(context.Context) bool { return true }
func (r *recordingTransport) Close()                                {}

func (r *recordingTransport) SendEvent(e *sentry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingTransport) sent() []*sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sentry.Event(nil), r.events...)
}

func initRecording(t *testing.T) *recordingTransport {
	t.Helper()
	captureLog(t)
	sentry.CurrentHub().Scope().ClearBreadcrumbs()
	tr := &recordingTransport{}
	flush, err := Init(Options{DSN: "https://public@sentry.example.com/1", Transport: tr})
	require.NoError(t, err)
	t.Cleanup(func() {
		flush()
		sentry.CurrentHub().BindClient(nil)
		sentry.CurrentHub().Scope().ClearBreadcrumbs()
	})
	return tr
}

func TestError_CapturesSentryEvent(t *testing.T) {
	tr := initRecording(t)

	Info("MEDIA_REQUESTED", Fields{"seq": 4})
	Warn("AUDIO_STOP_FAILED", Fields{"error": "busy"})
	assert.Empty(t, tr.sent(), "breadcrumbs alone send nothing")

	Error("THEME_SAVE_FAILED", errors.New("disk full"), Fields{"collection": "saved_themes"})

	events := tr.sent()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "THEME_SAVE_FAILED", ev.Tags["event"])
	assert.Equal(t, "saved_themes", ev.Extra["collection"])
	require.NotEmpty(t, ev.Exception)
	assert.Equal(t, "disk full", ev.Exception[len(ev.Exception)-1].Value)

	var crumbs []string
	for _, b := range ev.Breadcrumbs {
		crumbs = append(crumbs, b.Message)
	}
	assert.Equal(t, []string{"MEDIA_REQUESTED", "AUDIO_STOP_FAILED"}, crumbs)
}

func TestError_NilErrorNotReported(t *testing.T) {
	tr := initRecording(t)
	Error("COMMAND_FAILED", nil, nil)
	assert.Empty(t, tr.sent())
}
