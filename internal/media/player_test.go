// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signalTimeout = 2 * time.Second

func waitReady(t *testing.T, ready <-chan struct{}) {
	t.Helper()
	select {
	case <-ready:
	case <-time.After(signalTimeout):
		t.Fatal("element never became ready")
	}
}

func waitErr(t *testing.T, errs <-chan error) error {
	t.Helper()
	select {
	case err := <-errs:
		return err
	case <-time.After(signalTimeout):
		t.Fatal("element never reported an error")
		return nil
	}
}

func TestElement_DownloadsAndCaches(t *testing.T) {
	body := strings.Repeat("lofi", 4096)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	e := NewElement(ElementConfig{CacheDir: t.TempDir()})
	locator := srv.URL + "/audio/123.mp3"

	sig := e.Load(context.Background(), locator)
	waitReady(t, sig.Ready)

	path := e.CachePath(locator)
	assert.True(t, strings.HasSuffix(path, ".mp3"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.FileExists(t, completeMarker(path))

	sig = e.Load(context.Background(), locator)
	waitReady(t, sig.Ready)
	assert.EqualValues(t, 1, hits.Load(), "second load is served from cache")
}

func TestElement_ReadyBeforeBodyEnds(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 256))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	e := NewElement(ElementConfig{CacheDir: t.TempDir(), ReadyBytes: 128})
	sig := e.Load(context.Background(), srv.URL+"/audio/slow.mp3")
	waitReady(t, sig.Ready)
}

func TestElement_HTTPErrorReported(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	e := NewElement(ElementConfig{CacheDir: t.TempDir()})
	sig := e.Load(context.Background(), srv.URL+"/audio/missing.mp3")

	err := waitErr(t, sig.Err)
	assert.Contains(t, err.Error(), "404")
	select {
	case <-sig.Ready:
		t.Fatal("ready after error")
	default:
	}
}

func TestElement_CancelStopsBuffering(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
		w.(http.Flusher).Flush()
		close(started)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	e := NewElement(ElementConfig{CacheDir: t.TempDir()})
	ctx, cancel := context.WithCancel(context.Background())
	locator := srv.URL + "/audio/abandoned.mp3"
	sig := e.Load(ctx, locator)

	<-started
	cancel()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(e.CachePath(locator))
		return os.IsNotExist(err)
	}, signalTimeout, 5*time.Millisecond)
	select {
	case err := <-sig.Err:
		t.Fatalf("abandoned load reported %v", err)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestElement_PlayWithoutPlayer(t *testing.T) {
	e := NewElement(ElementConfig{CacheDir: t.TempDir()})
	assert.ErrorIs(t, e.Play(), ErrNothingLoaded)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	sig := e.Load(context.Background(), srv.URL+"/a.mp3")
	waitReady(t, sig.Ready)
	assert.NoError(t, e.Play())
	assert.NoError(t, e.Pause())
	assert.NoError(t, e.Stop())
}

func TestElement_PlayerCrashReported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	e := NewElement(ElementConfig{
		CacheDir:      t.TempDir(),
		PlayerCommand: []string{"sh", "-c", "exit 3", FilePlaceholder},
	})
	sig := e.Load(context.Background(), srv.URL+"/a.mp3")
	waitReady(t, sig.Ready)
	require.NoError(t, e.Play())

	err := waitErr(t, sig.Err)
	assert.ErrorIs(t, err, ErrPlayerExited)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestElement_PlayerCleanExitReported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses true")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	e := NewElement(ElementConfig{
		CacheDir:      t.TempDir(),
		PlayerCommand: []string{"true", FilePlaceholder},
	})
	sig := e.Load(context.Background(), srv.URL+"/a.mp3")
	waitReady(t, sig.Ready)
	require.NoError(t, e.Play())

	assert.ErrorIs(t, waitErr(t, sig.Err), ErrPlayerExited)
}

func TestElement_PauseResumeStop(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	e := NewElement(ElementConfig{
		CacheDir:      t.TempDir(),
		PlayerCommand: []string{"sleep", "30"},
	})
	sig := e.Load(context.Background(), srv.URL+"/a.mp3")
	waitReady(t, sig.Ready)

	require.NoError(t, e.Play())
	require.NoError(t, e.Pause())
	require.NoError(t, e.Play())
	require.NoError(t, e.Stop())

	select {
	case err := <-sig.Err:
		t.Fatalf("stopping the player reported %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}
