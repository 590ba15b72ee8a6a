// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/blake2b"

	"github.com/SehejGit/lofi-hack/internal/logger"
	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/util"
)

// FilePlaceholder is replaced with the cached track path in the player
// command.
const FilePlaceholder = "{file}"

// DefaultPlayerCommand loops the track without opening a window.
var DefaultPlayerCommand = []string{"ffplay", "-nodisp", "-autoexit", "-loop", "0", "-loglevel", "quiet", FilePlaceholder}

// ErrNothingLoaded is returned by Play when no track has been loaded.
var ErrNothingLoaded = errors.New("no track loaded")

// ErrPlayerExited is reported when the player ends on its own.
var ErrPlayerExited = errors.New("player exited")

// ElementConfig configures an Element.
type ElementConfig struct {
	// CacheDir holds downloaded tracks.
	CacheDir string

	// ReadyBytes signals readiness after this many bytes. Zero waits for
	// the whole body.
	ReadyBytes int64

	// PlayerCommand is the argv used to play a track. Empty plays nothing.
	PlayerCommand []string

	// HTTPClient defaults to a client with an otelhttp transport.
	HTTPClient *http.Client
}

// Element downloads and plays one track at a time.
type Element struct {
	cfg    ElementConfig
	client *http.Client

	mu  sync.Mutex
	cur *track
}

var _ orchestrator.AudioElement = (*Element)(nil)

type track struct {
	locator string
	path    string
	errs    chan error

	proc   *playerProc
	paused bool
}

type playerProc struct {
	p        *os.Process
	stopping bool
}

// report delivers err to the gate without blocking. Only the first error
// per track is kept.
func (t *track) report(err error) {
	select {
	case t.errs <- err:
	default:
	}
}

// NewElement creates an audio element.
func NewElement(cfg ElementConfig) *Element {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(os.TempDir(), "lofi-audio")
	}
	return &Element{cfg: cfg, client: client}
}

// CachePath returns where locator is stored.
func (e *Element) CachePath(locator string) string {
	sum := blake2b.Sum256([]byte(locator))
	ext := ".audio"
	if u, err := url.Parse(locator); err == nil {
		if x := path.Ext(u.Path); x != "" && len(x) <= 6 {
			ext = x
		}
	}
	return filepath.Join(e.cfg.CacheDir, hex.EncodeToString(sum[:12])+ext)
}

// Load stops the current track and starts buffering locator. Buffering
// stops when ctx is done; a partially written file is removed.
func (e *Element) Load(ctx context.Context, locator string) orchestrator.LoadSignals {
	ready := make(chan struct{})
	errs := make(chan error, 1)
	t := &track{locator: locator, path: e.CachePath(locator), errs: errs}

	e.mu.Lock()
	e.stopLocked()
	e.cur = t
	e.mu.Unlock()

	if _, err := os.Stat(completeMarker(t.path)); err == nil {
		logger.Info("AUDIO_CACHE_HIT", logger.Fields{"path": t.path})
		close(ready)
	} else {
		go e.download(ctx, t, ready)
	}
	return orchestrator.LoadSignals{Ready: ready, Err: errs}
}

func (e *Element) download(ctx context.Context, t *track, ready chan struct{}) {
	var once sync.Once
	markReady := func() { once.Do(func() { close(ready) }) }

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.locator, nil)
	if err != nil {
		t.report(fmt.Errorf("audio request: %w", err))
		return
	}
	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			t.report(fmt.Errorf("audio download: %w", err))
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.report(fmt.Errorf("audio download: %s", resp.Status))
		return
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		t.report(fmt.Errorf("audio cache dir: %w", err))
		return
	}
	f, err := os.Create(t.path)
	if err != nil {
		t.report(fmt.Errorf("audio cache file: %w", err))
		return
	}

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				os.Remove(t.path)
				t.report(fmt.Errorf("audio cache write: %w", werr))
				return
			}
			written += int64(n)
			if e.cfg.ReadyBytes > 0 && written >= e.cfg.ReadyBytes {
				markReady()
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			os.Remove(t.path)
			if ctx.Err() == nil {
				t.report(fmt.Errorf("audio download: %w", rerr))
			}
			return
		}
	}

	if err := f.Close(); err != nil {
		t.report(fmt.Errorf("audio cache close: %w", err))
		return
	}
	if err := util.AtomicWriteFile(completeMarker(t.path), []byte(t.locator), 0600); err != nil {
		logger.Warn("AUDIO_CACHE_MARKER_FAILED", logger.Fields{"error": err.Error()})
	}
	logger.Info("AUDIO_BUFFERED", logger.Fields{"bytes": written, "path": t.path})
	markReady()
}

func completeMarker(p string) string {
	return p + ".complete"
}

// Play starts or resumes the player for the loaded track.
func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.cur
	if t == nil {
		return ErrNothingLoaded
	}
	if len(e.cfg.PlayerCommand) == 0 {
		logger.Info("AUDIO_NO_PLAYER", logger.Fields{"path": t.path})
		return nil
	}
	if t.proc != nil {
		if t.paused {
			if err := resumeProcess(t.proc.p); err != nil {
				return fmt.Errorf("resume player: %w", err)
			}
			t.paused = false
		}
		return nil
	}

	argv := make([]string, len(e.cfg.PlayerCommand))
	for i, a := range e.cfg.PlayerCommand {
		argv[i] = strings.ReplaceAll(a, FilePlaceholder, t.path)
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player %s: %w", argv[0], err)
	}
	pp := &playerProc{p: cmd.Process}
	t.proc = pp
	t.paused = false
	logger.Info("AUDIO_PLAYER_STARTED", logger.Fields{"pid": cmd.Process.Pid, "player": argv[0]})

	go func() {
		err := cmd.Wait()
		e.mu.Lock()
		stopping := pp.stopping
		if t.proc == pp {
			t.proc = nil
		}
		e.mu.Unlock()
		switch {
		case stopping:
		case err != nil:
			t.report(fmt.Errorf("%w: %w", ErrPlayerExited, err))
		default:
			t.report(ErrPlayerExited)
		}
	}()
	return nil
}

// Pause suspends the player. Where processes cannot be suspended the
// player is stopped and the next Play starts the track over.
func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.cur
	if t == nil || t.proc == nil || t.paused {
		return nil
	}
	if err := suspendProcess(t.proc.p); err != nil {
		e.killLocked(t)
		return nil
	}
	t.paused = true
	return nil
}

// Stop kills the player and forgets the current track.
func (e *Element) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

func (e *Element) stopLocked() {
	if e.cur == nil {
		return
	}
	e.killLocked(e.cur)
	e.cur = nil
}

func (e *Element) killLocked(t *track) {
	if t.proc == nil {
		return
	}
	t.proc.stopping = true
	if err := t.proc.p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("AUDIO_PLAYER_KILL_FAILED", logger.Fields{"error": err.Error()})
	}
	t.proc = nil
	t.paused = false
}
