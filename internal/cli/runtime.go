// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/SehejGit/lofi-hack/internal/config"
	"github.com/SehejGit/lofi-hack/internal/generator"
	"github.com/SehejGit/lofi-hack/internal/logger"
	"github.com/SehejGit/lofi-hack/internal/media"
	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/storage"
)

// RuntimeOptions selects which parts of the runtime are started.
type RuntimeOptions struct {
	// NoStore skips opening the saved themes database.
	NoStore bool

	// NoPlayer buffers tracks without starting the player.
	NoPlayer bool

	// Watch applies config file edits to the running orchestrator.
	Watch bool
}

// Runtime is everything a front end needs to drive one orchestrator.
type Runtime struct {
	Config       *config.Config
	Client       *generator.Client
	Element      *media.Element
	Store        *storage.Store
	Orchestrator *orchestrator.Orchestrator

	watcher *config.Watcher
	cancel  context.CancelFunc
}

// TimingsFromConfig converts the debounce and audio settings.
func TimingsFromConfig(cfg *config.Config) orchestrator.Timings {
	return orchestrator.Timings{
		SuggestionDelay: cfg.SuggestionDelay(),
		MediaDelay:      cfg.MediaDelay(),
		ReadyTimeout:    cfg.ReadyTimeout(),
	}
}

// NewRuntime builds the generator client, media, store and orchestrator
// from cfg.
func NewRuntime(cfg *config.Config, opts RuntimeOptions) (*Runtime, error) {
	client, err := generator.NewClientWithConfig(&generator.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.RequestTimeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("generator client: %w", err)
	}

	player := cfg.Audio.PlayerCommand
	if opts.NoPlayer {
		player = nil
	}
	element := media.NewElement(media.ElementConfig{
		CacheDir:      cfg.Audio.CacheDir,
		ReadyBytes:    cfg.Audio.ReadyBytes,
		PlayerCommand: player,
	})

	r := &Runtime{Config: cfg, Client: client, Element: element}

	if !opts.NoStore {
		store, err := storage.Open(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open theme store: %w", err)
		}
		r.Store = store
	}

	r.Orchestrator = orchestrator.New(orchestrator.Options{
		Suggestions: client,
		Images:      client,
		Audio:       client,
		Decoder:     media.NewDecoder(cfg.Storage.ImageDir),
		Element:     element,
		Timings:     TimingsFromConfig(cfg),
	})

	if opts.Watch {
		r.startWatcher()
	}
	return r, nil
}

// startWatcher is best effort; a missing config directory only disables
// hot reload.
func (r *Runtime) startWatcher() {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return
	}
	w, err := config.NewWatcher(path, config.DefaultWatchDebounce, func(c *config.Config) {
		config.SetGlobal(c)
		r.Orchestrator.SetTimings(TimingsFromConfig(c))
	})
	if err != nil {
		logger.Warn("CONFIG_WATCH_DISABLED", logger.Fields{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Watch(ctx); err != nil {
		cancel()
		_ = w.Close()
		logger.Warn("CONFIG_WATCH_DISABLED", logger.Fields{"error": err.Error()})
		return
	}
	r.watcher = w
	r.cancel = cancel
}

// Close stops the orchestrator, the watcher and the store.
func (r *Runtime) Close() error {
	var errs []error
	if r.cancel != nil {
		r.cancel()
	}
	if r.watcher != nil {
		errs = append(errs, r.watcher.Close())
	}
	if r.Orchestrator != nil {
		errs = append(errs, r.Orchestrator.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	return errors.Join(errs...)
}

// loadConfig loads the configuration. An unreadable file is logged and
// the defaults are used; an invalid result is an error. The startup
// warning on stderr comes from config.Global.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		logger.Warn("CONFIG_LOAD_FAILED", logger.Fields{"error": err.Error()})
	}
	return cfg, nil
}
