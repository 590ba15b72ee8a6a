// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - status command.
//
// Command: status
// Short:   Backend reachability and local paths
// Aliases: s
//
// Output Fields:
//   Backend    Base URL and whether it answers
//   Player     Player executable, or "none"
//   Themes     Saved theme count and database path
//   Cache      Audio cache directory and size

package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/SehejGit/lofi-hack/internal/config"
	"github.com/SehejGit/lofi-hack/internal/generator"
	"github.com/SehejGit/lofi-hack/internal/storage"
)

// StatusData is the --json payload of the status command.
type StatusData struct {
	BackendURL     string `json:"backend_url"`
	BackendUp      bool   `json:"backend_up"`
	BackendError   string `json:"backend_error,omitempty"`
	BackendLatency int64  `json:"backend_latency_ms,omitempty"`
	Player         string `json:"player"`
	PlayerFound    bool   `json:"player_found"`
	DatabasePath   string `json:"database_path"`
	SavedThemes    int    `json:"saved_themes"`
	CacheDir       string `json:"cache_dir"`
	CacheBytes     int64  `json:"cache_bytes"`
	ConfigPath     string `json:"config_path"`
}

// backendChecker is satisfied by *generator.Client.
type backendChecker interface {
	CheckRunning(ctx context.Context) error
}

// HandleStatus handles "lofi status".
func HandleStatus(args Args) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := generator.NewClientWithConfig(&generator.ClientConfig{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	data := collectStatus(ctx, cfg, client)

	if args.JSON {
		return NewJSONResponse("status", data).Print()
	}
	printStatus(data)
	return nil
}

func collectStatus(ctx context.Context, cfg *config.Config, backend backendChecker) StatusData {
	data := StatusData{
		BackendURL:   cfg.Backend.BaseURL,
		DatabasePath: cfg.Storage.DatabasePath,
		CacheDir:     cfg.Audio.CacheDir,
	}
	data.ConfigPath, _ = config.ConfigPathTOML()

	start := time.Now()
	if err := backend.CheckRunning(ctx); err != nil {
		data.BackendError = err.Error()
	} else {
		data.BackendUp = true
		data.BackendLatency = time.Since(start).Milliseconds()
	}

	data.Player = "none"
	if len(cfg.Audio.PlayerCommand) > 0 {
		data.Player = cfg.Audio.PlayerCommand[0]
		_, err := exec.LookPath(data.Player)
		data.PlayerFound = err == nil
	}

	// Status never creates the database.
	if _, err := os.Stat(cfg.Storage.DatabasePath); err == nil {
		if store, err := storage.Open(cfg.Storage.DatabasePath); err == nil {
			data.SavedThemes, _ = store.Count(ctx, storage.CollectionSavedThemes)
			store.Close()
		}
	}

	data.CacheBytes = dirSize(cfg.Audio.CacheDir)
	return data
}

func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func printStatus(d StatusData) {
	fmt.Fprintln(stdout, TitleStyle.Render("lofi status"))

	backend := RenderStatus("down") + " " + d.BackendURL
	if d.BackendUp {
		backend = RenderStatus("ok") + " " + d.BackendURL + DimStyle.Render(fmt.Sprintf(" (%dms)", d.BackendLatency))
	}
	fmt.Fprintln(stdout, RenderLabel("Backend")+backend)
	if d.BackendError != "" {
		fmt.Fprintln(stdout, RenderLabel("")+DimStyle.Render(d.BackendError))
	}

	player := RenderStatus("off") + " none"
	if d.Player != "none" {
		state := "warn"
		if d.PlayerFound {
			state = "ok"
		}
		player = RenderStatus(state) + " " + d.Player
	}
	fmt.Fprintln(stdout, RenderLabel("Player")+player)

	fmt.Fprintln(stdout, RenderLabel("Themes")+ValueStyle.Render(fmt.Sprintf("%d saved", d.SavedThemes))+DimStyle.Render("  "+d.DatabasePath))
	fmt.Fprintln(stdout, RenderLabel("Cache")+ValueStyle.Render(formatBytes(d.CacheBytes))+DimStyle.Render("  "+d.CacheDir))
	fmt.Fprintln(stdout, RenderLabel("Config")+DimStyle.Render(d.ConfigPath))

	if !d.BackendUp {
		hint := []string{
			"start the backend, or point lofi at it:",
			"  lofi config set backend.base_url http://host:8000",
		}
		fmt.Fprintln(stdout, "\n"+WarningStyle.Render(strings.Join(hint, "\n")))
	}
}
