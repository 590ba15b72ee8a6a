// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// listen.go - line mode front end.
//
// Command: listen
// Short:   Generate from prompts typed one line at a time
// Aliases: l
//
// Each line is submitted at once; there is no per keystroke debounce in
// line mode. Updates are printed as they arrive.
//
// Interactive Commands:
//   /pause, /p          Pause or resume the track
//   /save               Save the current theme
//   /themes             List saved themes
//   /load N             Generate saved theme N from the last listing
//   /words              Show the current mood words
//   /help, /h           Show commands
//   /quit, /q           Exit (Ctrl+D also exits)

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/SehejGit/lofi-hack/internal/config"
	"github.com/SehejGit/lofi-hack/internal/logger"
	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/storage"
)

const listenHelp = `/pause  pause or resume    /save    save the current theme
/themes list saved themes  /load N  generate saved theme N
/words  show mood words    /quit    exit`

// listenDriver is the part of the orchestrator line mode uses.
type listenDriver interface {
	Submit(prompt string)
	TogglePlayback() error
	Snapshot() orchestrator.Snapshot
	Changes() <-chan struct{}
}

// listenSession holds line mode state.
type listenSession struct {
	orch   listenDriver
	store  themeStore
	listed []storage.Record
}

// HandleListen handles "lofi listen".
func HandleListen(args Args) error {
	if err := RequiresTTY("run listen"); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := NewRuntime(cfg, RuntimeOptions{Watch: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	s := &listenSession{orch: rt.Orchestrator, store: rt.Store}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.follow(ctx, rt.Orchestrator.Snapshot())

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	history := historyPath()
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line, history)

	if !args.Quiet {
		fmt.Fprintln(stdout, TitleStyle.Render("lofi listen")+DimStyle.Render("  type a mood and press Enter; /help for commands"))
	}

	for {
		input, err := line.Prompt("mood> ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(stdout)
			}
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := s.handle(ctx, input)
		if err != nil {
			fmt.Fprintln(stderr, ErrorStyle.Render("[Error]")+" "+err.Error())
		}
		if quit {
			return nil
		}
	}
}

func historyPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "listen_history")
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}

// handle runs one input line. quit is true when the session should end.
func (s *listenSession) handle(ctx context.Context, input string) (quit bool, err error) {
	if !strings.HasPrefix(input, "/") {
		s.orch.Submit(input)
		return false, nil
	}

	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h":
		fmt.Fprintln(stdout, DimStyle.Render(listenHelp))

	case "/pause", "/p", "/play":
		err := s.orch.TogglePlayback()
		if errors.Is(err, orchestrator.ErrNotPlaying) {
			fmt.Fprintln(stdout, DimStyle.Render("nothing playing yet"))
			return false, nil
		}
		return false, err

	case "/words", "/w":
		snap := s.orch.Snapshot()
		fmt.Fprintln(stdout, formatWords(snap.Suggestions, snap.DefaultSuggestions))

	case "/save":
		return false, s.save(ctx)

	case "/themes", "/t":
		return false, s.listThemes(ctx)

	case "/load":
		if len(fields) < 2 {
			return false, errors.New("usage: /load N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(s.listed) {
			return false, fmt.Errorf("no theme %s; run /themes first", fields[1])
		}
		rec := s.listed[n-1]
		fmt.Fprintln(stdout, DimStyle.Render("generating ")+rec.Prompt)
		s.orch.Submit(rec.Prompt)

	default:
		return false, fmt.Errorf("unknown command %s; /help lists commands", fields[0])
	}
	return false, nil
}

func (s *listenSession) save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("theme store unavailable")
	}
	snap := s.orch.Snapshot()
	if snap.Generated == "" {
		fmt.Fprintln(stdout, DimStyle.Render("generate a theme first"))
		return nil
	}
	rec, err := s.store.Add(ctx, storage.CollectionSavedThemes, storage.Record{Name: snap.Generated, Prompt: snap.Prompt})
	if err != nil {
		return err
	}
	logger.Info("THEME_SAVED", logger.Fields{"id": rec.ID, "name": rec.Name})
	fmt.Fprintln(stdout, SuccessStyle.Render("saved")+" "+rec.Name)
	return nil
}

func (s *listenSession) listThemes(ctx context.Context) error {
	if s.store == nil {
		return errors.New("theme store unavailable")
	}
	recs, err := s.store.List(ctx, storage.CollectionSavedThemes, 20)
	if err != nil {
		return err
	}
	s.listed = recs
	if len(recs) == 0 {
		fmt.Fprintln(stdout, DimStyle.Render("nothing saved yet"))
		return nil
	}
	now := time.Now()
	for i, r := range recs {
		fmt.Fprintf(stdout, "%s %s %s\n", DimStyle.Render(fmt.Sprintf("%2d.", i+1)), r.Name, DimStyle.Render(savedAgo(r.CreatedAt, now)))
	}
	return nil
}

// follow prints state changes relative to prev until ctx is done. It is the
// only reader of the change channel.
func (s *listenSession) follow(ctx context.Context, prev orchestrator.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.orch.Changes():
		}
		cur := s.orch.Snapshot()
		for _, line := range describeChange(prev, cur) {
			fmt.Fprintln(stdout, line)
		}
		prev = cur
	}
}

// describeChange returns one line per user visible difference.
func describeChange(prev, cur orchestrator.Snapshot) []string {
	var out []string
	if !slices.Equal(prev.Suggestions, cur.Suggestions) {
		out = append(out, formatWords(cur.Suggestions, cur.DefaultSuggestions))
	}
	if !prev.Generating && cur.Generating {
		out = append(out, DimStyle.Render("generating ")+cur.Prompt)
	}
	if cur.Background != prev.Background {
		if p, ok := cur.Background.(pathed); ok {
			out = append(out, RenderLabel("Background")+p.Path())
		} else if cur.Background == nil {
			out = append(out, RenderLabel("Background")+DimStyle.Render("default"))
		}
	}
	if cur.Playback != prev.Playback || cur.Paused != prev.Paused {
		out = append(out, RenderLabel("Playback")+RenderPlayback(cur.Playback, cur.Paused))
	}
	if cur.LastFailure != nil && cur.LastFailure != prev.LastFailure {
		out = append(out, ErrorStyle.Render("failed: ")+cur.LastFailure.Error())
	}
	return out
}

func formatWords(words []string, defaults bool) string {
	label := "Mood words"
	if defaults {
		label = "Try"
	}
	styled := make([]string, len(words))
	for i, w := range words {
		styled[i] = ChipStyle.Render(w)
	}
	return RenderLabel(label) + strings.Join(styled, DimStyle.Render(" · "))
}
