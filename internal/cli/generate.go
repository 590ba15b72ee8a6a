// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// generate.go - headless generation cycle.
//
// Command: generate
// Short:   Run one generation cycle and print the result
// Aliases: gen, g
//
// Examples:
//   lofi generate rainy night in tokyo
//   lofi generate "forest retreat" --json
//   lofi generate beach sunset --play
//   lofi generate lighthouse --out ./lighthouse.png

package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/SehejGit/lofi-hack/internal/logger"
	"github.com/SehejGit/lofi-hack/internal/orchestrator"
	"github.com/SehejGit/lofi-hack/internal/util"
)

const generateUsage = `lofi generate "<prompt>" [--timeout SECONDS] [--out FILE] [--play]`

// defaultGenerateTimeout bounds a headless cycle.
const defaultGenerateTimeout = 300 * time.Second

// cycleDriver is the part of the orchestrator a headless cycle needs.
type cycleDriver interface {
	Submit(prompt string)
	WaitFor(ctx context.Context, cond func(orchestrator.Snapshot) bool) (orchestrator.Snapshot, error)
}

// GenerateResult is what a cycle produced.
type GenerateResult struct {
	Prompt      string   `json:"prompt"`
	Suggestions []string `json:"suggestions"`
	Defaults    bool     `json:"default_suggestions"`
	ImagePath   string   `json:"image_path,omitempty"`
	Locator     string   `json:"audio_url,omitempty"`
	Playback    string   `json:"playback"`
	Failure     string   `json:"failure,omitempty"`
	ElapsedMs   int64    `json:"elapsed_ms"`
}

// pathed is implemented by image handles backed by a file.
type pathed interface {
	Path() string
}

// cycleSettled reports whether every request of the submitted cycle has
// resolved and the track is no longer buffering.
func cycleSettled(s orchestrator.Snapshot) bool {
	return !s.Generating && !s.SuggestionsLoading && s.Playback != orchestrator.PlaybackLoading
}

// runCycle submits prompt and waits for the cycle to settle.
func runCycle(ctx context.Context, d cycleDriver, prompt string) (GenerateResult, error) {
	start := time.Now()
	d.Submit(prompt)
	snap, err := d.WaitFor(ctx, cycleSettled)
	res := resultFromSnapshot(prompt, snap)
	res.ElapsedMs = time.Since(start).Milliseconds()
	return res, err
}

func resultFromSnapshot(prompt string, s orchestrator.Snapshot) GenerateResult {
	res := GenerateResult{
		Prompt:      prompt,
		Suggestions: s.Suggestions,
		Defaults:    s.DefaultSuggestions,
		Locator:     s.Locator,
		Playback:    s.Playback.String(),
	}
	if p, ok := s.Background.(pathed); ok {
		res.ImagePath = p.Path()
	}
	if s.LastFailure != nil && s.LastFailure.SequenceID == s.SequenceID {
		res.Failure = s.LastFailure.Error()
	}
	return res
}

// keepImage copies the session background at src to out, or into dir under
// a content derived name, so it outlives the runtime.
func keepImage(src, dir, out string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read background: %w", err)
	}
	dst := out
	if dst == "" {
		sum := blake2b.Sum256(data)
		dst = filepath.Join(dir, "background-"+hex.EncodeToString(sum[:8])+filepath.Ext(src))
	}
	if err := util.AtomicWriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("keep background: %w", err)
	}
	return dst, nil
}

// HandleGenerate handles "lofi generate".
func HandleGenerate(args Args) error {
	p := NewArgParser(args.Raw)
	prompt := strings.TrimSpace(JoinPositionalArgs(p, 0))
	if prompt == "" {
		return ErrMissingArgument("prompt", generateUsage)
	}
	timeout := defaultGenerateTimeout
	if secs := p.FlagIntOrDefault("timeout", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	play := p.BoolFlag("play")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := NewRuntime(cfg, RuntimeOptions{NoStore: true, NoPlayer: !play})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cycleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !args.JSON && !args.Quiet {
		fmt.Fprintln(stderr, DimStyle.Render("generating "+prompt+" ..."))
	}
	res, err := runCycle(cycleCtx, rt.Orchestrator, prompt)
	if err != nil {
		logger.Warn("GENERATE_ABORTED", logger.Fields{"error": err.Error()})
		return fmt.Errorf("generate: %w", err)
	}
	if res.ImagePath != "" {
		kept, err := keepImage(res.ImagePath, cfg.Storage.OutputDir, p.Flag("out"))
		if err != nil {
			return err
		}
		res.ImagePath = kept
	}

	if args.JSON {
		if err := NewJSONResponse("generate", res).Print(); err != nil {
			return err
		}
	} else {
		printGenerateResult(res, args.Quiet)
	}

	if play && res.Playback == orchestrator.PlaybackPlaying.String() {
		fmt.Fprintln(stderr, DimStyle.Render("playing, Ctrl+C to stop"))
		<-ctx.Done()
	}
	return nil
}

func printGenerateResult(res GenerateResult, quiet bool) {
	if quiet {
		if res.Locator != "" {
			fmt.Fprintln(stdout, res.Locator)
		}
		return
	}

	fmt.Fprintln(stdout, TitleStyle.Render(res.Prompt))
	fmt.Fprintln(stdout, formatWords(res.Suggestions, res.Defaults))

	image := res.ImagePath
	if image == "" {
		image = DimStyle.Render("default background")
	}
	fmt.Fprintln(stdout, RenderLabel("Background")+image)

	track := res.Locator
	if track == "" {
		track = DimStyle.Render("none")
	}
	fmt.Fprintln(stdout, RenderLabel("Track")+track)
	fmt.Fprintln(stdout, RenderLabel("Playback")+ValueStyle.Render(res.Playback))
	fmt.Fprintln(stdout, RenderLabel("Took")+ValueStyle.Render(formatDurationShort(time.Duration(res.ElapsedMs)*time.Millisecond)))
	if res.Failure != "" {
		fmt.Fprintln(stdout, RenderLabel("Failure")+ErrorStyle.Render(res.Failure))
	}
}
