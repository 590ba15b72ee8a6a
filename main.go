// lofi - a prompt driven lofi mood generator for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SehejGit/lofi-hack/internal/cli"
	"github.com/SehejGit/lofi-hack/internal/config"
	"github.com/SehejGit/lofi-hack/internal/logger"
	"github.com/SehejGit/lofi-hack/internal/telemetry"
	"github.com/SehejGit/lofi-hack/internal/ui/mood"
	"github.com/SehejGit/lofi-hack/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		exit("version", args, cli.PrintVersion(args))
		return
	case cli.CmdUnknown:
		err := &cli.UsageError{Message: "unknown command: " + args.Name, Usage: "lofi help"}
		exit(args.Name, args, err)
		return
	}

	shutdown := setupDiagnostics(cmd, args)

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdListen:
		err = cli.HandleListen(args)
	case cli.CmdGenerate:
		err = cli.HandleGenerate(args)
	case cli.CmdThemes:
		err = cli.HandleThemes(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	}

	cli.ReportError(args.Name, err)
	shutdown()
	exit(args.Name, args, err)
}

// exit reports err and terminates with its exit code.
func exit(command string, args cli.Args, err error) {
	if err == nil {
		return
	}
	if command == "" {
		command = "lofi"
	}
	cli.DisplayError(command, err, args.JSON)
	os.Exit(cli.GetExitCode(err))
}

// setupDiagnostics routes the log to the log file, starts tracing and
// Sentry. Verbose line commands keep logging on stderr. The returned func
// flushes everything.
func setupDiagnostics(cmd cli.Command, args cli.Args) func() {
	cfg := config.Global()

	var logFile io.Closer
	if cmd == cli.CmdTUI || !args.Verbose {
		f, err := tea.LogToFile(cfg.Telemetry.LogFile, "lofi")
		if err != nil {
			log.SetOutput(io.Discard)
		} else {
			logFile = f
		}
	}

	flushSentry, err := logger.Init(logger.Options{
		DSN:     cfg.Telemetry.SentryDSN,
		Release: "lofi@" + Version,
		Debug:   args.Verbose,
	})
	if err != nil {
		logger.Warn("SENTRY_DISABLED", logger.Fields{"error": err.Error()})
	}

	stopTracer, err := telemetry.InitTracer(telemetry.Options{
		ServiceName:    "lofi",
		ServiceVersion: Version,
		TraceFile:      cfg.Telemetry.TraceFile,
	})
	if err != nil {
		logger.Warn("TRACING_DISABLED", logger.Fields{"error": err.Error()})
		stopTracer = func(context.Context) error { return nil }
	}

	logger.Info("STARTUP", logger.Fields{"command": args.Name, "version": Version})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := stopTracer(ctx); err != nil {
			logger.Warn("TRACE_FLUSH_FAILED", logger.Fields{"error": err.Error()})
		}
		flushSentry()
		if logFile != nil {
			logFile.Close()
		}
	}
}

// runTUI starts the full screen mood generator.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("run the mood generator"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if cfg == nil {
		return err
	}

	rt, err := cli.NewRuntime(cfg, cli.RuntimeOptions{Watch: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	opts := mood.Options{
		Orchestrator: rt.Orchestrator,
		Theme:        styles.NewTheme(cfg.UI.Theme),
		ShowPreview:  cfg.UI.ShowPreview,
	}
	// A nil *storage.Store must not become a non-nil interface.
	if rt.Store != nil {
		opts.Store = rt.Store
	}

	p := tea.NewProgram(mood.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("mood generator: %w", err)
	}
	return nil
}
