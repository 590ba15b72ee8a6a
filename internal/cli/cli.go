// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"
	"strings"
)

// Version information, set at build time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdListen
	CmdGenerate
	CmdThemes
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds the parsed command line.
type Args struct {
	// Global flags
	JSON    bool
	Quiet   bool
	Verbose bool

	// Name is the command word as typed.
	Name string

	// Raw holds the arguments after the command word.
	Raw []string
}

const usageText = `lofi - prompt driven lofi mood generator

Type a mood, get mood words while you type, and a matching background and
track once you pause.

Usage:
  lofi                         Start the mood generator (default)
  lofi listen                  Line mode: one prompt per line
  lofi generate "<prompt>"     Run one generation cycle and print the result
  lofi themes [list|add|delete]
                               Manage saved themes
  lofi config [show|get|set|path]
                               Configuration
  lofi status                  Backend reachability and local paths
  lofi version                 Version information
  lofi help                    This help

Generate:
  lofi generate rainy night in tokyo
    --timeout SECONDS          Give up after SECONDS (default: 300)
    --play                     Keep playing the track until Ctrl+C

Themes:
  lofi themes list             Newest first
    --limit N                  Show at most N themes (default: 50)
  lofi themes add <name> <prompt...>
  lofi themes delete <id>

Config:
  lofi config show             Print the effective configuration
  lofi config get <key>        e.g. lofi config get debounce.media_ms
  lofi config set <key> <value>
  lofi config path             Print the config file path

Global flags:
  --json                       Machine readable output
  -q, --quiet                  Less output
  -v, --verbose                Debug logging

Keys (mood generator):
  Tab / S-Tab                  Cycle mood words; Enter adds the word
  Enter                        Generate now
  C-t                          Saved themes; Enter plays the selected one
  C-s                          Save the current theme
  C-p                          Play / pause
  F1                           Help
  C-c                          Quit

Environment:
  LOFI_HOME                    Config directory (default: ~/.lofi)
  LOFI_BACKEND_URL             Backend base URL
  LOFI_PLAYER                  Player command, {file} is the track; "none" disables
  LOFI_THEME                   dark, light or auto
  NO_COLOR                     Disable colored output

Version: %s
`

// PrintUsage prints the help text.
func PrintUsage() {
	fmt.Fprintf(stdout, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		}).Print()
	}
	fmt.Fprintf(stdout, "lofi version %s\n", Version)
	fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(stdout, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(stdout, "  Go:         %s\n", runtime.Version())
	return nil
}

// Parse parses argv, without the program name.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	args.Name = strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch args.Name {
	case "tui":
		return CmdTUI, args
	case "listen", "l":
		return CmdListen, args
	case "generate", "gen", "g":
		return CmdGenerate, args
	case "themes", "theme":
		return CmdThemes, args
	case "config":
		return CmdConfig, args
	case "status", "s":
		return CmdStatus, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

// parseGlobalFlags removes global flags wherever they appear.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	remaining := make([]string, 0, len(argv))
	for _, a := range argv {
		switch a {
		case "--json":
			args.JSON = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		default:
			remaining = append(remaining, a)
		}
	}
	return remaining, args
}
