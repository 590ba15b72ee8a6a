// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the lofi command line: argument parsing, the
// non-TUI commands and the runtime wiring shared with the TUI.
//
// # Commands
//
//   - (none) / tui: full screen mood generator
//   - listen: line mode front end with history
//   - generate: one headless generation cycle
//   - themes: list, add and delete saved themes
//   - config: show, get, set and locate the configuration
//   - status: backend reachability and local paths
//
// Commands that print data accept --json.
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdGenerate:
//	    err = cli.HandleGenerate(args)
//	}
package cli
