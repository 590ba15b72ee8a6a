// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - config command.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Print the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Change one value in the config file
//   reset               Write the default configuration
//   path                Print the config file path
//
// Examples:
//   lofi config set backend.base_url http://gpu-box:8000
//   lofi config set debounce.media_ms 1500
//   lofi config set audio.player_command "mpv --no-video {file}"
//   lofi config get ui.theme

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/SehejGit/lofi-hack/internal/config"
)

const configUsage = "lofi config [show | get <key> | set <key> <value> | reset | path]"

// HandleConfig handles "lofi config".
func HandleConfig(args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "", "show":
		return configShow(args)
	case "get":
		return configGet(args, p.Positional(1))
	case "set":
		return configSet(args, p.Positional(1), JoinPositionalArgs(p, 2))
	case "reset":
		return configReset(args)
	case "path":
		return configPath(args)
	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Fprintln(stdout, k)
		}
		return nil
	default:
		return ErrUnknownSubcommand("config", p.Subcommand(), configUsage)
	}
}

func configShow(args Args) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if args.JSON {
		// Round trip through String so the DSN stays redacted.
		fmt.Fprintln(stdout, cfg.String())
		return nil
	}
	text, err := cfg.TOML()
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if path, err := config.ConfigPathTOML(); err == nil && !args.Quiet {
		fmt.Fprintln(stdout, DimStyle.Render("# "+path))
	}
	if ColorsEnabled() {
		text = highlightTOML(text)
	}
	fmt.Fprint(stdout, text)
	return nil
}

func configGet(args Args, key string) error {
	if key == "" {
		return ErrMissingArgument("key", configUsage)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	val, err := cfg.Get(key)
	if err != nil {
		return &UsageError{Message: err.Error(), Usage: "lofi config keys"}
	}
	if key == "telemetry.sentry_dsn" && val != "" {
		val = "[REDACTED]"
	}
	if args.JSON {
		return NewJSONResponse("config get", map[string]interface{}{"key": key, "value": val}).Print()
	}
	if argv, ok := val.([]string); ok {
		val = strings.Join(argv, " ")
	}
	fmt.Fprintln(stdout, val)
	return nil
}

// configSet edits the file contents only, so environment overrides never
// leak into the saved file.
func configSet(args Args, key, value string) error {
	if key == "" {
		return ErrMissingArgument("key", configUsage)
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Message: err.Error(), Usage: configUsage}
	}
	check := cfg.Clone()
	check.SetDefaults()
	if err := check.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("config set", map[string]string{"key": key, "value": value}).Print()
	}
	if !args.Quiet {
		fmt.Fprintln(stdout, SuccessStyle.Render("set")+" "+key+" = "+value)
	}
	return nil
}

func configReset(args Args) error {
	if err := config.Save(config.Default()); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Fprintln(stdout, SuccessStyle.Render("configuration reset to defaults"))
	}
	return nil
}

func configPath(args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	if args.JSON {
		dir, _ := config.ConfigDir()
		return NewJSONResponse("config path", map[string]string{"path": path, "dir": dir}).Print()
	}
	fmt.Fprintln(stdout, path)
	return nil
}

// highlightTOML colors TOML for the terminal. It returns text unchanged
// when highlighting fails.
func highlightTOML(text string) string {
	lexer := lexers.Get("toml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var b strings.Builder
	if err := formatter.Format(&b, style, it); err != nil {
		return text
	}
	return b.String()
}
