// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// themes.go - saved theme management.
//
// Command: themes
// Short:   List, add and delete saved themes
//
// Examples:
//   lofi themes                    List saved themes, newest first
//   lofi themes list --limit 5
//   lofi themes add "rainy night" rainy night in tokyo cozy
//   lofi themes delete 3f2b...

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/SehejGit/lofi-hack/internal/storage"
	"github.com/SehejGit/lofi-hack/internal/util"
)

const themesUsage = "lofi themes [list [--limit N] | add <name> <prompt...> | delete <id>]"

const defaultThemesLimit = 50

// themeStore is the part of storage.Store the themes command uses.
type themeStore interface {
	Add(ctx context.Context, collection string, rec storage.Record) (storage.Record, error)
	List(ctx context.Context, collection string, limit int) ([]storage.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// HandleThemes handles "lofi themes".
func HandleThemes(args Args) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("open theme store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return runThemes(ctx, store, args)
}

func runThemes(ctx context.Context, store themeStore, args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "", "list", "ls":
		recs, err := store.List(ctx, storage.CollectionSavedThemes, p.FlagIntOrDefault("limit", defaultThemesLimit))
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("themes list", recs).Print()
		}
		printThemes(recs, time.Now())
		return nil

	case "add":
		name := p.Positional(1)
		prompt := strings.TrimSpace(JoinPositionalArgs(p, 2))
		if name == "" {
			return ErrMissingArgument("name", themesUsage)
		}
		if prompt == "" {
			prompt = name
		}
		rec, err := store.Add(ctx, storage.CollectionSavedThemes, storage.Record{Name: name, Prompt: prompt})
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("themes add", rec).Print()
		}
		if !args.Quiet {
			fmt.Fprintln(stdout, SuccessStyle.Render("saved")+" "+rec.Name+" "+DimStyle.Render(rec.ID))
		}
		return nil

	case "delete", "rm", "remove":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("id", themesUsage)
		}
		id, err := resolveThemeID(ctx, store, id)
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, storage.CollectionSavedThemes, id); err != nil {
			return fmt.Errorf("delete theme %s: %w", id, err)
		}
		if args.JSON {
			return NewJSONResponse("themes delete", map[string]string{"id": id}).Print()
		}
		if !args.Quiet {
			fmt.Fprintln(stdout, SuccessStyle.Render("deleted")+" "+id)
		}
		return nil

	default:
		return ErrUnknownSubcommand("themes", p.Subcommand(), themesUsage)
	}
}

// printThemes writes the themes as a markdown table, rendered when stdout
// is a terminal.
func printThemes(recs []storage.Record, now time.Time) {
	if len(recs) == 0 {
		fmt.Fprintln(stdout, DimStyle.Render("nothing saved yet; press C-s in the mood generator to save a theme"))
		return
	}

	md := themesMarkdown(recs, now)
	if IsStdoutTTY() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()),
		)
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(stdout, out)
				return
			}
		}
	}
	fmt.Fprint(stdout, md)
}

func themesMarkdown(recs []storage.Record, now time.Time) string {
	var b strings.Builder
	b.WriteString("## Saved themes\n\n")
	b.WriteString("| Name | Prompt | Saved | ID |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "| %s | %s | %s | `%s` |\n",
			mdCell(util.TruncateWidth(r.Name, 32)),
			mdCell(util.TruncateWidth(r.Prompt, 48)),
			savedAgo(r.CreatedAt, now),
			shortID(r.ID),
		)
	}
	return b.String()
}

// resolveThemeID expands the short id printed by "themes list".
func resolveThemeID(ctx context.Context, store themeStore, prefix string) (string, error) {
	recs, err := store.List(ctx, storage.CollectionSavedThemes, 0)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range recs {
		if r.ID == prefix {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", &UsageError{Message: "ambiguous theme id: " + prefix}
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("theme %s: %w", prefix, storage.ErrNotFound)
	}
	return match, nil
}

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func savedAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
