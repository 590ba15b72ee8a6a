// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger writes event lines in the form
//
//	EVENT_NAME | key=value key=value
//
// through the standard log package and mirrors them to Sentry when a
// client has been initialised.
package logger

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// Fields represents structured log fields.
type Fields map[string]interface{}

// Options configures Sentry reporting.
type Options struct {
	DSN         string
	Environment string
	Release     string
	Debug       bool

	// Transport replaces the HTTP transport when set.
	Transport sentry.Transport
}

const flushTimeout = 2 * time.Second

// Init initialises the Sentry client. An empty DSN leaves reporting off and
// is not an error. The returned func flushes buffered events.
func Init(opts Options) (func(), error) {
	if opts.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		Debug:       opts.Debug,
		Transport:   opts.Transport,
	})
	if err != nil {
		return func() {}, fmt.Errorf("sentry init: %w", err)
	}
	return func() { sentry.Flush(flushTimeout) }, nil
}

// Info logs an informational event.
func Info(event string, fields Fields) {
	log.Printf("%s | %s", event, formatFields(fields))
	breadcrumb("info", sentry.LevelInfo, event, fields)
}

// Warn logs a recoverable problem.
func Warn(event string, fields Fields) {
	log.Printf("%s | %s", event, formatFields(fields))
	breadcrumb("warning", sentry.LevelWarning, event, fields)
}

// Error logs a failure and reports it to Sentry.
func Error(event string, err error, fields Fields) {
	log.Printf("%s | error=%q %s", event, errString(err), formatFields(fields))

	if hub := sentry.CurrentHub(); hub.Client() != nil && err != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("event", event)
			for key, value := range fields {
				scope.SetExtra(key, value)
			}
			hub.CaptureException(err)
		})
	}
}

func breadcrumb(kind string, level sentry.Level, event string, fields Fields) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     kind,
			Category: "log",
			Message:  event,
			Data:     fields,
			Level:    level,
		})
	}
}

// formatFields renders fields as key=value pairs sorted by key so lines are
// stable across runs.
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"=") || val == "" {
			return fmt.Sprintf("%q", val)
		}
		return val
	case time.Duration:
		return val.String()
	case error:
		return fmt.Sprintf("%q", val.Error())
	default:
		return fmt.Sprintf("%v", val)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
