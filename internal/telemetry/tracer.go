// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/SehejGit/lofi-hack/internal/logger"
)

// ShutdownFunc flushes pending spans and closes the trace file.
type ShutdownFunc func(context.Context) error

// Options configures InitTracer.
type Options struct {
	ServiceName    string
	ServiceVersion string

	// TraceFile receives spans. Empty disables tracing.
	TraceFile string

	// Writer overrides TraceFile, mainly for tests.
	Writer io.Writer

	// Sync exports each span as it ends instead of batching.
	Sync bool
}

// InitTracer installs a global tracer provider exporting to a file. When
// no destination is configured the global no-op provider is left alone
// and the returned shutdown does nothing.
func InitTracer(opts Options) (ShutdownFunc, error) {
	w := opts.Writer
	var file *os.File
	if w == nil {
		if opts.TraceFile == "" {
			return func(context.Context) error { return nil }, nil
		}
		if err := os.MkdirAll(filepath.Dir(opts.TraceFile), 0700); err != nil {
			return nil, fmt.Errorf("trace dir: %w", err)
		}
		f, err := os.OpenFile(opts.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		file, w = f, f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}

	name := opts.ServiceName
	if name == "" {
		name = "lofi"
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", name)}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", opts.ServiceVersion))
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	if err != nil {
		// Conflicting schema URLs still yield a usable resource.
		res = resource.NewSchemaless(attrs...)
	}

	spanOpt := sdktrace.WithBatcher(exporter)
	if opts.Sync {
		spanOpt = sdktrace.WithSyncer(exporter)
	}
	tp := sdktrace.NewTracerProvider(spanOpt, sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	logger.Info("TRACING_ENABLED", logger.Fields{"service": name, "file": opts.TraceFile})

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if file != nil {
			err = errors.Join(err, file.Close())
		}
		return err
	}, nil
}
