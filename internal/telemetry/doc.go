// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry sets up OpenTelemetry tracing for lofi.
//
// Spans from the generation client and its HTTP transport are written as
// JSON lines to a local file. Nothing is sent over the network.
//
// # Usage
//
//	shutdown, err := telemetry.InitTracer(telemetry.Options{
//	    ServiceName: "lofi",
//	    TraceFile:   cfg.Telemetry.TraceFile,
//	})
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
package telemetry
