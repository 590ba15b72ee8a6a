// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/SehejGit/lofi-hack/internal/config"
	"github.com/SehejGit/lofi-hack/internal/generator"
	"github.com/SehejGit/lofi-hack/internal/logger"
	"github.com/SehejGit/lofi-hack/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return e.Message + "\nusage: " + e.Usage
	}
	return e.Message
}

// ErrMissingArgument returns a UsageError for a missing argument.
func ErrMissingArgument(name, usage string) error {
	return &UsageError{Message: "missing argument: " + name, Usage: usage}
}

// ErrUnknownSubcommand returns a UsageError for an unknown subcommand.
func ErrUnknownSubcommand(command, sub, usage string) error {
	return &UsageError{Message: fmt.Sprintf("unknown %s subcommand: %s", command, sub), Usage: usage}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to stderr, or as a JSON error response.
func DisplayError(command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Print()
		return
	}
	fmt.Fprintln(stderr, ErrorStyle.Render("Error:")+" "+err.Error())
}

// ReportError sends a failed command to error reporting. Usage, config and
// lookup mistakes are left out.
func ReportError(command string, err error) {
	switch GetExitCode(err) {
	case ExitSuccess, ExitUsageError, ExitConfigError, ExitNotFoundError:
		return
	}
	logger.Error("COMMAND_FAILED", err, logger.Fields{"command": command})
}

// GetExitCode maps err onto an exit code.
func GetExitCode(err error) int {
	var (
		usageErr  *UsageError
		configErr config.ValidateErrors
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.Is(err, storage.ErrNotFound):
		return ExitNotFoundError
	case generator.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case generator.IsNotRunning(err), generator.StatusCode(err) != 0:
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}
