// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"errors"
	"fmt"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
)

// ClientError represents an error from the generation client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type so wrapped causes still compare equal.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == e.Message
}

// FailureKind maps the error onto the orchestrator's failure kinds.
func (e *ClientError) FailureKind() orchestrator.ErrorKind {
	if e.Type == ErrTypeInvalidResponse {
		return orchestrator.DecodeFailure
	}
	return orchestrator.NetworkFailure
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeInvalidRequest
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning  = &ClientError{Type: ErrTypeNotRunning, Message: "generation backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrEmptyPrompt = &ClientError{Type: ErrTypeInvalidRequest, Message: "prompt is empty"}
)

// IsNotRunning checks if an error indicates the backend is unreachable.
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}
