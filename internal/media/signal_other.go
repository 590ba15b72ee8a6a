// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !unix

package media

import (
	"errors"
	"os"
)

var errNoSuspend = errors.New("process suspension not supported on this platform")

func suspendProcess(p *os.Process) error {
	return errNoSuspend
}

func resumeProcess(p *os.Process) error {
	return errNoSuspend
}
