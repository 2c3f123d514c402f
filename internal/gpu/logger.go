// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"log/slog"

	"github.com/gogpu/csg"
)

// slogger returns the module-wide logger configured via csg.SetLogger.
func slogger() *slog.Logger {
	return csg.Logger()
}
