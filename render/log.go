// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"log/slog"

	"github.com/gogpu/glaze"
)

// logger returns the module-wide logger configured via glaze.SetLogger.
func logger() *slog.Logger { return glaze.Logger() }
