// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
)

// Watch cancels the context on the first signal received on sigCh.
// A second signal of the same type exits the process with InterruptedExitCode.
// It returns when sigCh is closed.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Logger(ctx).Warn("watchdog", "detail", "received second signal of type, exiting", "signal", sig.String())
			exit(InterruptedExitCode)

			return
		}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, cancelling session", "signal", sig.String())

		seen[sig] = struct{}{}

		cancel()
	}
}
