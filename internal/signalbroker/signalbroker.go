// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for the OS signals that should end a session.
// By default it listens for SIGHUP, SIGINT, SIGTERM and SIGQUIT.
//
// Watch turns the first signal into a context cancellation, which drives the
// orchestrator's teardown. A second signal of the same type means the user has
// given up waiting for teardown, and the process exits immediately.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
)

// InterruptedExitCode is the exit status used when a second signal forces the process to exit.
const InterruptedExitCode = 130

var termSignals = []os.Signal{
	syscall.SIGHUP,
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// exit is replaced in tests.
var exit = os.Exit

// New creates a new signal channel subscribed to the given signals,
// or to the default termination signals when none are given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes the channel from all signals.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
