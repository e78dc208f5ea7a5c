// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_FirstSignalCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()

	sigCh <- syscall.SIGINT

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled after the first signal")
	}

	close(sigCh)
	wg.Wait()
}

func TestWatch_SecondSignalExits(t *testing.T) {
	var (
		mu   sync.Mutex
		code = -1
	)

	stubs := gostub.Stub(&exit, func(c int) {
		mu.Lock()
		defer mu.Unlock()

		code = c
	})
	defer stubs.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	sigCh <- syscall.SIGTERM
	sigCh <- syscall.SIGTERM

	Watch(ctx, sigCh, cancel)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, InterruptedExitCode, code)
	require.Error(t, ctx.Err())
}

func TestWatch_DifferentSignalsDoNotExit(t *testing.T) {
	exited := false

	stubs := gostub.Stub(&exit, func(int) { exited = true })
	defer stubs.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	sigCh <- syscall.SIGINT
	sigCh <- syscall.SIGHUP
	close(sigCh)

	Watch(ctx, sigCh, cancel)

	assert.False(t, exited)
	assert.Error(t, ctx.Err())
}
