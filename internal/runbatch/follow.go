// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"io"
	"os"
	"time"
)

// DefaultPollInterval is how often a sink is checked for new output.
const DefaultPollInterval = 50 * time.Millisecond

// follow copies the sink at path to w as it grows, until done is closed and
// everything written before that has been copied, or ctx is cancelled.
// A sink that does not exist has nothing to show.
func follow(ctx context.Context, path string, done <-chan struct{}, w io.Writer, poll time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	defer f.Close() //nolint:errcheck

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		// Checked before copying so the final copy sees every byte.
		finished := isClosed(done)

		if _, err := io.Copy(w, f); err != nil {
			return err
		}

		if finished {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		case <-ticker.C:
		}
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
