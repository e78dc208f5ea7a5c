// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
	"github.com/matt-FFFFFF/qtox/internal/progress"
	"github.com/matt-FFFFFF/qtox/internal/routine"
	"github.com/matt-FFFFFF/qtox/internal/signalbroker"
	"golang.org/x/sync/errgroup"
)

const (
	// ReapTimeout is how long teardown waits for units before killing them.
	ReapTimeout = 5 * time.Second
	// ExitInterrupted is the status of a session interrupted before any failure was known.
	ExitInterrupted = signalbroker.InterruptedExitCode
	// ExitInternal is the status of a session that could not start.
	ExitInternal = 1

	tempDirPrefix = "qtox-"
)

// ErrCreateSessionDir is returned when the session directory cannot be created.
var ErrCreateSessionDir = errors.New("failed to create session directory")

// Session runs a batch of routines. A Session is used once.
type Session struct {
	ID    string
	Dir   string // Temporary directory holding the sinks, set by Run
	Units []*Unit

	out          io.Writer
	reporter     progress.Reporter
	reapTimeout  time.Duration
	pollInterval time.Duration
	tempRoot     string

	status   int
	failed   bool
	finished bool
	teardown sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithOutput sets where replayed output and the result banner are written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithReporter sets the progress reporter. Defaults to progress.NullReporter.
func WithReporter(r progress.Reporter) Option {
	return func(s *Session) {
		s.reporter = r
	}
}

// WithReapTimeout sets how long teardown waits before killing units.
func WithReapTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.reapTimeout = d
	}
}

// WithPollInterval sets how often sinks are checked for new output.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		s.pollInterval = d
	}
}

// WithTempRoot sets the directory the session directory is created in.
// Defaults to the system temporary directory.
func WithTempRoot(dir string) Option {
	return func(s *Session) {
		s.tempRoot = dir
	}
}

// NewSession creates a session with one pending unit per routine, in order.
func NewSession(routines []routine.Routine, opts ...Option) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		out:          os.Stdout,
		reporter:     progress.NullReporter{},
		reapTimeout:  ReapTimeout,
		pollInterval: DefaultPollInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.Units = make([]*Unit, len(routines))
	for i, r := range routines {
		s.Units[i] = newUnit(s.ID, i, r, "", s.reporter)
	}

	return s
}

// Run runs the routines in a new session and returns the aggregate status.
func Run(ctx context.Context, routines []routine.Routine, opts ...Option) int {
	return NewSession(routines, opts...).Run(ctx)
}

// Run launches every unit, replays their output in order and tears the session down.
// The result is the first non-zero exit code in unit order, ExitInterrupted
// when ctx is cancelled before a failure is known, or 0.
func (s *Session) Run(ctx context.Context) (status int) {
	logger := ctxlog.Logger(ctx).With("session", s.ID)

	dir, err := os.MkdirTemp(s.tempRoot, tempDirPrefix+s.ID+"-")
	if err != nil {
		logger.Error("failed to start session", "error", errors.Join(ErrCreateSessionDir, err))
		fmt.Fprintln(s.out, resultBanner(ExitInternal)) //nolint:errcheck

		return ExitInternal
	}

	s.Dir = dir
	logger.Debug("session started", "dir", dir, "units", len(s.Units))

	// Replaced on every normal return; a panic reports failure.
	status = ExitInternal

	defer func() {
		s.Teardown(ctx)
		fmt.Fprintln(s.out, resultBanner(status)) //nolint:errcheck
	}()

	s.launch(ctx)
	interrupted := s.replay(ctx)

	status = s.status

	if !interrupted {
		s.finished = true
		return status
	}

	logger.Debug("session interrupted")

	if !s.failed {
		return ExitInterrupted
	}

	return status
}

// launch starts every unit without waiting for any of them.
func (s *Session) launch(ctx context.Context) {
	for _, u := range s.Units {
		u.Sink = filepath.Join(s.Dir, strconv.Itoa(u.Index))

		if err := u.Start(ctx); err != nil {
			ctxlog.Error(ctx, "failed to start environment", "env", u.Routine.Display, "error", err)
		}
	}
}

// replay streams each unit's sink in order until a unit fails, then
// terminates the remaining units without showing their output.
// It reports whether ctx was cancelled before every unit was replayed.
func (s *Session) replay(ctx context.Context) bool {
	for _, u := range s.Units {
		if s.failed {
			s.report(u, progress.EventSuppressed, 0)
			u.Terminate(ctx)

			continue
		}

		if ctx.Err() != nil {
			return true
		}

		s.report(u, progress.EventReplaying, 0)

		if err := s.replayUnit(ctx, u); err != nil {
			if ctx.Err() == nil {
				ctxlog.Warn(ctx, "failed to replay output", "env", u.Routine.Display, "error", err)

				select {
				case <-u.Done():
				case <-ctx.Done():
				}
			}

			if !isClosed(u.Done()) {
				return true
			}
		}

		s.record(u)
	}

	return false
}

// record takes the exit code of a unit that has ended.
func (s *Session) record(u *Unit) {
	code := u.ExitCode()
	if code != 0 {
		s.failed = true
		s.status = code
		s.report(u, progress.EventFailed, code)

		return
	}

	s.report(u, progress.EventSucceeded, 0)
}

// replayUnit follows the unit's sink and waits for the unit concurrently.
func (s *Session) replayUnit(ctx context.Context, u *Unit) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return follow(gctx, u.Sink, u.Done(), s.out, s.pollInterval)
	})

	g.Go(func() error {
		select {
		case <-u.Done():
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	return g.Wait()
}

// Teardown ends the session. It runs once: when the session did not finish it
// terminates every unit, then it reaps all units and removes the session directory.
func (s *Session) Teardown(ctx context.Context) {
	s.teardown.Do(func() {
		if !s.finished {
			for _, u := range s.Units {
				u.Terminate(ctx)
			}
		}

		s.reap(ctx)

		if s.Dir == "" {
			return
		}

		if err := os.RemoveAll(s.Dir); err != nil {
			ctxlog.Debug(ctx, "failed to remove session directory", "dir", s.Dir, "error", err)
		}
	})
}

// reap waits for every unit to end, killing those still running after the reap timeout.
func (s *Session) reap(ctx context.Context) {
	timer := time.NewTimer(s.reapTimeout)
	defer timer.Stop()

	expired := false

	for _, u := range s.Units {
		if u.State() == StatePending {
			u.Terminate(ctx)
		}

		if !expired {
			select {
			case <-u.Done():
				continue
			case <-timer.C:
				expired = true
			}
		}

		if isClosed(u.Done()) {
			continue
		}

		ctxlog.Debug(ctx, "killing unit after reap timeout", "env", u.Routine.Display)
		u.Kill(ctx)
		<-u.Done()
	}
}

func (s *Session) report(u *Unit, t progress.EventType, code int) {
	s.reporter.Report(progress.Event{
		Session:   s.ID,
		Unit:      u.Index,
		Name:      u.Routine.Display,
		Type:      t,
		ExitCode:  code,
		Timestamp: time.Now(),
	})
}
