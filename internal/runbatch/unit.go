// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
	"github.com/matt-FFFFFF/qtox/internal/progress"
	"github.com/matt-FFFFFF/qtox/internal/routine"
)

const (
	// ExitSinkFailed is the exit code of a unit whose sink could not be created.
	ExitSinkFailed = 1
	// ExitNotExecutable is the exit code of a step whose process could not be started.
	ExitNotExecutable = 126
	// ExitNotFound is the exit code of a step whose command is not on PATH.
	ExitNotFound = 127

	exitKilled = 128 + 15 // SIGTERM
)

var (
	// ErrCreateSink is returned when a unit's sink file cannot be created.
	ErrCreateSink = errors.New("failed to create output sink")
	// ErrUnitStarted is returned when a unit is started twice.
	ErrUnitStarted = errors.New("unit already started")
)

// UnitState is the lifecycle state of a Unit.
type UnitState int

const (
	StatePending   UnitState = iota // Not started
	StateRunning                    // Steps are running
	StateSucceeded                  // Every step exited 0
	StateFailed                     // A step exited non-zero
	StateKilled                     // Terminated by the session
)

// String returns the state name.
func (s UnitState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Unit runs one routine in the background, one process per invoke step.
// All steps write to the same sink file.
type Unit struct {
	Index   int
	Routine routine.Routine
	Sink    string // Path of the sink file

	session  string
	reporter progress.Reporter

	mu       sync.Mutex
	state    UnitState
	exitCode int
	killed   bool
	proc     *os.Process
	done     chan struct{}
}

func newUnit(session string, index int, r routine.Routine, sink string, reporter progress.Reporter) *Unit {
	if reporter == nil {
		reporter = progress.NullReporter{}
	}

	return &Unit{
		Index:    index,
		Routine:  r,
		Sink:     sink,
		session:  session,
		reporter: reporter,
		done:     make(chan struct{}),
	}
}

// Start creates the sink, writes the banner and runs the steps on a new goroutine.
// It does not wait for any step. A sink that cannot be created fails the unit
// with ExitSinkFailed and the returned error.
func (u *Unit) Start(ctx context.Context) error {
	u.mu.Lock()
	if u.state != StatePending {
		u.mu.Unlock()
		return ErrUnitStarted
	}

	u.state = StateRunning
	u.mu.Unlock()

	sink, err := os.OpenFile(u.Sink, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_EXCL, 0o600)
	if err != nil {
		u.finish(ExitSinkFailed)
		return errors.Join(ErrCreateSink, err)
	}

	if _, err := fmt.Fprintln(sink, envBanner(u.Routine.Display)); err != nil {
		ctxlog.Debug(ctx, "failed to write banner", "unit", u.Index, "error", err)
	}

	u.report(progress.EventLaunched, 0)

	go u.run(ctx, sink)

	return nil
}

// Done is closed when the unit reaches a terminal state.
func (u *Unit) Done() <-chan struct{} {
	return u.done
}

// ExitCode returns the unit's exit code. It is only meaningful after Done is closed.
func (u *Unit) ExitCode() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.exitCode
}

// State returns the current state.
func (u *Unit) State() UnitState {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.state
}

// Terminate asks the unit to stop: no further step starts and the running
// step's process group gets a termination request. It is safe to call any
// number of times, also after the unit has ended.
func (u *Unit) Terminate(ctx context.Context) {
	u.signal(ctx, terminate)
}

// Kill is Terminate with a signal that cannot be ignored.
func (u *Unit) Kill(ctx context.Context) {
	u.signal(ctx, kill)
}

func (u *Unit) signal(ctx context.Context, fn func(*os.Process) error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.isTerminal() {
		return
	}

	u.killed = true

	if u.state == StatePending {
		u.setTerminal(StateKilled, 0)
		return
	}

	if u.proc == nil {
		return
	}

	if err := fn(u.proc); err != nil && !errors.Is(err, os.ErrProcessDone) {
		ctxlog.Debug(ctx, "failed to signal process", "unit", u.Index, "pid", u.proc.Pid, "error", err)
	}
}

func (u *Unit) run(ctx context.Context, sink *os.File) {
	defer sink.Close() //nolint:errcheck

	logger := ctxlog.Logger(ctx).With("unit", u.Index, "env", u.Routine.Name)

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		fmt.Fprintf(sink, "qtox: cannot open %s: %v\n", os.DevNull, err) //nolint:errcheck
		u.finish(ExitNotExecutable)

		return
	}

	defer stdin.Close() //nolint:errcheck

	env := os.Environ()

	for _, step := range u.Routine.Steps() {
		switch s := step.(type) {
		case routine.SetEnv:
			env = setEnv(env, s.Key, s.Value)
		case routine.Invoke:
			code := u.invoke(logger, stdin, sink, env, s.Args)
			if code != 0 {
				u.finish(code)
				return
			}
		}
	}

	u.finish(0)
}

// invoke runs one process to completion and returns its exit status.
func (u *Unit) invoke(log *slog.Logger, stdin, sink *os.File, env []string, args []string) int {
	path := args[0]

	if !isPath(path) {
		p, err := exec.LookPath(path)
		if err != nil {
			fmt.Fprintf(sink, "qtox: %s: command not found\n", path) //nolint:errcheck
			return ExitNotFound
		}

		path = p
	}

	u.mu.Lock()
	if u.killed {
		u.mu.Unlock()
		return exitKilled
	}

	log.Debug("starting process", "path", path, "args", args[1:], "cwd", u.Routine.Dir)

	start := time.Now()

	proc, err := os.StartProcess(path, args, &os.ProcAttr{
		Dir:   u.Routine.Dir,
		Env:   env,
		Files: []*os.File{stdin, sink, sink},
		Sys:   sysProcAttr(),
	})
	if err != nil {
		u.mu.Unlock()
		fmt.Fprintf(sink, "qtox: %s: %v\n", args[0], err) //nolint:errcheck

		return ExitNotExecutable
	}

	u.proc = proc
	u.mu.Unlock()

	state, err := proc.Wait()

	u.mu.Lock()
	u.proc = nil
	u.mu.Unlock()

	if err != nil {
		fmt.Fprintf(sink, "qtox: %s: %v\n", args[0], err) //nolint:errcheck
		return ExitNotExecutable
	}

	code := exitStatus(state)
	log.Debug("process finished", "pid", proc.Pid, "exitCode", code, "elapsed", time.Since(start).Round(time.Millisecond))

	return code
}

// finish moves the unit to its terminal state exactly once.
func (u *Unit) finish(code int) {
	u.mu.Lock()

	if u.isTerminal() {
		u.mu.Unlock()
		return
	}

	state := StateSucceeded

	switch {
	case u.killed:
		state = StateKilled
	case code != 0:
		state = StateFailed
	}

	u.setTerminal(state, code)
	u.mu.Unlock()

	if state == StateKilled {
		u.report(progress.EventKilled, code)
	}
}

// setTerminal must be called with mu held.
func (u *Unit) setTerminal(state UnitState, code int) {
	u.state = state
	u.exitCode = code
	close(u.done)
}

// isTerminal must be called with mu held.
func (u *Unit) isTerminal() bool {
	select {
	case <-u.done:
		return true
	default:
		return false
	}
}

func (u *Unit) report(t progress.EventType, code int) {
	u.reporter.Report(progress.Event{
		Session:   u.session,
		Unit:      u.Index,
		Name:      u.Routine.Display,
		Type:      t,
		ExitCode:  code,
		Timestamp: time.Now(),
	})
}
