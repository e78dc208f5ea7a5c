// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a lifecycle change of one unit of work.
type Event struct {
	Session   string    // Session identifier
	Unit      int       // Index of the unit in submission order
	Name      string    // Display name of the unit's environment
	Type      EventType // What happened
	ExitCode  int       // Exit code for EventSucceeded and EventFailed
	Timestamp time.Time // When the event occurred
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventLaunched indicates the unit's first step has been started.
	EventLaunched EventType = iota
	// EventReplaying indicates the unit's output is being streamed to the user.
	EventReplaying
	// EventSucceeded indicates every step of the unit exited with status zero.
	EventSucceeded
	// EventFailed indicates a step of the unit failed.
	EventFailed
	// EventKilled indicates the unit was terminated by the orchestrator.
	EventKilled
	// EventSuppressed indicates the unit's output will not be replayed.
	EventSuppressed
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventLaunched:
		return "launched"
	case EventReplaying:
		return "replaying"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventKilled:
		return "killed"
	case EventSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report sends an event. Implementations must not block.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives events forwarded by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}
