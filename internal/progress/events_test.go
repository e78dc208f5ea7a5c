// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventLaunched, "launched"},
		{EventReplaying, "replaying"},
		{EventSucceeded, "succeeded"},
		{EventFailed, "failed"},
		{EventKilled, "killed"},
		{EventSuppressed, "suppressed"},
		{EventType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}

func TestChannelReporter_Listen(t *testing.T) {
	reporter := NewChannelReporter(context.Background(), 10)

	var (
		mu  sync.Mutex
		got []Event
	)

	reporter.Listen(ListenerFunc(func(e Event) {
		mu.Lock()
		defer mu.Unlock()

		got = append(got, e)
	}))

	reporter.Report(Event{Unit: 0, Type: EventLaunched, Timestamp: time.Now()})
	reporter.Report(Event{Unit: 0, Type: EventSucceeded, Timestamp: time.Now()})
	reporter.Close()

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, got, 2)
	assert.Equal(t, EventLaunched, got[0].Type)
	assert.Equal(t, EventSucceeded, got[1].Type)
}

func TestChannelReporter_DropsWhenFullOrClosed(t *testing.T) {
	reporter := NewChannelReporter(context.Background(), 1)

	reporter.Report(Event{Unit: 1})
	reporter.Report(Event{Unit: 2})
	reporter.Close()
	reporter.Report(Event{Unit: 3})
	reporter.Close()

	var units []int
	for e := range reporter.Events() {
		units = append(units, e.Unit)
	}

	assert.Equal(t, []int{1}, units)
}

func TestNullReporter(t *testing.T) {
	var r Reporter = NullReporter{}

	assert.NotPanics(t, func() {
		r.Report(Event{})
		r.Close()
	})
}
