// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler_Enabled(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_WithAttrsSharesState(t *testing.T) {
	handler := NewPrettyHandler(nil, WithOutputEmptyAttrs())

	withAttrs, ok := handler.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.b, withAttrs.b)
	assert.Same(t, handler.m, withAttrs.m)
	assert.True(t, withAttrs.outputEmptyAttrs)

	withGroup, ok := handler.WithGroup("g").(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.m, withGroup.m)
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		attrs   []any
		options []Option
		expect  []string
	}{
		{
			name:   "info without attributes",
			level:  slog.LevelInfo,
			expect: []string{"INFO:", "message"},
		},
		{
			name:   "debug with attributes",
			level:  slog.LevelDebug,
			attrs:  []any{"unit", 3, "env", "py39"},
			expect: []string{"DEBUG:", "message", `"unit"`, "3", `"py39"`},
		},
		{
			name:    "empty attributes rendered on request",
			level:   slog.LevelWarn,
			options: []Option{WithOutputEmptyAttrs()},
			expect:  []string{"WARN:", "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			handler := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug},
				append([]Option{WithDestinationWriter(&buf)}, tt.options...)...)

			record := slog.NewRecord(time.Now(), tt.level, "message", 0)
			record.Add(tt.attrs...)

			require.NoError(t, handler.Handle(context.Background(), record))

			for _, e := range tt.expect {
				assert.Contains(t, buf.String(), e)
			}

			assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
		})
	}
}

func TestPrettyHandler_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case "secret":
				return slog.String("secret", "[REDACTED]")
			}

			return a
		},
	}, WithDestinationWriter(&buf))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "message", 0)
	record.Add("secret", "hunter2")

	require.NoError(t, handler.Handle(context.Background(), record))
	assert.Contains(t, buf.String(), "[REDACTED]")
	assert.NotContains(t, buf.String(), "hunter2")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("INFO:")), "time should be removed")
}

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("boom") }
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return f }
func (f failingHandler) WithGroup(string) slog.Handler           { return f }

func TestPrettyHandler_InnerHandlerError(t *testing.T) {
	handler := &PrettyHandler{
		h:      failingHandler{},
		b:      &bytes.Buffer{},
		m:      &sync.Mutex{},
		writer: &bytes.Buffer{},
	}

	err := handler.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	assert.Error(t, err)
}

func TestSuppressDefaults(t *testing.T) {
	suppress := suppressDefaults(func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "transform" {
			return slog.String("transform", "done")
		}

		return a
	})

	assert.True(t, suppress(nil, slog.String(slog.MessageKey, "m")).Equal(slog.Attr{}))
	assert.True(t, suppress(nil, slog.Any(slog.LevelKey, slog.LevelInfo)).Equal(slog.Attr{}))
	assert.True(t, suppress(nil, slog.String("transform", "x")).Equal(slog.String("transform", "done")))
	assert.True(t, suppress(nil, slog.String("other", "x")).Equal(slog.String("other", "x")))
}
