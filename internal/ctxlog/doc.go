// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes to stderr with a pretty console handler, so that
// log lines never interleave with the environment output replayed on stdout.
// The level comes from the QTOX_LOG_LEVEL environment variable and defaults
// to WARN, which keeps warnings such as an ignored changedir visible.
package ctxlog
