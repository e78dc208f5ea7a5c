// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress reports the lifecycle of units of work while a session runs.
// Events are delivered without blocking the orchestrator; a slow listener
// loses events rather than stalling replay.
package progress
