// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape sequences for the console.
//
// Output is coloured when stdout is a terminal, unless NO_COLOR is set.
// FORCE_COLOR turns colour on for non-terminal output (e.g. CI logs).
package color
