// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs a batch of routines in parallel and replays their
// output as if they had run one after the other.
//
// Every routine becomes a Unit that starts immediately and writes its
// combined output to its own sink file in the session directory. The Session
// then follows the sinks in submission order, streaming each one live until
// its unit ends. Once a unit fails, the remaining units are terminated and
// their output is never shown. The session returns the first non-zero exit
// code in submission order, or 0.
//
// However the session ends, teardown runs exactly once: on interruption it
// terminates every unit, it always reaps the units and removes the session
// directory.
package runbatch
