// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package routine holds the compiled, immutable form of an environment:
// a working directory and an ordered list of steps, each either an
// environment variable binding or a command invocation.
package routine

import (
	"slices"
	"strings"

	"github.com/alessio/shellescape"
)

// Step is one executable step of a Routine: SetEnv or Invoke.
type Step interface {
	step()
}

// SetEnv binds an environment variable for every following Invoke.
type SetEnv struct {
	Key   string
	Value string
}

// Invoke runs a command. Args[0] is either an absolute path or a bare name
// to be looked up on PATH.
type Invoke struct {
	Args []string
}

func (SetEnv) step() {}
func (Invoke) step() {}

// Routine is a named sequence of steps run in Dir.
type Routine struct {
	Name    string // Environment name
	Display string // Name shown in the output banner
	Dir     string // Working directory of every invocation
	steps   []Step
}

// New creates a Routine. The steps are copied.
func New(name, display, dir string, steps ...Step) Routine {
	cp := make([]Step, 0, len(steps))

	for _, s := range steps {
		if inv, ok := s.(Invoke); ok {
			s = Invoke{Args: slices.Clone(inv.Args)}
		}

		cp = append(cp, s)
	}

	return Routine{
		Name:    name,
		Display: display,
		Dir:     dir,
		steps:   cp,
	}
}

// Steps returns a copy of the routine's steps.
func (r Routine) Steps() []Step {
	return slices.Clone(r.steps)
}

// Len returns the number of steps.
func (r Routine) Len() int {
	return len(r.steps)
}

// Script renders the routine as a sequential shell script.
// Every word is escaped, so the script passes each argument verbatim.
func (r Routine) Script() string {
	sb := strings.Builder{}

	if r.Display != "" {
		sb.WriteString("# " + r.Display + "\n")
	}

	if r.Dir != "" {
		sb.WriteString("pushd " + shellescape.Quote(r.Dir) + " > /dev/null\n")
	}

	for _, s := range r.steps {
		switch s := s.(type) {
		case SetEnv:
			sb.WriteString("export " + shellescape.Quote(s.Key) + "=" + shellescape.Quote(s.Value) + "\n")
		case Invoke:
			sb.WriteString(shellescape.QuoteCommand(s.Args) + "\n")
		}
	}

	if r.Dir != "" {
		sb.WriteString("popd > /dev/null\n")
	}

	return sb.String()
}
