// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package routine

import "strings"

const (
	hostRefPrefix = "{env:"
	hostRefSuffix = "}"
)

// Value is an unresolved environment variable value: Literal or HostRef.
type Value interface {
	value()
}

// Literal is a value that may contain {placeholder} settings.
type Literal string

// HostRef reads a variable from the host environment at compile time.
// {env:NAME} and {env:NAME:} have no default and require NAME to be set.
type HostRef struct {
	Name    string
	Default string
}

func (Literal) value() {}
func (HostRef) value() {}

// ParseValue classifies a raw value. Only a value that is exactly one
// {env:...} reference is a HostRef; references inside a longer value are
// part of the Literal.
func ParseValue(s string) Value {
	ref, ok := parseHostRef(s)
	if !ok {
		return Literal(s)
	}

	return ref
}

// ParseHostRef parses the inside of a {...} field as a host reference.
// field is the text between the braces, e.g. "env:HOME:/root".
func ParseHostRef(field string) (HostRef, bool) {
	return parseHostRef("{" + field + "}")
}

func parseHostRef(s string) (HostRef, bool) {
	if !strings.HasPrefix(s, hostRefPrefix) || !strings.HasSuffix(s, hostRefSuffix) {
		return HostRef{}, false
	}

	inner := s[len(hostRefPrefix) : len(s)-len(hostRefSuffix)]
	if strings.ContainsAny(inner, "{}") {
		return HostRef{}, false
	}

	name, def, _ := strings.Cut(inner, ":")
	if name == "" {
		return HostRef{}, false
	}

	return HostRef{Name: name, Default: def}, true
}
