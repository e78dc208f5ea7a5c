// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrLiteral is returned when a value printed by tox is not a valid literal.
var ErrLiteral = errors.New("invalid literal")

// pyItem is one key/value pair of a dict literal, in source order.
type pyItem struct {
	Key   string
	Value any
}

// literalParser reads the subset of Python literals that `tox --showconfig`
// prints: strings, lists, tuples, dicts and bare words (numbers, True, None).
// Strings are returned as string, lists and tuples as []any, dicts as []pyItem.
type literalParser struct {
	s   string
	pos int
}

func parseLiteral(s string) (any, error) {
	p := &literalParser{s: s}

	v, err := p.value()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if p.pos != len(p.s) {
		return nil, p.errorf("unexpected trailing input")
	}

	return v, nil
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrLiteral, fmt.Sprintf(format, args...), p.pos, p.s)
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) && unicode.IsSpace(rune(p.s[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) value() (any, error) {
	p.skipSpace()

	if p.pos >= len(p.s) {
		return nil, p.errorf("unexpected end of input")
	}

	switch c := p.s[p.pos]; c {
	case '\'', '"':
		return p.str()
	case '[':
		return p.seq('[', ']')
	case '(':
		return p.seq('(', ')')
	case '{':
		return p.dict()
	default:
		return p.word()
	}
}

func (p *literalParser) str() (string, error) {
	quote := p.s[p.pos]
	p.pos++

	sb := strings.Builder{}

	for p.pos < len(p.s) {
		c := p.s[p.pos]

		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\\' && p.pos+1 < len(p.s):
			p.pos++
			sb.WriteByte(unescape(p.s[p.pos]))
		default:
			sb.WriteByte(c)
		}

		p.pos++
	}

	return "", p.errorf("unterminated string")
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func (p *literalParser) seq(open, closing byte) ([]any, error) {
	p.pos++ // open

	items := []any{}

	for {
		p.skipSpace()

		if p.pos < len(p.s) && p.s[p.pos] == closing {
			p.pos++
			return items, nil
		}

		v, err := p.value()
		if err != nil {
			return nil, err
		}

		items = append(items, v)

		if err := p.separator(closing); err != nil {
			return nil, err
		}
	}
}

func (p *literalParser) dict() ([]pyItem, error) {
	p.pos++ // {

	items := []pyItem{}

	for {
		p.skipSpace()

		if p.pos < len(p.s) && p.s[p.pos] == '}' {
			p.pos++
			return items, nil
		}

		k, err := p.value()
		if err != nil {
			return nil, err
		}

		key, ok := k.(string)
		if !ok {
			return nil, p.errorf("dict key must be a string")
		}

		p.skipSpace()

		if p.pos >= len(p.s) || p.s[p.pos] != ':' {
			return nil, p.errorf("expected ':'")
		}

		p.pos++

		v, err := p.value()
		if err != nil {
			return nil, err
		}

		items = append(items, pyItem{Key: key, Value: v})

		if err := p.separator('}'); err != nil {
			return nil, err
		}
	}
}

// separator consumes a ',' or leaves the closing delimiter for the caller.
func (p *literalParser) separator(closing byte) error {
	p.skipSpace()

	if p.pos >= len(p.s) {
		return p.errorf("expected ',' or %q", closing)
	}

	switch p.s[p.pos] {
	case ',':
		p.pos++
		return nil
	case closing:
		return nil
	default:
		return p.errorf("expected ',' or %q", closing)
	}
}

func (p *literalParser) word() (string, error) {
	start := p.pos

	for p.pos < len(p.s) && !strings.ContainsRune(",:]}) \t\n", rune(p.s[p.pos])) {
		p.pos++
	}

	if start == p.pos {
		return "", p.errorf("unexpected %q", p.s[p.pos])
	}

	return p.s[start:p.pos], nil
}

// stringList parses a list literal of strings, e.g. ['bash', 'make'].
func stringList(s string) ([]string, error) {
	v, err := parseLiteral(s)
	if err != nil {
		return nil, err
	}

	return asStrings(v)
}

// stringLists parses a list of lists of strings, e.g. [['pytest', 'tests']].
func stringLists(s string) ([][]string, error) {
	v, err := parseLiteral(s)
	if err != nil {
		return nil, err
	}

	outer, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list in %q", ErrLiteral, s)
	}

	res := make([][]string, 0, len(outer))

	for _, o := range outer {
		inner, err := asStrings(o)
		if err != nil {
			return nil, err
		}

		res = append(res, inner)
	}

	return res, nil
}

// stringDict parses a dict literal of strings into ordered assignments.
func stringDict(s string) ([]EnvVar, error) {
	v, err := parseLiteral(s)
	if err != nil {
		return nil, err
	}

	items, ok := v.([]pyItem)
	if !ok {
		return nil, fmt.Errorf("%w: expected a dict in %q", ErrLiteral, s)
	}

	res := make([]EnvVar, 0, len(items))

	for _, it := range items {
		val, ok := it.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value of %q is not a string", ErrLiteral, it.Key)
		}

		res = append(res, EnvVar{Key: it.Key, Value: val})
	}

	return res, nil
}

func asStrings(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrLiteral, v)
	}

	res := make([]string, 0, len(list))

	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected a string, got %T", ErrLiteral, item)
		}

		res = append(res, s)
	}

	return res, nil
}
