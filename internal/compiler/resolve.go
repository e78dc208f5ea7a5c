// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/qtox/internal/config"
	"github.com/matt-FFFFFF/qtox/internal/routine"
)

// resolver resolves set-env values against the environment's settings,
// earlier assignments and the host environment.
type resolver struct {
	settings map[string]string
	assigned map[string]string
}

func newResolver(env config.Env) *resolver {
	settings := map[string]string{
		"toxinidir": env.Dir,
		"envdir":    env.EnvDir,
		"envbindir": env.BinDir(),
		"envname":   env.Name,
		"envtmpdir": filepath.Join(env.EnvDir, "tmp"),
		"envlogdir": filepath.Join(env.EnvDir, "log"),
	}

	for k, v := range env.Settings {
		settings[k] = v
	}

	return &resolver{
		settings: settings,
		assigned: make(map[string]string),
	}
}

// setenv resolves one assignment. keep is false for a self reference,
// which leaves the host value untouched.
func (r *resolver) setenv(kv config.EnvVar) (string, bool, error) {
	var (
		val string
		err error
	)

	switch v := routine.ParseValue(kv.Value).(type) {
	case routine.HostRef:
		if v.Name == kv.Key && v.Default == "" {
			return "", false, nil
		}

		val, err = r.host(v)
	case routine.Literal:
		val, err = r.expand(string(v))
	}

	if err != nil {
		return "", false, err
	}

	r.assigned[kv.Key] = val

	return val, true, nil
}

// host looks the reference up in earlier assignments, then the host environment.
func (r *resolver) host(ref routine.HostRef) (string, error) {
	if v, ok := r.assigned[ref.Name]; ok {
		return v, nil
	}

	if v, ok := os.LookupEnv(ref.Name); ok {
		return v, nil
	}

	if ref.Default != "" {
		return ref.Default, nil
	}

	return "", fmt.Errorf("%w: %s", ErrHostVarUnset, ref.Name)
}

// expand substitutes {placeholder} fields. {{ and }} are literal braces and
// an unmatched { is kept as is.
func (r *resolver) expand(s string) (string, error) {
	sb := strings.Builder{}

	for i := 0; i < len(s); {
		c := s[i]

		switch {
		case c == '{' && strings.HasPrefix(s[i:], "{{"):
			sb.WriteByte('{')
			i += 2
		case c == '}' && strings.HasPrefix(s[i:], "}}"):
			sb.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				sb.WriteString(s[i:])
				return sb.String(), nil
			}

			v, err := r.field(s[i+1 : i+1+end])
			if err != nil {
				return "", err
			}

			sb.WriteString(v)
			i += end + 2
		default:
			sb.WriteByte(c)
			i++
		}
	}

	return sb.String(), nil
}

func (r *resolver) field(name string) (string, error) {
	if ref, ok := routine.ParseHostRef(name); ok {
		return r.host(ref)
	}

	if v, ok := r.settings[name]; ok {
		return v, nil
	}

	return "", fmt.Errorf("%w: {%s}", ErrUnknownPlaceholder, name)
}
