// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config resolves environment definitions into Env values.
//
// An environment can come from a tox project (through `tox --showconfig`),
// from a YAML file or from an HCL file. The source kind is chosen from the
// source string: a path ending in .yaml, .yml or .hcl is a file, anything else
// is a tox project directory. File sources may be go-getter URLs.
package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	// DefaultSource is the source used when none is given: the tox project in the current directory.
	DefaultSource = "."
	// QualifierSeparator separates a source from an environment name in a selection spec.
	QualifierSeparator = "::"
	// DisplaySeparator separates the source from the name in a display name.
	DisplaySeparator = " -> "
)

var (
	// ErrUnknownEnv is returned when a requested environment does not exist in its source.
	ErrUnknownEnv = errors.New("unknown environment")
	// ErrLoadSource is returned when a source cannot be read or parsed.
	ErrLoadSource = errors.New("failed to load environment source")
	// ErrNoEnvs is returned when a source defines no environments.
	ErrNoEnvs = errors.New("no environments defined")
)

// FsFactory returns the filesystem used to read local environment files.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// EnvVar is one ordered environment variable assignment.
// Value is unresolved: it may hold {placeholders} and {env:NAME} references.
type EnvVar struct {
	Key   string
	Value string
}

// Env is a fully resolved environment definition.
type Env struct {
	Name      string            // Environment name
	Source    string            // Source the env was loaded from; empty for the default source
	Dir       string            // Project directory, working directory of every command
	ChangeDir string            // Requested working directory override, empty if none
	EnvDir    string            // Virtualenv root directory
	Commands  [][]string        // Commands in order, each an argument list
	SetEnv    []EnvVar          // Environment variable assignments in order
	Whitelist []string          // External commands allowed outside the virtualenv
	Settings  map[string]string // Raw settings available as {placeholders}
}

// DisplayName is the name shown to the user: "<source> -> <name>" for
// environments from a non-default source, the bare name otherwise.
func (e Env) DisplayName() string {
	if e.Source == "" {
		return e.Name
	}

	return e.Source + DisplaySeparator + e.Name
}

// BinDir is the virtualenv directory holding the environment's executables.
func (e Env) BinDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.EnvDir, "Scripts")
	}

	return filepath.Join(e.EnvDir, "bin")
}

// Request selects environments from one source.
// Empty Names selects the source's default environments.
type Request struct {
	Source string
	Names  []string
}

// source is an opened environment source.
type source interface {
	// Defaults returns the names of the default environments, in order.
	Defaults() []string
	// Env returns the named environment.
	Env(name string) (Env, error)
}

// Load resolves the requests into environments, in request order.
// Each distinct source is opened once.
func Load(ctx context.Context, reqs []Request) ([]Env, error) {
	opened := make(map[string]source)

	var envs []Env

	for _, req := range reqs {
		loc := req.Source
		if loc == "" {
			loc = DefaultSource
		}

		src, ok := opened[loc]
		if !ok {
			ctxlog.Debug(ctx, "opening environment source", "source", loc)

			var err error

			src, err = open(ctx, loc)
			if err != nil {
				return nil, errors.Join(ErrLoadSource, fmt.Errorf("%s: %w", loc, err))
			}

			opened[loc] = src
		}

		names := req.Names
		if len(names) == 0 {
			names = src.Defaults()
		}

		if len(names) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoEnvs, loc)
		}

		for _, name := range names {
			env, err := src.Env(name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", loc, err)
			}

			if loc != DefaultSource {
				env.Source = loc
			}

			envs = append(envs, env)
		}
	}

	return envs, nil
}

// List returns the default environment names of a source.
func List(ctx context.Context, loc string) ([]string, error) {
	if loc == "" {
		loc = DefaultSource
	}

	src, err := open(ctx, loc)
	if err != nil {
		return nil, errors.Join(ErrLoadSource, fmt.Errorf("%s: %w", loc, err))
	}

	return src.Defaults(), nil
}

func open(ctx context.Context, loc string) (source, error) {
	switch kindOf(loc) {
	case kindYAML:
		return openYAML(ctx, loc)
	case kindHCL:
		return openHCL(ctx, loc)
	default:
		return openTox(ctx, loc)
	}
}

type sourceKind int

const (
	kindTox sourceKind = iota
	kindYAML
	kindHCL
)

func kindOf(loc string) sourceKind {
	p := loc
	if i := strings.Index(p, goGetterRefSeparator); i >= 0 {
		p = p[:i]
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return kindYAML
	case ".hcl":
		return kindHCL
	default:
		return kindTox
	}
}

// ParseSelection turns command line environment specs into ordered requests.
// A spec is a comma separated list of NAME or SOURCE::NAME items; unqualified
// names belong to defaultSource. Consecutive items from the same source are
// merged into one request. Without any spec the default environments of
// defaultSource are selected.
func ParseSelection(defaultSource string, specs []string) []Request {
	if defaultSource == "" {
		defaultSource = DefaultSource
	}

	var reqs []Request

	for _, spec := range specs {
		for item := range strings.SplitSeq(spec, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}

			src, name := defaultSource, item
			if i := strings.LastIndex(item, QualifierSeparator); i >= 0 {
				src, name = item[:i], item[i+len(QualifierSeparator):]
			}

			if n := len(reqs); n > 0 && reqs[n-1].Source == src && len(reqs[n-1].Names) > 0 {
				reqs[n-1].Names = append(reqs[n-1].Names, name)
				continue
			}

			req := Request{Source: src}
			if name != "" {
				req.Names = []string{name}
			}

			reqs = append(reqs, req)
		}
	}

	if len(reqs) == 0 {
		return []Request{{Source: defaultSource}}
	}

	return slices.Clip(reqs)
}
