// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
)

var (
	// ErrDuplicateEnv is returned when a file defines the same environment twice.
	ErrDuplicateEnv = errors.New("duplicate environment")
	// ErrEnvNameEmpty is returned when a file defines an environment without a name.
	ErrEnvNameEmpty = errors.New("environment name is empty")
)

// fileEnv is an environment as written in a YAML or HCL file.
type fileEnv struct {
	Name      string
	Dir       string
	ChangeDir string
	EnvDir    string
	Commands  [][]string
	SetEnv    []EnvVar
	Whitelist []string
	Settings  map[string]string
}

// fileSource holds the environments of one YAML or HCL file.
// Relative paths resolve against base, the directory of the file.
type fileSource struct {
	base     string
	defaults []string
	order    []string
	envs     map[string]fileEnv
}

func newFileSource(base string, defaults []string) *fileSource {
	return &fileSource{
		base:     base,
		defaults: defaults,
		envs:     make(map[string]fileEnv),
	}
}

func (f *fileSource) add(e fileEnv) error {
	if e.Name == "" {
		return ErrEnvNameEmpty
	}

	if _, ok := f.envs[e.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEnv, e.Name)
	}

	f.envs[e.Name] = e
	f.order = append(f.order, e.Name)

	return nil
}

// Defaults returns envlist, or every environment in file order.
func (f *fileSource) Defaults() []string {
	if len(f.defaults) > 0 {
		return slices.Clone(f.defaults)
	}

	return slices.Clone(f.order)
}

func (f *fileSource) Env(name string) (Env, error) {
	e, ok := f.envs[name]
	if !ok {
		return Env{}, fmt.Errorf("%w: %s", ErrUnknownEnv, name)
	}

	dir := f.resolve(e.Dir)
	if e.Dir == "" {
		dir = f.base
	}

	settings := maps.Clone(e.Settings)
	if settings == nil {
		settings = make(map[string]string)
	}

	return Env{
		Name:      e.Name,
		Dir:       dir,
		ChangeDir: f.resolve(e.ChangeDir),
		EnvDir:    f.resolve(e.EnvDir),
		Commands:  slices.Clone(e.Commands),
		SetEnv:    slices.Clone(e.SetEnv),
		Whitelist: slices.Clone(e.Whitelist),
		Settings:  settings,
	}, nil
}

func (f *fileSource) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(f.base, p)
}
