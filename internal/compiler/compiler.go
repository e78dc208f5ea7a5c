// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package compiler turns environment definitions into routines.
//
// Compilation validates an environment without running anything: the
// virtualenv must exist, every command must resolve to an executable in the
// virtualenv or be whitelisted, and every set-env value must resolve.
package compiler

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/qtox/internal/config"
	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
	"github.com/matt-FFFFFF/qtox/internal/routine"
	"github.com/spf13/afero"
)

const exeSuffix = ".exe"

// FsFactory returns the filesystem used for existence checks.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// lookPath resolves bare whitelisted names against PATH for pattern matching.
var lookPath = exec.LookPath

// CompileAll compiles every environment, in order.
// All configuration errors are returned together; on error no routine is returned.
func CompileAll(ctx context.Context, envs []config.Env) ([]routine.Routine, error) {
	var (
		result   []routine.Routine
		multiErr error
	)

	for _, env := range envs {
		r, err := Compile(ctx, env)
		if err != nil {
			multiErr = multierror.Append(multiErr, err)
			continue
		}

		result = append(result, r)
	}

	if multiErr != nil {
		return nil, multiErr
	}

	return result, nil
}

// Compile turns one environment into a routine.
// Errors are *ConfigurationError values.
func Compile(ctx context.Context, env config.Env) (routine.Routine, error) {
	display := env.DisplayName()

	fail := func(err error) (routine.Routine, error) {
		return routine.Routine{}, &ConfigurationError{Env: display, Err: err}
	}

	fs := FsFactory()

	if ok, _ := afero.DirExists(fs, env.EnvDir); env.EnvDir == "" || !ok {
		return fail(fmt.Errorf("%w: %q", ErrEnvDirMissing, env.EnvDir))
	}

	if env.ChangeDir != "" && filepath.Clean(env.ChangeDir) != filepath.Clean(env.Dir) {
		ctxlog.Warn(ctx, "changedir is not supported, commands run in the project directory",
			"env", display,
			"changedir", env.ChangeDir,
			"dir", env.Dir,
		)
	}

	res := newResolver(env)
	steps := make([]routine.Step, 0, len(env.SetEnv)+len(env.Commands))

	for _, kv := range env.SetEnv {
		val, keep, err := res.setenv(kv)
		if err != nil {
			return fail(fmt.Errorf("setenv %s: %w", kv.Key, err))
		}

		if !keep {
			ctxlog.Debug(ctx, "dropping self reference, host value passes through", "env", display, "key", kv.Key)
			continue
		}

		steps = append(steps, routine.SetEnv{Key: kv.Key, Value: val})
	}

	for _, cmd := range env.Commands {
		args, err := resolveCommand(fs, env, cmd)
		if err != nil {
			return fail(err)
		}

		steps = append(steps, routine.Invoke{Args: args})
	}

	ctxlog.Debug(ctx, "compiled environment", "env", display, "steps", len(steps))

	return routine.New(env.Name, display, env.Dir, steps...), nil
}

// resolveCommand prefers the virtualenv executable and falls back to the whitelist.
func resolveCommand(fs afero.Fs, env config.Env, cmd []string) ([]string, error) {
	if len(cmd) == 0 || cmd[0] == "" {
		return nil, ErrEmptyCommand
	}

	name := cmd[0]
	args := make([]string, 0, len(cmd))

	if bin, ok := binExecutable(fs, env.BinDir(), name); ok {
		return append(append(args, bin), cmd[1:]...), nil
	}

	if allowed(env.Whitelist, name) {
		return append(args, cmd...), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrCommandNotAllowed, strings.Join(cmd, " "))
}

// binExecutable finds name as a regular file inside binDir. Names that leave
// binDir, like ../tool or absolute paths, never match.
func binExecutable(fs afero.Fs, binDir, name string) (string, bool) {
	if !filepath.IsLocal(name) {
		return "", false
	}

	candidates := []string{filepath.Join(binDir, name)}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), exeSuffix) {
		candidates = append(candidates, candidates[0]+exeSuffix)
	}

	for _, c := range candidates {
		if fi, err := fs.Stat(c); err == nil && fi.Mode().IsRegular() {
			return c, true
		}
	}

	return "", false
}

// allowed reports whether name matches a whitelist entry. Entries are exact
// names, absolute paths or glob patterns. A bare name also matches through
// its location on PATH, so /usr/bin/* allows make.
func allowed(whitelist []string, name string) bool {
	if matchAny(whitelist, name) {
		return true
	}

	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return false
	}

	resolved, err := lookPath(name)
	if err != nil {
		return false
	}

	return matchAny(whitelist, resolved)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}

		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}

	return false
}
