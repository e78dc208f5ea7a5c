// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showConfigOutput = `[tox]
toxinipath = /proj/tox.ini
toxinidir = /proj
toxworkdir = /proj/.tox
envlist = ['lint', 'py39']

[testenv:py39]
envdir = /proj/.tox/py39
setenv = SetenvDict: {'PYTHONHASHSEED': '0', 'BLACK_ARGS': '{env:BLACK_ARGS:}', 'TMP': '{envtmpdir}'}
commands = [['pytest', '-x', 'tests'], ['coverage', 'report']]
whitelist_externals = ['bash']
changedir = /proj

[testenv:lint]
envdir = .tox/lint
commands = [['flake8', 'src']]
allowlist_externals = ['make', '/usr/bin/*']
`

func TestParseToxConfig(t *testing.T) {
	t.Parallel()

	src, err := parseToxConfig("/proj", []byte(showConfigOutput))
	require.NoError(t, err)

	assert.Equal(t, []string{"lint", "py39"}, src.Defaults())

	env, err := src.Env("py39")
	require.NoError(t, err)
	assert.Equal(t, "py39", env.Name)
	assert.Equal(t, "/proj", env.Dir)
	assert.Equal(t, "/proj", env.ChangeDir)
	assert.Equal(t, "/proj/.tox/py39", env.EnvDir)
	assert.Equal(t, [][]string{{"pytest", "-x", "tests"}, {"coverage", "report"}}, env.Commands)
	assert.Equal(t, []string{"bash"}, env.Whitelist)
	assert.Equal(t, []EnvVar{
		{Key: "PYTHONHASHSEED", Value: "0"},
		{Key: "BLACK_ARGS", Value: "{env:BLACK_ARGS:}"},
		{Key: "TMP", Value: "{envtmpdir}"},
	}, env.SetEnv)
	assert.Equal(t, "/proj/.tox", env.Settings["toxworkdir"])
	assert.Equal(t, "py39", env.Settings["envname"])

	lint, err := src.Env("lint")
	require.NoError(t, err)
	assert.Equal(t, "/proj/.tox/lint", lint.EnvDir, "relative envdir resolves against the tox dir")
	assert.Equal(t, []string{"make", "/usr/bin/*"}, lint.Whitelist)
	assert.Empty(t, lint.SetEnv)

	_, err = src.Env("missing")
	require.ErrorIs(t, err, ErrUnknownEnv)
}

func TestParseToxConfig_DefaultsWithoutEnvList(t *testing.T) {
	t.Parallel()

	out := "toxinidir = /proj\n[testenv:b]\nenvdir = /b\n[a]\nenvdir = /a\n"

	src, err := parseToxConfig(DefaultSource, []byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, src.Defaults())

	env, err := src.Env("a")
	require.NoError(t, err)
	assert.Equal(t, "/a", env.EnvDir)
}

func TestParseToxConfig_CommaSeparatedEnvList(t *testing.T) {
	t.Parallel()

	src, err := parseToxConfig(DefaultSource, []byte("toxinidir = /proj\nenvlist = py38, py39\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"py38", "py39"}, src.Defaults())
}

func TestParseToxConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := parseToxConfig(DefaultSource, []byte("[testenv:a]\nenvdir = /a\n"))
	require.ErrorIs(t, err, ErrLoadSource)

	src, err := parseToxConfig(DefaultSource, []byte("toxinidir = /p\n[testenv:a]\ncommands = [['x'\n"))
	require.NoError(t, err)

	_, err = src.Env("a")
	require.ErrorIs(t, err, ErrLiteral)
}

func TestLoad_Tox(t *testing.T) {
	var dirs []string

	stubs := gostub.Stub(&ShowConfig, func(_ context.Context, dir string) ([]byte, error) {
		dirs = append(dirs, dir)
		return []byte(showConfigOutput), nil
	})
	defer stubs.Reset()

	envs, err := Load(context.Background(), []Request{
		{Source: DefaultSource, Names: []string{"py39"}},
		{Source: "other"},
		{Source: DefaultSource, Names: []string{"lint"}},
	})
	require.NoError(t, err)

	require.Len(t, envs, 4)
	assert.Equal(t, "py39", envs[0].DisplayName())
	assert.Equal(t, "other -> lint", envs[1].DisplayName())
	assert.Equal(t, "other -> py39", envs[2].DisplayName())
	assert.Equal(t, "lint", envs[3].DisplayName())
	assert.Equal(t, []string{DefaultSource, "other"}, dirs, "each source is opened once")
}

func TestLoad_Errors(t *testing.T) {
	stubs := gostub.Stub(&ShowConfig, func(context.Context, string) ([]byte, error) {
		return nil, ErrShowConfig
	})
	defer stubs.Reset()

	_, err := Load(context.Background(), []Request{{Source: DefaultSource}})
	require.ErrorIs(t, err, ErrLoadSource)
	require.ErrorIs(t, err, ErrShowConfig)

	_, err = List(context.Background(), "")
	require.ErrorIs(t, err, ErrLoadSource)

	stubs.Stub(&ShowConfig, func(context.Context, string) ([]byte, error) {
		return []byte("toxinidir = /p\n"), nil
	})

	_, err = Load(context.Background(), []Request{{Source: DefaultSource}})
	require.ErrorIs(t, err, ErrNoEnvs)

	_, err = Load(context.Background(), []Request{{Source: DefaultSource, Names: []string{"nope"}}})
	require.ErrorIs(t, err, ErrUnknownEnv)
	assert.False(t, errors.Is(err, ErrLoadSource))
}

func TestList_Tox(t *testing.T) {
	stubs := gostub.Stub(&ShowConfig, func(context.Context, string) ([]byte, error) {
		return []byte(showConfigOutput), nil
	})
	defer stubs.Reset()

	names, err := List(context.Background(), DefaultSource)
	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "py39"}, names)
}
