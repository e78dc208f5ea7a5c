// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// runCLI runs the root command with args and returns its output and exit code.
func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.Writer = out
	cmd.ErrWriter = out
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := cmd.Run(t.Context(), append([]string{"qtox"}, args...))
	if err == nil {
		return out.String(), 0
	}

	var ec cli.ExitCoder
	require.True(t, errors.As(err, &ec), "unexpected error: %v", err)

	return out.String(), ec.ExitCode()
}

// writeEnvFile writes a YAML environment file with a virtualenv in a temp dir.
func writeEnvFile(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	venv := filepath.Join(dir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(venv, "bin"), 0o755))

	tool := filepath.Join(venv, "bin", "greet")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\necho \"greetings $GREETING\"\n"), 0o755))

	doc := fmt.Sprintf(`envlist: [one, two]
envs:
  - name: one
    envdir: %[1]s
    setenv:
      GREETING: "from {envname}"
    commands:
      - [greet]
  - name: two
    envdir: %[1]s
    whitelist: [sh]
    commands:
      - [sh, -c, "echo second"]
  - name: broken
    envdir: %[1]s
    whitelist: [sh]
    commands:
      - [sh, -c, "echo broken; exit 3"]
  - name: forbidden
    envdir: %[1]s
    commands:
      - [rm, -rf, /]
`, venv)

	path := filepath.Join(dir, "qtox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	return path
}

func TestNoArgumentsShowsHelp(t *testing.T) {
	out, code := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "USAGE")
	assert.Contains(t, out, "qtox")
}

func TestList(t *testing.T) {
	path := writeEnvFile(t)

	out, code := runCLI(t, "list", "--config", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "one\ntwo\n", out)
}

func TestListMissingSource(t *testing.T) {
	_, code := runCLI(t, "list", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, code)
}

func TestScript(t *testing.T) {
	path := writeEnvFile(t)

	out, code := runCLI(t, "script", "-c", path, "two")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "# "+path+" -> two\n")
	assert.Contains(t, out, "sh -c 'echo second'\n")
	assert.NotContains(t, out, "-> one")
}

func TestScriptRejectsForbiddenCommand(t *testing.T) {
	path := writeEnvFile(t)

	out, code := runCLI(t, "script", "-c", path, "forbidden")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
}

func TestRunRejectsForbiddenCommand(t *testing.T) {
	path := writeEnvFile(t)

	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	out, code := runCLI(t, "-c", path, "forbidden", "two")
	assert.Equal(t, 1, code)
	assert.NotContains(t, out, "-> two")
	assert.NotContains(t, out, "second")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "no session directory is created")
}

func TestRunDefaults(t *testing.T) {
	path := writeEnvFile(t)

	out, code := runCLI(t, "--config", path)
	require.Equal(t, 0, code, out)

	first := strings.Index(out, "greetings from one")
	second := strings.Index(out, "second")

	assert.NotEqual(t, -1, first)
	assert.Greater(t, second, first)
	assert.Contains(t, out, "O K")
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	path := writeEnvFile(t)

	out, code := runCLI(t, "-c", path, "-e", "broken", "two")
	assert.Equal(t, 3, code)
	assert.Contains(t, out, "broken")
	assert.NotContains(t, out, "second")
	assert.Contains(t, out, "F A I L E D")
}

func TestRunSourceQualifiedName(t *testing.T) {
	path := writeEnvFile(t)

	out, code := runCLI(t, path+"::two")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "greetings")
}
