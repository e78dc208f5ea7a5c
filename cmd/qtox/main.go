// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the qtox command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/qtox"
	"github.com/matt-FFFFFF/qtox/cmd/qtox/list"
	"github.com/matt-FFFFFF/qtox/cmd/qtox/run"
	"github.com/matt-FFFFFF/qtox/cmd/qtox/script"
	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
	"github.com/matt-FFFFFF/qtox/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// newRootCmd returns the root command for the CLI.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			list.NewListCmd(),
			script.NewScriptCmd(),
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "qtox",
		Usage:     "run tox environments in parallel, show their output in order",
		UsageText: "qtox [--config SOURCE] [--envs NAME[,NAME]]... [NAME|SOURCE::NAME]...",
		Description: `qtox starts every selected environment at once and shows their output
as if they had run one after the other, in the order given. Once an environment
fails, the environments after it are stopped and their output is not shown.
The exit status is the status of the first failing environment.

Environments come from a tox project (through tox --showconfig) or from a YAML or
HCL file. Every virtualenv must already exist: run tox once to create them.

Set QTOX_LOG_LEVEL to DEBUG, INFO, WARN or ERROR to control logging on stderr.`,
		ArgsUsage: "[NAME|SOURCE::NAME]...",
		Flags:     run.Flags(),
		Action:    run.Action,
		Version:   fmt.Sprintf("%s (commit: %s)", qtox.Version, qtox.Commit),
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	// Exit codes are handled by the cli framework.
	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		ctxlog.Error(ctx, "command execution failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
}
