// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run is the root action of qtox: it runs the selected environments.
package run

import (
	"context"

	"github.com/matt-FFFFFF/qtox/cmd/qtox/flags"
	"github.com/matt-FFFFFF/qtox/internal/progress"
	"github.com/matt-FFFFFF/qtox/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	cliExitStr         = ""
	reporterBufferSize = 64
)

// Flags returns the flags of the run action.
func Flags() []cli.Flag {
	return []cli.Flag{
		flags.Config(),
		flags.Envs(),
	}
}

// Action runs the selected environments in parallel and replays their
// output in order. The exit status is the first failing environment's code.
func Action(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 && !cmd.IsSet(flags.ConfigFlag) && !cmd.IsSet(flags.EnvsFlag) {
		_ = cli.ShowAppHelp(cmd)
		return cli.Exit(cliExitStr, 1)
	}

	routines, err := flags.Routines(ctx, cmd)
	if err != nil {
		return cli.Exit(cliExitStr, 1)
	}

	reporter := progress.NewChannelReporter(ctx, reporterBufferSize)
	reporter.Listen(progress.LogListener(ctx))

	status := runbatch.Run(ctx, routines,
		runbatch.WithOutput(cmd.Root().Writer),
		runbatch.WithReporter(reporter),
	)

	reporter.Close()

	if status != 0 {
		return cli.Exit(cliExitStr, status)
	}

	return nil
}
