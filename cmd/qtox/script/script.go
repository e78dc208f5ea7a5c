// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package script prints the compiled environments as shell scripts.
package script

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/qtox/cmd/qtox/flags"
	"github.com/urfave/cli/v3"
)

// NewScriptCmd returns a command that compiles the selected environments and
// prints what each one would run.
func NewScriptCmd() *cli.Command {
	return &cli.Command{
		Name:      "script",
		Usage:     "Print the commands each environment would run",
		ArgsUsage: "[NAME|SOURCE::NAME]...",
		Description: `Compile the selected environments without running anything and
print each one as a shell script, in order. Every argument is shell escaped.`,
		Flags: []cli.Flag{
			flags.Config(),
			flags.Envs(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			routines, err := flags.Routines(ctx, cmd)
			if err != nil {
				return cli.Exit("", 1)
			}

			for i, r := range routines {
				if i > 0 {
					fmt.Fprintln(cmd.Root().Writer) //nolint:errcheck
				}

				fmt.Fprint(cmd.Root().Writer, r.Script()) //nolint:errcheck
			}

			return nil
		},
	}
}
