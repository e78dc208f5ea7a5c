// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list prints the default environments of a source.
package list

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/qtox/cmd/qtox/flags"
	"github.com/matt-FFFFFF/qtox/internal/config"
	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

// NewListCmd returns a command that prints the default environment list of a
// source, one name per line.
func NewListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the default environments of a source",
		Description: `Print the environments that run when none are selected, in order.
For a tox project this is the envlist of tox.ini.`,
		Flags: []cli.Flag{
			flags.Config(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			names, err := config.List(ctx, cmd.String(flags.ConfigFlag))
			if err != nil {
				ctxlog.Error(ctx, "failed to list environments", "error", err)
				return cli.Exit("", 1)
			}

			for _, n := range names {
				fmt.Fprintln(cmd.Root().Writer, n) //nolint:errcheck
			}

			return nil
		},
	}
}
