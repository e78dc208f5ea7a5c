// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package flags holds the environment selection flags shared by the qtox commands.
package flags

import (
	"context"
	"errors"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/qtox/internal/compiler"
	"github.com/matt-FFFFFF/qtox/internal/config"
	"github.com/matt-FFFFFF/qtox/internal/ctxlog"
	"github.com/matt-FFFFFF/qtox/internal/routine"
	"github.com/urfave/cli/v3"
)

const (
	// ConfigFlag names the default environment source.
	ConfigFlag = "config"
	// EnvsFlag selects environments.
	EnvsFlag = "envs"
)

// Config returns a new --config flag.
func Config() cli.Flag {
	return &cli.StringFlag{
		Name:    ConfigFlag,
		Aliases: []string{"c"},
		Usage: "Default environment source: a directory containing tox.ini, or a .yaml, .yml or .hcl file. " +
			"Files support Hashicorp's go-getter syntax for fetching from various sources.",
		Value:    config.DefaultSource,
		OnlyOnce: true,
		Local:    true,
	}
}

// Envs returns a new --envs flag.
func Envs() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    EnvsFlag,
		Aliases: []string{"e"},
		Usage: "Environments to run, in the order their output is shown. " +
			"Use NAME for the default source or SOURCE::NAME for another one. " +
			"Defaults to the envlist of the default source.",
		Local: true,
	}
}

// Requests returns the environments selected by the flags and the positional arguments.
func Requests(cmd *cli.Command) []config.Request {
	specs := slices.Concat(cmd.StringSlice(EnvsFlag), cmd.Args().Slice())
	return config.ParseSelection(cmd.String(ConfigFlag), specs)
}

// Routines loads and compiles the selected environments. Every problem is
// logged; the returned error only signals that there was one.
func Routines(ctx context.Context, cmd *cli.Command) ([]routine.Routine, error) {
	envs, err := config.Load(ctx, Requests(cmd))
	if err != nil {
		ctxlog.Error(ctx, "failed to load environments", "error", err)
		return nil, err
	}

	routines, err := compiler.CompileAll(ctx, envs)
	if err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				ctxlog.Error(ctx, "invalid environment", "error", e)
			}
		} else {
			ctxlog.Error(ctx, "invalid environment", "error", err)
		}

		return nil, err
	}

	return routines, nil
}
