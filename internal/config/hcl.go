// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ErrParseHCL is returned when an HCL environment file cannot be decoded.
var ErrParseHCL = errors.New("failed to parse HCL environment file")

// hclFile is the document layout of an HCL environment file:
//
//	envlist = ["lint", "test"]
//
//	env "test" {
//	  envdir   = "${root}/.tox/test"
//	  commands = [["pytest", "tests"]]
//	  setenv   = { PYTHONHASHSEED = "0" }
//	}
type hclFile struct {
	EnvList []string `hcl:"envlist,optional"`
	Envs    []hclEnv `hcl:"env,block"`
}

type hclEnv struct {
	Name      string            `hcl:"name,label"`
	Dir       string            `hcl:"dir,optional"`
	ChangeDir string            `hcl:"changedir,optional"`
	EnvDir    string            `hcl:"envdir,optional"`
	Commands  [][]string        `hcl:"commands,optional"`
	SetEnv    map[string]string `hcl:"setenv,optional"`
	Whitelist []string          `hcl:"whitelist,optional"`
	Settings  map[string]string `hcl:"settings,optional"`
}

func openHCL(ctx context.Context, loc string) (source, error) {
	data, base, err := readSourceFile(ctx, loc)
	if err != nil {
		return nil, err
	}

	return parseHCL(data, loc, base)
}

func parseHCL(data []byte, filename, base string) (*fileSource, error) {
	f, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParseHCL, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"root": cty.StringVal(base),
		},
	}

	var doc hclFile
	if diags := gohcl.DecodeBody(f.Body, evalCtx, &doc); diags.HasErrors() {
		return nil, errors.Join(ErrParseHCL, diags)
	}

	src := newFileSource(base, doc.EnvList)

	for _, e := range doc.Envs {
		// HCL objects are unordered, so assignments are applied in key order.
		setenv := make([]EnvVar, 0, len(e.SetEnv))
		for _, k := range slices.Sorted(maps.Keys(e.SetEnv)) {
			setenv = append(setenv, EnvVar{Key: k, Value: e.SetEnv[k]})
		}

		if err := src.add(fileEnv{
			Name:      e.Name,
			Dir:       e.Dir,
			ChangeDir: e.ChangeDir,
			EnvDir:    e.EnvDir,
			Commands:  e.Commands,
			SetEnv:    setenv,
			Whitelist: e.Whitelist,
			Settings:  e.Settings,
		}); err != nil {
			return nil, err
		}
	}

	return src, nil
}
