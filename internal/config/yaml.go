// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
)

// ErrSetEnvValue is returned when a YAML setenv value is not a scalar.
var ErrSetEnvValue = errors.New("setenv values must be scalars")

// yamlFile is the document layout of a YAML environment file.
type yamlFile struct {
	EnvList []string  `yaml:"envlist"`
	Envs    []yamlEnv `yaml:"envs"`
}

type yamlEnv struct {
	Name      string            `yaml:"name"`
	Dir       string            `yaml:"dir"`
	ChangeDir string            `yaml:"changedir"`
	EnvDir    string            `yaml:"envdir"`
	Commands  [][]string        `yaml:"commands"`
	SetEnv    yamlSetEnv        `yaml:"setenv"`
	Whitelist []string          `yaml:"whitelist"`
	Settings  map[string]string `yaml:"settings"`
}

func openYAML(ctx context.Context, loc string) (source, error) {
	data, base, err := readSourceFile(ctx, loc)
	if err != nil {
		return nil, err
	}

	return parseYAML(data, base)
}

func parseYAML(data []byte, base string) (*fileSource, error) {
	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	src := newFileSource(base, doc.EnvList)

	for _, e := range doc.Envs {
		if err := src.add(fileEnv{
			Name:      e.Name,
			Dir:       e.Dir,
			ChangeDir: e.ChangeDir,
			EnvDir:    e.EnvDir,
			Commands:  e.Commands,
			SetEnv:    e.SetEnv,
			Whitelist: e.Whitelist,
			Settings:  e.Settings,
		}); err != nil {
			return nil, err
		}
	}

	return src, nil
}

// yamlSetEnv keeps setenv assignments in document order with each value's
// source text, so 1.10 stays "1.10" rather than becoming a float.
type yamlSetEnv []EnvVar

// UnmarshalYAML implements yaml.NodeUnmarshaler.
func (s *yamlSetEnv) UnmarshalYAML(node ast.Node) error {
	var pairs []*ast.MappingValueNode

	switch n := node.(type) {
	case *ast.NullNode:
		return nil
	case *ast.MappingNode:
		pairs = n.Values
	case *ast.MappingValueNode:
		pairs = []*ast.MappingValueNode{n}
	default:
		return fmt.Errorf("setenv: expected a mapping, got %s", node.Type())
	}

	res := make(yamlSetEnv, 0, len(pairs))

	for _, p := range pairs {
		key, err := scalarText(p.Key)
		if err != nil {
			return err
		}

		val, err := scalarText(p.Value)
		if err != nil {
			return fmt.Errorf("%w: %s", err, key)
		}

		res = append(res, EnvVar{Key: key, Value: val})
	}

	*s = res

	return nil
}

func scalarText(node ast.Node) (string, error) {
	switch n := node.(type) {
	case nil, *ast.NullNode:
		return "", nil
	case *ast.StringNode:
		return n.Value, nil
	case *ast.LiteralNode:
		return n.Value.Value, nil
	case ast.ScalarNode:
		return n.GetToken().Value, nil
	default:
		return "", ErrSetEnvValue
	}
}
