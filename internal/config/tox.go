// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

const (
	toxSection        = "tox"
	toxEnvPrefix      = "testenv:"
	setenvDictPrefix  = "SetenvDict: "
	toxIniDirKey      = "toxinidir"
	toxEnvListKey     = "envlist"
	toxEnvDirKey      = "envdir"
	toxChangeDirKey   = "changedir"
	toxCommandsKey    = "commands"
	toxSetEnvKey      = "setenv"
	toxWhitelistKey   = "whitelist_externals"
	toxAllowlistKey   = "allowlist_externals"
	toxEnvNameSetting = "envname"
)

// ErrShowConfig is returned when `tox --showconfig` fails.
var ErrShowConfig = errors.New("tox --showconfig failed")

// ShowConfig returns the output of `tox --showconfig` for the tox project in dir.
// The default source runs tox in the working directory without -c.
var ShowConfig = func(ctx context.Context, dir string) ([]byte, error) {
	args := []string{}
	if dir != DefaultSource {
		args = append(args, "-c", dir)
	}

	args = append(args, "--showconfig")

	out, err := exec.CommandContext(ctx, "tox", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrShowConfig, strings.TrimSpace(string(exitErr.Stderr)))
		}

		return nil, errors.Join(ErrShowConfig, err)
	}

	return out, nil
}

// toxSource is a parsed `tox --showconfig` output.
type toxSource struct {
	dir  string
	file *ini.File
	top  map[string]string
}

func openTox(ctx context.Context, dir string) (source, error) {
	out, err := ShowConfig(ctx, dir)
	if err != nil {
		return nil, err
	}

	return parseToxConfig(dir, out)
}

func parseToxConfig(dir string, data []byte) (*toxSource, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
		SkipUnrecognizableLines: true,
		KeyValueDelimiters:      "=:",
	}, data)
	if err != nil {
		return nil, err
	}

	top := f.Section(ini.DefaultSection).KeysHash()

	if s, err := f.GetSection(toxSection); err == nil {
		maps.Copy(top, s.KeysHash())
	}

	if _, ok := top[toxIniDirKey]; !ok {
		return nil, fmt.Errorf("%w: no %s in tox configuration", ErrLoadSource, toxIniDirKey)
	}

	return &toxSource{
		dir:  dir,
		file: f,
		top:  top,
	}, nil
}

// Defaults returns envlist, or every environment section when envlist is absent.
func (t *toxSource) Defaults() []string {
	if v, ok := t.top[toxEnvListKey]; ok {
		if names, err := stringList(v); err == nil {
			return names
		}

		return splitNames(v)
	}

	var names []string

	for _, s := range t.file.Sections() {
		switch name := s.Name(); {
		case name == ini.DefaultSection, name == toxSection:
		case strings.HasPrefix(name, toxEnvPrefix):
			names = append(names, strings.TrimPrefix(name, toxEnvPrefix))
		default:
			names = append(names, name)
		}
	}

	return names
}

// Env merges the top level settings with the environment's section.
func (t *toxSource) Env(name string) (Env, error) {
	var sec *ini.Section

	for _, candidate := range []string{name, toxEnvPrefix + name} {
		if s, err := t.file.GetSection(candidate); err == nil && candidate != toxSection {
			sec = s
			break
		}
	}

	if sec == nil {
		return Env{}, fmt.Errorf("%w: %s", ErrUnknownEnv, name)
	}

	settings := maps.Clone(t.top)
	maps.Copy(settings, sec.KeysHash())

	if _, ok := settings[toxEnvNameSetting]; !ok {
		settings[toxEnvNameSetting] = name
	}

	env := Env{
		Name:      name,
		Dir:       t.resolve(settings[toxIniDirKey]),
		ChangeDir: settings[toxChangeDirKey],
		EnvDir:    t.resolve(settings[toxEnvDirKey]),
		Settings:  settings,
	}

	var err error

	if v := settings[toxCommandsKey]; v != "" {
		if env.Commands, err = stringLists(v); err != nil {
			return Env{}, fmt.Errorf("%s: %s: %w", name, toxCommandsKey, err)
		}
	}

	for _, key := range []string{toxWhitelistKey, toxAllowlistKey} {
		v := settings[key]
		if v == "" {
			continue
		}

		list, err := stringList(v)
		if err != nil {
			return Env{}, fmt.Errorf("%s: %s: %w", name, key, err)
		}

		env.Whitelist = append(env.Whitelist, list...)
	}

	if v, ok := strings.CutPrefix(settings[toxSetEnvKey], setenvDictPrefix); ok {
		if env.SetEnv, err = stringDict(v); err != nil {
			return Env{}, fmt.Errorf("%s: %s: %w", name, toxSetEnvKey, err)
		}
	}

	return env, nil
}

func (t *toxSource) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(t.dir, p)
}

func splitNames(v string) []string {
	var names []string

	for f := range strings.FieldsFuncSeq(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' }) {
		names = append(names, f)
	}

	return names
}
