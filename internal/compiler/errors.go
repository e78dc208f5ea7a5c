// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrEnvDirMissing is returned when the virtualenv directory does not exist.
	ErrEnvDirMissing = errors.New("virtualenv directory does not exist, run tox once to create it")
	// ErrCommandNotAllowed is returned when a command is neither in the virtualenv nor whitelisted.
	ErrCommandNotAllowed = errors.New("command not in virtualenv or whitelist")
	// ErrHostVarUnset is returned when a host environment reference has no value and no default.
	ErrHostVarUnset = errors.New("host environment variable is not set")
	// ErrUnknownPlaceholder is returned when a value names a setting that does not exist.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	// ErrEmptyCommand is returned when an environment contains an empty command.
	ErrEmptyCommand = errors.New("empty command")
)

// ConfigurationError is returned when an environment cannot be compiled.
type ConfigurationError struct {
	Env string // Display name of the environment
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("environment %s: %s", e.Env, e.Err.Error())
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
