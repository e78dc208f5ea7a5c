// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"runtime"
	"strings"
)

// setEnv sets key in a KEY=VALUE list, replacing an earlier entry for the same key.
// Keys are case insensitive on Windows.
func setEnv(env []string, key, value string) []string {
	kv := key + "=" + value

	for i, e := range env {
		k, _, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}

		if k == key || (runtime.GOOS == "windows" && strings.EqualFold(k, key)) {
			res := append(env[:i:i], kv)
			return append(res, env[i+1:]...)
		}
	}

	return append(env, kv)
}

// isPath reports whether a command names a file rather than a program to find on PATH.
func isPath(name string) bool {
	return strings.ContainsAny(name, `/\`)
}
