// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"maps"
	"slices"
)

// EnvVars is a map of environment variable values by name.
type EnvVars map[string]string

// Environ renders the variables as KEY=VALUE pairs in lexicographic
// order. The workload environment is built exclusively from these;
// nothing from init's own environment leaks through.
func (e EnvVars) Environ() []string {
	environ := make([]string, 0, len(e))

	for _, key := range slices.Sorted(maps.Keys(e)) {
		environ = append(environ, key+"="+e[key])
	}

	return environ
}
