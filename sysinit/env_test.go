// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagevm/vminit/sysinit"
)

func TestEnvVarsEnviron(t *testing.T) {
	tests := []struct {
		name     string
		envVars  sysinit.EnvVars
		expected []string
	}{
		{
			name:     "nil",
			expected: []string{},
		},
		{
			name:     "empty",
			envVars:  sysinit.EnvVars{},
			expected: []string{},
		},
		{
			name: "sorted",
			envVars: sysinit.EnvVars{
				"PATH": "/bin",
				"HOME": "/root",
				"TERM": "linux",
			},
			expected: []string{"HOME=/root", "PATH=/bin", "TERM=linux"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.envVars.Environ())
		})
	}
}
