// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPathFrom(t *testing.T) {
	tests := []struct {
		name         string
		cmdline      string
		expectedPath string
	}{
		{
			name:         "empty",
			expectedPath: DefaultConfigPath,
		},
		{
			name:         "no override",
			cmdline:      "console=ttyS0 reboot=k panic=1 pci=off",
			expectedPath: DefaultConfigPath,
		},
		{
			name:         "override",
			cmdline:      "console=ttyS0 vminit.config=/boot/run.json panic=1",
			expectedPath: "/boot/run.json",
		},
		{
			name:         "empty override ignored",
			cmdline:      "vminit.config= panic=1",
			expectedPath: DefaultConfigPath,
		},
		{
			name:         "trailing newline",
			cmdline:      "vminit.config=/boot/run.json\n",
			expectedPath: "/boot/run.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedPath, configPathFrom(tt.cmdline))
		})
	}
}

func TestDuplicateEnvKey(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expectedKey string
	}{
		{
			name: "no env",
			raw:  `{"command": "/bin/app"}`,
		},
		{
			name: "empty env",
			raw:  `{"command": "/bin/app", "env": {}}`,
		},
		{
			name: "null env",
			raw:  `{"command": "/bin/app", "env": null}`,
		},
		{
			name: "unique keys",
			raw:  `{"env": {"A": "1", "B": "2"}, "command": "/bin/app"}`,
		},
		{
			name:        "duplicate key",
			raw:         `{"env": {"A": "1", "B": "2", "A": "3"}}`,
			expectedKey: "A",
		},
		{
			name: "duplicates outside env ignored",
			raw:  `{"mounts": [], "mounts": [], "env": {"A": "1"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := duplicateEnvKey([]byte(tt.raw))
			require.NoError(t, err)

			assert.Equal(t, tt.expectedKey, key)
		})
	}
}
