// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalExitCode(t *testing.T) {
	tests := []struct {
		name         string
		proc         *ManagedProcess
		bootErr      error
		expectedCode int
	}{
		{
			name:         "no workload, no error",
			expectedCode: 0,
		},
		{
			name:         "boot failure before spawn",
			bootErr:      assert.AnError,
			expectedCode: -1,
		},
		{
			name:         "workload exited zero",
			proc:         &ManagedProcess{State: StateExited},
			expectedCode: 0,
		},
		{
			name:         "workload exited nonzero",
			proc:         &ManagedProcess{State: StateExited, ExitCode: 3},
			expectedCode: 3,
		},
		{
			name: "workload signaled",
			proc: &ManagedProcess{
				State:    StateSignaled,
				ExitCode: 143,
			},
			expectedCode: 143,
		},
		{
			name:         "spawn failed",
			proc:         &ManagedProcess{State: StateFailed},
			bootErr:      assert.AnError,
			expectedCode: -1,
		},
		{
			name:         "workload still running",
			proc:         &ManagedProcess{State: StateRunning},
			bootErr:      assert.AnError,
			expectedCode: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCode, finalExitCode(tt.proc, tt.bootErr))
		})
	}
}
