// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateUnwind(t *testing.T) {
	calls := []int{}

	state := new(State)

	state.OnShutdown(func() error {
		calls = append(calls, 1)
		return nil
	})

	state.OnShutdown(func() error {
		calls = append(calls, 2)
		return assert.AnError
	})

	state.OnShutdown(func() error {
		calls = append(calls, 3)
		return nil
	})

	state.unwind()

	// Reverse order, errors do not stop the unwinding.
	assert.Equal(t, []int{3, 2, 1}, calls)
	assert.Nil(t, state.cleanupFns)
}
