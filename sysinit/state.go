// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"log"
	"slices"
)

// CleanupFunc undoes one piece of boot setup during teardown.
type CleanupFunc func() error

// State carries everything the boot sequence accumulates: the parsed
// configuration, the control channel reporter, the supervised workload
// and the teardown stack. It is passed explicitly through the boot
// phases; there is no package level mutable state.
type State struct {
	Config   *BootConfig
	Reporter *Reporter
	Workload *Supervisor

	cleanupFns []CleanupFunc
}

// OnShutdown registers fn to run during teardown. Functions run in
// reverse registration order, so mounts unwind children before
// parents.
func (s *State) OnShutdown(fn CleanupFunc) {
	s.cleanupFns = append(s.cleanupFns, fn)
}

func (s *State) unwind() {
	slices.Reverse(s.cleanupFns)

	for _, fn := range s.cleanupFns {
		if err := fn(); err != nil {
			log.Print("ERROR teardown: ", err.Error())
		}
	}

	s.cleanupFns = nil
}
