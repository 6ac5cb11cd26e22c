// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"log"
	"os"

	"github.com/stagevm/vminit/internal/exitcode"
)

// Shutdown drives the terminal sequence: force the workload into a
// terminal state, deliver the final control message, unwind the mount
// stack in reverse order and hand the machine back to the kernel.
//
// This is the only exit path of the init process. It never returns.
func Shutdown(state *State, bootErr error) {
	if bootErr != nil {
		_, _ = FprintError(os.Stderr, bootErr)
	}

	proc := stopWorkload(state)

	reportOutcome(state, proc, bootErr)

	if err := state.Reporter.Close(); err != nil {
		log.Print("INFO close control channel: ", err.Error())
	}

	state.unwind()

	// The console line is the fallback outcome report for hosts that
	// scrape the serial output instead of listening on the control
	// port.
	_, _ = exitcode.Fprint(os.Stdout, finalExitCode(proc, bootErr))

	sync()

	if err := Poweroff(); err != nil {
		log.Print("ERROR ", err.Error())
	}

	// Returning from PID 1 panics the kernel. Hold the machine in case
	// the poweroff failed.
	select {}
}

// stopWorkload ensures the workload reached a terminal state before
// teardown continues. It returns nil if no workload was ever spawned.
func stopWorkload(state *State) *ManagedProcess {
	if state.Workload == nil {
		return nil
	}

	return state.Workload.Stop()
}

func reportOutcome(state *State, proc *ManagedProcess, bootErr error) {
	var msg Message

	switch {
	case bootErr != nil:
		msg = Message{Phase: PhaseFailed, Detail: bootErr.Error()}
	case proc != nil:
		msg = TerminalMessage(proc)
	default:
		return
	}

	if err := state.Reporter.SendTerminal(msg); err != nil {
		log.Print("INFO ", err.Error())
	}
}

// finalExitCode derives the console exit code: the workload's own exit
// code if it ran to a terminal state, -1 for any boot failure.
func finalExitCode(proc *ManagedProcess, bootErr error) int {
	switch {
	case proc != nil && proc.State.Terminal() && proc.State != StateFailed:
		return proc.ExitCode
	case bootErr == nil:
		return 0
	default:
		return -1
	}
}
