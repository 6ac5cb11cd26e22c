// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

// Package exitcode implements the console exit code line.
//
// The line is the fallback outcome report: hosts that do not listen on
// the control port can still scrape the workload's exit code from the
// guest's serial output.
package exitcode

import (
	"fmt"
	"io"
)

// Identifier marks the exit code line in the console output.
const Identifier = "VMINIT_EXIT_CODE"

// Sprint returns the console line announcing the given exit code.
func Sprint(exitCode int) string {
	return fmt.Sprintf("%s: %d", Identifier, exitCode)
}

// Fprint writes the exit code line to the given writer.
//
// The line is framed by newlines so interleaved console output cannot
// corrupt it.
func Fprint(w io.Writer, exitCode int) (int, error) {
	return fmt.Fprintln(w, "\n"+Sprint(exitCode))
}

// Parse extracts the exit code from a console line. It reports false
// if the line is not an exit code line.
func Parse(line string) (int, bool) {
	var exitCode int

	_, err := fmt.Sscanf(line, Identifier+": %d", &exitCode)
	if err != nil {
		return 0, false
	}

	return exitCode, true
}
