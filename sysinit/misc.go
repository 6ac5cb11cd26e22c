// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"fmt"
	"io"
	"os"
)

// IsPidOne returns true if the running process has PID 1.
func IsPidOne() bool {
	return os.Getpid() == 1
}

// Poweroff hands the machine back to the kernel.
//
// Restart is used instead of power off since it does not require ACPI.
// MicroVM hypervisors boot their kernels with reboot-as-exit
// parameters, so the restart terminates the instance.
func Poweroff() error {
	// Silence the kernel so it does not garble the final console
	// output.
	_ = sysctl("kernel/printk", "0")

	return reboot()
}

// FprintError writes the error in the console error format.
func FprintError(w io.Writer, err error) (int, error) {
	return fmt.Fprintf(w, "Error: %v\n", err)
}
