// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/stagevm/vminit/sysinit"
)

func main() {
	if err := sysinit.Main(); err != nil {
		// Only reached if the process does not run as PID 1. A real
		// boot never returns here since it ends in poweroff.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
