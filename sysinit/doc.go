// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

// Package sysinit implements a minimal PID 1 for single-purpose
// microVMs.
//
// The boot sequence mounts the baseline filesystem topology, loads the
// declarative boot configuration delivered on the staging device,
// applies the configured mounts and guest environment, spawns the
// workload and supervises it until it terminates. The outcome is
// reported to the host over a vsock control channel, with an exit code
// line on the console as fallback, before the machine is handed back
// to the kernel.
package sysinit
