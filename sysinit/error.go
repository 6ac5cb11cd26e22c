// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPidOne is returned if the process is expected to be run as
	// PID 1 but is not.
	ErrNotPidOne = errors.New("process does not have PID 1")

	// ErrConfigMissing is returned if the boot configuration file
	// cannot be read.
	ErrConfigMissing = errors.New("boot configuration missing")
	// ErrConfigMalformed is returned if the boot configuration file is
	// not valid JSON.
	ErrConfigMalformed = errors.New("boot configuration malformed")
	// ErrConfigInvalid is returned if the boot configuration violates a
	// semantic constraint.
	ErrConfigInvalid = errors.New("boot configuration invalid")

	// ErrExecNotFound is returned if the workload executable does not
	// exist once all mounts are in place.
	ErrExecNotFound = errors.New("workload executable not found")
	// ErrExecPermission is returned if the workload executable is not
	// executable.
	ErrExecPermission = errors.New("workload executable not permitted")
	// ErrIdentityChange is returned if the configured uid/gid could not
	// be applied. The workload is never run with the wrong identity.
	ErrIdentityChange = errors.New("identity change failed")
)

// MountError is returned for a non-optional mount that failed. It
// aborts the boot sequence.
type MountError struct {
	Target string
	Cause  error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("mount %s: %v", e.Target, e.Cause)
}

func (e *MountError) Unwrap() error {
	return e.Cause
}
