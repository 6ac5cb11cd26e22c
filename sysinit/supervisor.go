// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ProcessState enumerates the lifecycle of the supervised workload.
type ProcessState int

// Lifecycle states. Exited, Signaled and Failed are terminal.
const (
	StateStarting ProcessState = iota
	StateRunning
	StateExited
	StateSignaled
	StateFailed
)

func (s ProcessState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateSignaled:
		return "signaled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further state transitions can happen.
func (s ProcessState) Terminal() bool {
	return s >= StateExited
}

// ManagedProcess tracks the single supervised workload.
//
// It is written only from within the supervisor's event loop. Readers
// must only rely on terminal fields after [Supervisor.Wait] returned.
type ManagedProcess struct {
	PID       int
	State     ProcessState
	ExitCode  int
	Signal    unix.Signal
	Reason    string
	StartedAt time.Time
	EndedAt   time.Time
}

// signalBacklog buffers pending signal notifications. Coalescing is
// fine for SIGCHLD since every notification drains all terminated
// descendants.
const signalBacklog = 16

// Supervisor spawns the workload and routes signals delivered to PID 1
// into reap and termination actions. Handled signals can never
// terminate PID 1 itself.
type Supervisor struct {
	proc    ManagedProcess
	cmd     *exec.Cmd
	grace   time.Duration
	signals chan os.Signal
}

// StartWorkload spawns the configured workload in its own process
// group with exactly the configured environment, working directory and
// identity.
//
// If uid/gid are configured, the kernel applies them between fork and
// exec; a refused identity change fails the spawn instead of running
// the workload with a higher privileged identity.
func StartWorkload(cfg *BootConfig) (*Supervisor, error) {
	s := &Supervisor{
		grace:   cfg.Grace(),
		signals: make(chan os.Signal, signalBacklog),
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Workdir
	cmd.Env = cfg.Env.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	attr := &syscall.SysProcAttr{Setpgid: true}

	if cfg.UID != nil || cfg.GID != nil {
		cred := &syscall.Credential{}

		if cfg.UID != nil {
			cred.Uid = *cfg.UID
		}

		if cfg.GID != nil {
			cred.Gid = *cfg.GID
		}

		attr.Credential = cred
	}

	cmd.SysProcAttr = attr

	// Handlers must be installed before the child can terminate, or an
	// early SIGCHLD would be lost.
	signal.Notify(s.signals, unix.SIGCHLD, unix.SIGTERM, unix.SIGINT)

	s.proc.State = StateStarting

	if err := cmd.Start(); err != nil {
		signal.Stop(s.signals)

		s.proc.State = StateFailed
		s.proc.Reason = err.Error()

		return nil, classifySpawnError(cfg, err)
	}

	s.cmd = cmd
	s.proc.PID = cmd.Process.Pid
	s.proc.State = StateRunning
	s.proc.StartedAt = time.Now()

	return s, nil
}

func classifySpawnError(cfg *BootConfig, err error) error {
	identityConfigured := cfg.UID != nil || cfg.GID != nil

	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrExecNotFound, cfg.Command)
	case identityConfigured &&
		(errors.Is(err, unix.EPERM) || errors.Is(err, unix.EINVAL)):
		return fmt.Errorf("%w: %v", ErrIdentityChange, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrExecPermission, cfg.Command)
	default:
		return fmt.Errorf("spawn %s: %w", cfg.Command, err)
	}
}

// Process returns the tracked workload record.
func (s *Supervisor) Process() *ManagedProcess {
	return &s.proc
}

// Wait blocks until the tracked workload reaches a terminal state.
//
// It is the single consumer of the signal queue and the single
// mutation point for the process state: SIGCHLD drains every
// terminated descendant, external termination requests are forwarded
// to the workload's process group and escalated to SIGKILL once the
// grace period elapses.
func (s *Supervisor) Wait() *ManagedProcess {
	defer signal.Stop(s.signals)

	var (
		killTimer *time.Timer
		killC     <-chan time.Time
	)

	for {
		select {
		case sig := <-s.signals:
			switch sig {
			case unix.SIGCHLD:
				if s.reap() {
					if killTimer != nil {
						killTimer.Stop()
					}

					return &s.proc
				}
			default:
				log.Printf("INFO forwarding %v to workload", sig)
				s.Terminate()

				if killC == nil {
					killTimer = time.NewTimer(s.grace)
					killC = killTimer.C
				}
			}
		case <-killC:
			log.Print("ERROR grace period elapsed, killing workload")
			s.Kill()
		}
	}
}

// Stop drives the workload into a terminal state if it is not there
// yet, using the same graceful-then-forced escalation as an external
// termination request.
func (s *Supervisor) Stop() *ManagedProcess {
	if s.proc.State.Terminal() {
		return &s.proc
	}

	s.signals <- unix.SIGTERM

	return s.Wait()
}

// Terminate asks the workload's process group to shut down gracefully.
func (s *Supervisor) Terminate() {
	s.signalGroup(unix.SIGTERM)
}

// Kill terminates the workload's process group unconditionally.
func (s *Supervisor) Kill() {
	s.signalGroup(unix.SIGKILL)
}

// signalGroup signals the whole process group so children the workload
// spawned itself are caught as well.
func (s *Supervisor) signalGroup(sig unix.Signal) {
	if s.proc.State.Terminal() {
		return
	}

	err := unix.Kill(-s.proc.PID, sig)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		log.Print("ERROR signal workload: ", err.Error())
	}
}

// reap collects every terminated descendant, not only the tracked
// child. Orphaned descendants are re-parented to PID 1 and must be
// collected to keep the process table from filling up, but only the
// tracked workload's status is recorded. It reports whether the
// tracked workload has reached a terminal state.
func (s *Supervisor) reap() bool {
	for {
		var status unix.WaitStatus

		pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)

		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return s.proc.State.Terminal()
		case err != nil:
			log.Print("ERROR wait4: ", err.Error())
			return s.proc.State.Terminal()
		case pid <= 0:
			return s.proc.State.Terminal()
		}

		if pid != s.proc.PID {
			log.Printf("INFO reaped orphaned process %d", pid)
			continue
		}

		s.proc.EndedAt = time.Now()

		if status.Signaled() {
			s.proc.State = StateSignaled
			s.proc.Signal = status.Signal()
			s.proc.ExitCode = 128 + int(status.Signal())

			continue
		}

		s.proc.State = StateExited
		s.proc.ExitCode = status.ExitStatus()
	}
}
