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
)

// Main runs the full init sequence. It only returns on the not-PID-1
// guard; a real boot ends in poweroff and never returns.
func Main() error {
	if !IsPidOne() {
		return ErrNotPidOne
	}

	state := new(State)

	err := boot(state)

	Shutdown(state, err)

	return nil
}

// boot runs the boot sequence up to the workload's terminal state. Any
// returned error aborts the boot; the caller still drives the full
// shutdown sequence.
func boot(state *State) error {
	log.SetFlags(0)
	log.Print("INFO vminit starting")

	if err := MountBaseline(state); err != nil {
		return err
	}

	if err := CreateSymlinks(DevSymlinks()); err != nil {
		return err
	}

	if err := RaiseFileLimit(); err != nil {
		log.Print("INFO raise file limit: ", err.Error())
	}

	cfg, err := LoadConfig(ConfigPath())
	if err != nil {
		return err
	}

	state.Config = cfg

	if cfg.ControlPort != 0 {
		reporter, err := DialControl(cfg.ControlPort)
		if err != nil {
			log.Print("INFO control channel unavailable: ", err.Error())
		} else {
			state.Reporter = reporter
		}
	}

	if err := state.Reporter.Send(Message{Phase: PhaseBooting}); err != nil {
		log.Print("INFO ", err.Error())
	}

	if err := ApplyMounts(state, cfg.Mounts); err != nil {
		return err
	}

	setupGuestEnvironment(cfg)

	if err := WriteFiles(cfg.Files); err != nil {
		return err
	}

	if err := lookupCommand(cfg.Command); err != nil {
		return err
	}

	sup, err := StartWorkload(cfg)
	if err != nil {
		return err
	}

	state.Workload = sup
	log.Printf("INFO workload started with PID %d", sup.Process().PID)

	if err := state.Reporter.Send(Message{Phase: PhaseReady}); err != nil {
		log.Print("INFO ", err.Error())
	}

	proc := sup.Wait()
	log.Printf("INFO workload %s with exit code %d", proc.State, proc.ExitCode)

	return nil
}

// setupGuestEnvironment applies the network and host identity parts of
// the configuration. None of them are fatal to the boot; the workload
// decides what it can live without.
func setupGuestEnvironment(cfg *BootConfig) {
	if err := SetupLoopback(); err != nil {
		log.Print("INFO loopback: ", err.Error())
	}

	var nameservers []string

	if cfg.Network != nil {
		nameservers = cfg.Network.Nameservers

		if err := ConfigureNetwork(cfg.Network); err != nil {
			log.Print("ERROR network setup: ", err.Error())
		}
	}

	if cfg.Hostname != "" {
		if err := SetHostname(cfg.Hostname); err != nil {
			log.Print("INFO set hostname: ", err.Error())
		}
	}

	if err := WriteEtcFiles(cfg.Hostname, nameservers); err != nil {
		log.Print("INFO ", err.Error())
	}
}

// lookupCommand verifies the workload executable is resolvable once
// all configured mounts are in place.
func lookupCommand(command string) error {
	info, err := os.Stat(command)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrExecNotFound, command)
		}

		return fmt.Errorf("%w: %v", ErrExecNotFound, err)
	}

	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrExecPermission, command)
	}

	return nil
}
