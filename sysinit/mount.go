// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// FSType is a file system type.
type FSType string

// Special file system types of the baseline topology.
const (
	FSTypeDevPts FSType = "devpts"
	FSTypeDevTmp FSType = "devtmpfs"
	FSTypeMqueue FSType = "mqueue"
	FSTypeProc   FSType = "proc"
	FSTypeSys    FSType = "sysfs"
	FSTypeTmp    FSType = "tmpfs"

	defaultDirMode = 0o755
)

// BaselineMount is one entry of the fixed early boot topology.
type BaselineMount struct {
	Path    string
	FSType  FSType
	Flags   uintptr
	Data    string
	MayFail bool
}

// BaselineMounts returns the filesystem topology established before
// any configured mount is considered. The order is significant,
// parents precede children.
//
// Process supervision depends on the process info and device node
// filesystems, so /dev, /proc and /sys must not fail. The rest mirrors
// what a minimal guest userland expects and may be missing on stripped
// down kernels.
func BaselineMounts() []BaselineMount {
	commonFlags := uintptr(unix.MS_NODEV | unix.MS_NOEXEC | unix.MS_NOSUID)

	return []BaselineMount{
		{Path: "/dev", FSType: FSTypeDevTmp},
		{
			Path:    "/dev/pts",
			FSType:  FSTypeDevPts,
			Flags:   unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NOATIME,
			Data:    "mode=0620,ptmxmode=666",
			MayFail: true,
		},
		{
			Path:    "/dev/mqueue",
			FSType:  FSTypeMqueue,
			Flags:   commonFlags,
			MayFail: true,
		},
		{
			Path:    "/dev/shm",
			FSType:  FSTypeTmp,
			Flags:   unix.MS_NOSUID | unix.MS_NODEV,
			Data:    "mode=1777",
			MayFail: true,
		},
		{Path: "/proc", FSType: FSTypeProc, Flags: commonFlags},
		{Path: "/sys", FSType: FSTypeSys, Flags: commonFlags},
		{
			Path:    "/run",
			FSType:  FSTypeTmp,
			Flags:   unix.MS_NOSUID | unix.MS_NODEV,
			Data:    "mode=0755",
			MayFail: true,
		},
		{Path: "/tmp", FSType: FSTypeTmp, MayFail: true},
	}
}

// MountBaseline establishes the early boot topology. Successful mounts
// are registered on the shutdown stack for reverse order unmounting.
//
// It runs exactly once per boot, before the configuration is loaded,
// since reading the kernel command line already requires /proc.
func MountBaseline(state *State) error {
	for _, mnt := range BaselineMounts() {
		source := string(mnt.FSType)

		err := mountAt(mnt.Path, source, string(mnt.FSType), mnt.Flags, mnt.Data)
		if err != nil {
			if mnt.MayFail {
				log.Print("INFO optional mount failed: ", err.Error())
				continue
			}

			return &MountError{Target: mnt.Path, Cause: err}
		}

		registerUnmount(state, mnt.Path)
	}

	return nil
}

// ApplyMounts applies the configured mounts strictly in listed order.
//
// A failing mount aborts with a [MountError] unless flagged optional,
// in which case it is logged and the remaining mounts still proceed.
func ApplyMounts(state *State, mounts []MountSpec) error {
	for _, mnt := range mounts {
		flags, data := parseMountOptions(mnt.Options)

		source := mnt.Source
		if source == "" {
			source = mnt.FSType
		}

		err := mountAt(mnt.Target, source, mnt.FSType, flags, data)
		if err != nil {
			if mnt.Optional {
				log.Print("INFO optional mount failed: ", err.Error())
				continue
			}

			return &MountError{Target: mnt.Target, Cause: err}
		}

		registerUnmount(state, mnt.Target)
	}

	return nil
}

func mountAt(target, source, fsType string, flags uintptr, data string) error {
	if err := os.MkdirAll(target, defaultDirMode); err != nil {
		return fmt.Errorf("mkdir %s: %w", target, err)
	}

	return mount(source, target, fsType, flags, data)
}

func registerUnmount(state *State, target string) {
	state.OnShutdown(func() error {
		return unmount(target)
	})
}

// mountFlagNames maps the option strings understood as mount(2) flags.
var mountFlagNames = map[string]uintptr{
	"ro":          unix.MS_RDONLY,
	"nosuid":      unix.MS_NOSUID,
	"nodev":       unix.MS_NODEV,
	"noexec":      unix.MS_NOEXEC,
	"noatime":     unix.MS_NOATIME,
	"nodiratime":  unix.MS_NODIRATIME,
	"relatime":    unix.MS_RELATIME,
	"strictatime": unix.MS_STRICTATIME,
	"sync":        unix.MS_SYNCHRONOUS,
}

// parseMountOptions splits the option strings of a [MountSpec] into
// mount(2) flags and the filesystem specific data string. Unknown
// options pass through as data, the mount(2) convention.
func parseMountOptions(options []string) (uintptr, string) {
	var (
		flags uintptr
		data  []string
	)

	for _, opt := range options {
		if flag, known := mountFlagNames[opt]; known {
			flags |= flag
			continue
		}

		data = append(data, opt)
	}

	return flags, strings.Join(data, ",")
}
