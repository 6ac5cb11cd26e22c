// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
)

// Symlinks is a collection of symbolic links. Keys are the links to
// create with the value being the target to link to.
type Symlinks map[string]string

// DevSymlinks returns the well-known /dev symlinks a minimal guest
// userland expects.
func DevSymlinks() Symlinks {
	return Symlinks{
		"/dev/fd":     "/proc/self/fd",
		"/dev/stdin":  "/proc/self/fd/0",
		"/dev/stdout": "/proc/self/fd/1",
		"/dev/stderr": "/proc/self/fd/2",
	}
}

// CreateSymlinks creates the given symbolic links. Links that already
// exist are left alone.
//
// This must run after the dependent filesystems have been mounted.
func CreateSymlinks(symlinks Symlinks) error {
	for _, link := range slices.Sorted(maps.Keys(symlinks)) {
		err := os.Symlink(symlinks[link], link)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("symlink %s: %w", link, err)
		}
	}

	return nil
}
