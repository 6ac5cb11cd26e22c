// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	defaultFileMode = 0o644

	// nofileLimit replaces the kernel's conservative default for init,
	// which typical workloads outgrow immediately.
	nofileLimit = 10240
)

// WriteFiles stages the configured files into the guest filesystem,
// creating parent directories as needed. The files are independent of
// each other, so they are written in parallel.
func WriteFiles(files []FileSpec) error {
	eg := errgroup.Group{}
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for _, file := range files {
		eg.Go(func() error {
			return writeFile(file)
		})
	}

	return eg.Wait()
}

func writeFile(file FileSpec) error {
	contents, err := base64.StdEncoding.DecodeString(file.Contents)
	if err != nil {
		return fmt.Errorf("decode %s: %w", file.Path, err)
	}

	mode := os.FileMode(file.Mode)
	if mode == 0 {
		mode = defaultFileMode
	}

	if err := os.MkdirAll(filepath.Dir(file.Path), defaultDirMode); err != nil {
		return fmt.Errorf("stage %s: %w", file.Path, err)
	}

	if err := os.WriteFile(file.Path, contents, mode); err != nil {
		return fmt.Errorf("stage %s: %w", file.Path, err)
	}

	return nil
}

// RaiseFileLimit lifts the open file limit to [nofileLimit].
func RaiseFileLimit() error {
	return setNofileLimit(nofileLimit)
}
