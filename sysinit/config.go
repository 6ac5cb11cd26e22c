// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is where the staging device delivers the boot
	// configuration unless the kernel command line overrides it.
	DefaultConfigPath = "/etc/vminit/config.json"

	// DefaultGracePeriod bounds the window between a graceful
	// termination request to the workload and the escalation to
	// SIGKILL.
	DefaultGracePeriod = 10 * time.Second

	kernelCmdlinePath = "/proc/cmdline"
	cmdlineConfigKey  = "vminit.config="
)

// MountSpec describes one configured mount. Configured mounts are
// applied strictly in listed order, so parents must precede children.
type MountSpec struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	FSType   string   `json:"fsType"`
	Options  []string `json:"options"`
	Optional bool     `json:"optional"`
}

// FileSpec is a file staged into the guest before the workload runs.
// Contents are base64 encoded in the configuration file.
type FileSpec struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
	Mode     uint32 `json:"mode"`
}

// NetworkConfig describes the workload's network requirements. All
// fields except Interface are optional.
type NetworkConfig struct {
	Interface   string   `json:"interface"`
	Address     string   `json:"address"`
	Gateway     string   `json:"gateway"`
	MTU         int      `json:"mtu"`
	Nameservers []string `json:"nameservers"`
}

// BootConfig is the declarative boot configuration. It is parsed once
// at startup and immutable afterwards.
type BootConfig struct {
	Command     string      `json:"command"`
	Args        []string    `json:"args"`
	Env         EnvVars     `json:"env"`
	Workdir     string      `json:"workdir"`
	UID         *uint32     `json:"uid"`
	GID         *uint32     `json:"gid"`
	Mounts      []MountSpec `json:"mounts"`
	ControlPort uint32      `json:"controlPort"`

	Hostname    string         `json:"hostname"`
	Network     *NetworkConfig `json:"network"`
	Files       []FileSpec     `json:"files"`
	GracePeriod string         `json:"gracePeriod"`
}

// Grace returns the configured grace period, or [DefaultGracePeriod]
// if none is set. Validation guarantees the configured value parses.
func (c *BootConfig) Grace() time.Duration {
	grace, err := time.ParseDuration(c.GracePeriod)
	if err != nil || grace <= 0 {
		return DefaultGracePeriod
	}

	return grace
}

// ConfigPath returns the boot configuration path, honoring a
// vminit.config= override on the kernel command line. It requires
// /proc to be mounted.
func ConfigPath() string {
	cmdline, err := os.ReadFile(kernelCmdlinePath)
	if err != nil {
		return DefaultConfigPath
	}

	return configPathFrom(string(cmdline))
}

func configPathFrom(cmdline string) string {
	for _, field := range strings.Fields(cmdline) {
		if path, found := strings.CutPrefix(field, cmdlineConfigKey); found && path != "" {
			return path
		}
	}

	return DefaultConfigPath
}

// LoadConfig reads and validates the boot configuration file. It
// performs no I/O beyond reading the single file.
//
// Errors wrap [ErrConfigMissing], [ErrConfigMalformed] or
// [ErrConfigInvalid]. All of them are fatal to the boot.
func LoadConfig(path string) (*BootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMissing, err)
	}

	var cfg BootConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}

	if err := validateConfig(&cfg, data); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validateConfig(cfg *BootConfig, raw []byte) error {
	if cfg.Command == "" {
		return fmt.Errorf("%w: command must not be empty", ErrConfigInvalid)
	}

	if !filepath.IsAbs(cfg.Command) {
		return fmt.Errorf("%w: command must be an absolute path", ErrConfigInvalid)
	}

	targets := make(map[string]bool, len(cfg.Mounts))

	for _, mnt := range cfg.Mounts {
		if !filepath.IsAbs(mnt.Target) {
			return fmt.Errorf(
				"%w: mount target %q must be an absolute path",
				ErrConfigInvalid, mnt.Target,
			)
		}

		target := filepath.Clean(mnt.Target)
		if targets[target] {
			return fmt.Errorf(
				"%w: duplicate mount target %s",
				ErrConfigInvalid, target,
			)
		}

		targets[target] = true
	}

	for _, file := range cfg.Files {
		if !filepath.IsAbs(file.Path) {
			return fmt.Errorf(
				"%w: file path %q must be an absolute path",
				ErrConfigInvalid, file.Path,
			)
		}
	}

	if cfg.GracePeriod != "" {
		if _, err := time.ParseDuration(cfg.GracePeriod); err != nil {
			return fmt.Errorf("%w: grace period: %v", ErrConfigInvalid, err)
		}
	}

	if cfg.Network != nil {
		if err := validateNetwork(cfg.Network); err != nil {
			return err
		}
	}

	key, err := duplicateEnvKey(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}

	if key != "" {
		return fmt.Errorf("%w: duplicate env key %q", ErrConfigInvalid, key)
	}

	return nil
}

func validateNetwork(network *NetworkConfig) error {
	if network.Interface == "" {
		return fmt.Errorf("%w: network interface must be set", ErrConfigInvalid)
	}

	if network.Address != "" {
		if _, _, err := net.ParseCIDR(network.Address); err != nil {
			return fmt.Errorf("%w: network address: %v", ErrConfigInvalid, err)
		}
	}

	if network.Gateway != "" && net.ParseIP(network.Gateway) == nil {
		return fmt.Errorf(
			"%w: network gateway %q is not an IP address",
			ErrConfigInvalid, network.Gateway,
		)
	}

	return nil
}

// duplicateEnvKey scans the raw document for repeated keys in the env
// object. Plain map decoding silently keeps the last duplicate, which
// would hide a configuration mistake.
func duplicateEnvKey(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	if _, err := dec.Token(); err != nil {
		return "", err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}

		key, _ := tok.(string)
		if key != "env" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return "", err
			}

			continue
		}

		tok, err = dec.Token()
		if err != nil {
			return "", err
		}

		// A null or mistyped env value is caught by the actual
		// decoding, not here.
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return "", nil
		}

		seen := make(map[string]bool)

		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return "", err
			}

			name, _ := tok.(string)
			if seen[name] {
				return name, nil
			}

			seen[name] = true

			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return "", err
			}
		}

		return "", nil
	}

	return "", nil
}
