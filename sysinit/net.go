// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/vishvananda/netlink"
)

// SetupLoopback brings the loopback interface up. The kernel assigns
// its addresses automatically.
func SetupLoopback() error {
	link, err := netlink.LinkByName("lo")
	if err != nil {
		return fmt.Errorf("loopback: %w", err)
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("loopback up: %w", err)
	}

	return nil
}

// ConfigureNetwork applies the configured interface address, MTU and
// default route.
func ConfigureNetwork(cfg *NetworkConfig) error {
	link, err := netlink.LinkByName(cfg.Interface)
	if err != nil {
		return fmt.Errorf("link %s: %w", cfg.Interface, err)
	}

	if cfg.MTU > 0 {
		if err := netlink.LinkSetMTU(link, cfg.MTU); err != nil {
			return fmt.Errorf("set mtu on %s: %w", cfg.Interface, err)
		}
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("link %s up: %w", cfg.Interface, err)
	}

	if cfg.Address != "" {
		addr, err := netlink.ParseAddr(cfg.Address)
		if err != nil {
			return fmt.Errorf("parse address %s: %w", cfg.Address, err)
		}

		if err := netlink.AddrAdd(link, addr); err != nil {
			return fmt.Errorf("add address %s: %w", cfg.Address, err)
		}
	}

	if cfg.Gateway != "" {
		route := &netlink.Route{
			LinkIndex: link.Attrs().Index,
			Gw:        net.ParseIP(cfg.Gateway),
		}

		if err := netlink.RouteAdd(route); err != nil {
			return fmt.Errorf("add default route via %s: %w", cfg.Gateway, err)
		}
	}

	return nil
}

// WriteEtcFiles writes /etc/resolv.conf and /etc/hosts from the
// configured nameservers and hostname. Nothing is written for empty
// configuration.
func WriteEtcFiles(hostname string, nameservers []string) error {
	if hostname == "" && len(nameservers) == 0 {
		return nil
	}

	if err := os.MkdirAll("/etc", defaultDirMode); err != nil {
		return fmt.Errorf("create /etc: %w", err)
	}

	if len(nameservers) > 0 {
		var resolv strings.Builder
		for _, ns := range nameservers {
			fmt.Fprintf(&resolv, "nameserver %s\n", ns)
		}

		err := os.WriteFile("/etc/resolv.conf", []byte(resolv.String()), 0o644)
		if err != nil {
			return fmt.Errorf("write resolv.conf: %w", err)
		}
	}

	hosts := "127.0.0.1 localhost\n"
	if hostname != "" {
		hosts += "127.0.1.1 " + hostname + "\n"
	}

	if err := os.WriteFile("/etc/hosts", []byte(hosts), 0o644); err != nil {
		return fmt.Errorf("write hosts: %w", err)
	}

	return nil
}

// SetHostname sets the guest's hostname.
func SetHostname(name string) error {
	return sethostname(name)
}
