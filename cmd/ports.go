// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/bearcat/internal/discovery"
)

var portsAll bool

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports with a scanner cable attached",
	Long: `List serial ports whose USB vendor:product ID matches a known scanner
cable (discovery.deviceIds, default 10c4:ea60).

Use --all to list every serial port with its USB details.

Exit codes:
  0 - At least one matching port found
  1 - No matching port`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
	portsCmd.Flags().BoolVar(&portsAll, "all", false, "List all serial ports")
}

func runPorts(cmd *cobra.Command, args []string) error {
	ids, err := discovery.ParseDeviceIDs(cfg.Discovery.DeviceIDs)
	if err != nil {
		return err
	}
	ports, err := discovery.ListPorts(ids)
	if err != nil {
		return err
	}

	if printPorts(cmd.OutOrStdout(), ports, portsAll) == 0 {
		return &exitError{code: 1}
	}
	return nil
}

// printPorts writes one line per port and returns the number of matches
func printPorts(w io.Writer, ports []discovery.PortInfo, all bool) int {
	matches := 0
	for _, p := range ports {
		if p.Match {
			matches++
		}
		if !p.Match && !all {
			continue
		}

		marker := " "
		if p.Match {
			marker = "*"
		}
		if p.IsUSB {
			fmt.Fprintf(w, "%s %-16s USB %s:%s", marker, p.Name, p.VID, p.PID)
			if p.SerialNumber != "" {
				fmt.Fprintf(w, " serial=%s", p.SerialNumber)
			}
			fmt.Fprintln(w)
		} else {
			fmt.Fprintf(w, "%s %s\n", marker, p.Name)
		}
	}

	if matches == 0 {
		fmt.Fprintln(w, "No scanner cable found")
	}
	return matches
}
