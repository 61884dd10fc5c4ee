// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"fmt"
	"strings"
	"time"
)

// FormatCommandName returns the human-readable name for a command verb
func FormatCommandName(verb string) string {
	switch verb {
	case CmdDrain:
		return "DRAIN"
	case CmdModel:
		return "MODEL"
	case CmdFirmware:
		return "FIRMWARE"
	case CmdBandplan:
		return "BANDPLAN"
	case CmdProgram:
		return "PROGRAM_MODE"
	case CmdExitProgram:
		return "EXIT_PROGRAM_MODE"
	case CmdChannelInfo:
		return "CHANNEL_INFO"
	case CmdClearMemory:
		return "CLEAR_MEMORY"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame formats a frame with a timestamp into a human-readable line
func FormatFrame(direction string, f Frame, at time.Time) string {
	timestamp := at.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s %s (%s)", timestamp, direction, FormatCommandName(f.Verb()), f.Verb())

	if len(f) > 1 {
		result += " " + strings.Join(quoteFields(f[1:]), " ")
	}
	return result + "\n"
}

func quoteFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = fmt.Sprintf("%q", field)
	}
	return out
}

// FormatChannel formats a channel as a single line
func FormatChannel(c Channel) string {
	if c.IsEmpty() {
		return fmt.Sprintf("CH%03d  (empty)", c.Index)
	}

	mod := c.Modulation
	if mod == "" {
		mod = "-"
	}
	return fmt.Sprintf("CH%03d  %9.4f MHz  %-3s  %s",
		c.Index, c.Frequency.MHz(), mod, FormatFlags(c))
}

// FormatFlags formats the channel flags as a fixed-width string,
// e.g. "D-P" for delay and priority set
func FormatFlags(c Channel) string {
	flags := []byte("---")
	if c.Delay {
		flags[0] = 'D'
	}
	if c.Lockout {
		flags[1] = 'L'
	}
	if c.Priority {
		flags[2] = 'P'
	}
	return string(flags)
}

// FormatIdentity formats a self-check result
func FormatIdentity(id Identity) string {
	return fmt.Sprintf("%s, %s, bandplan %s (%s)", id.Model, id.Firmware, id.Bandplan, id.Region)
}
