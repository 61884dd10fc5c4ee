// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

var (
	setDelay    bool
	setLockout  bool
	setPriority bool
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Read or write a single channel slot",
}

var channelGetCmd = &cobra.Command{
	Use:   "get <index>",
	Short: "Read one channel slot",
	Args:  cobra.ExactArgs(1),
	RunE:  runChannelGet,
}

var channelSetCmd = &cobra.Command{
	Use:   "set <index> <MHz>",
	Short: "Write one channel slot",
	Long: `Write a frequency and flags to one channel slot.

The frequency is given in MHz and stored with 100 Hz resolution
(e.g. 162.55 is stored as 01625500). A frequency of 0 empties the slot.
Modulation is chosen by the scanner and cannot be set.

With --verify the slot is read back and compared after the write.`,
	Args: cobra.ExactArgs(2),
	RunE: runChannelSet,
}

func init() {
	rootCmd.AddCommand(channelCmd)
	channelCmd.AddCommand(channelGetCmd)
	channelCmd.AddCommand(channelSetCmd)

	channelSetCmd.Flags().BoolVar(&setDelay, "delay", false, "Set the delay flag")
	channelSetCmd.Flags().BoolVar(&setLockout, "lockout", false, "Lock the channel out of scanning")
	channelSetCmd.Flags().BoolVar(&setPriority, "priority", false, "Mark the channel as priority")
}

// parseIndex parses a channel index argument and checks its range
func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid channel %q: %w", arg, err)
	}
	if !bearcat.ValidIndex(index) {
		return 0, fmt.Errorf("%w: %d", bearcat.ErrChannelOutOfRange, index)
	}
	return index, nil
}

// parseMHz parses a frequency argument in MHz
func parseMHz(arg string) (bearcat.Frequency, error) {
	mhz, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", arg, err)
	}
	return bearcat.ParseMHz(mhz)
}

func runChannelGet(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	s, _, err := mustOpenScanner()
	if err != nil {
		return err
	}
	defer closeScanner(s)

	return printChannel(cmd.OutOrStdout(), s, index)
}

func printChannel(w io.Writer, s *bearcat.Scanner, index int) error {
	ch, err := s.Channel(index)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, bearcat.FormatChannel(ch))
	return nil
}

func runChannelSet(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	freq, err := parseMHz(args[1])
	if err != nil {
		return err
	}

	s, _, err := mustOpenScanner()
	if err != nil {
		return err
	}
	defer closeScanner(s)

	return writeChannel(cmd.OutOrStdout(), s, bearcat.Channel{
		Index:     index,
		Frequency: freq,
		Delay:     setDelay,
		Lockout:   setLockout,
		Priority:  setPriority,
	})
}

func writeChannel(w io.Writer, s *bearcat.Scanner, ch bearcat.Channel) error {
	if err := s.SetChannel(ch); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", bearcat.FormatChannel(ch))
	return nil
}
