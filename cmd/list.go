// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/bearcat/internal/channellist"
	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

var (
	listFrom      int
	listTo        int
	listFormat    string
	listShowEmpty bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Read channel memory",
	Long: `Read channel slots from the scanner, one round trip per slot.

Formats:
  text  one line per channel as it is read (default)
  yaml  a channel list that 'bearcat load --format yaml' accepts
  load  channel:frequency lines that 'bearcat load' accepts

A slot that times out or comes back garbled is retried after a resync
(--retries). Reading stops at the first slot that still fails.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listFrom, "from", bearcat.MinChannel, "First channel")
	listCmd.Flags().IntVar(&listTo, "to", bearcat.MaxChannel, "Last channel")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format (text, yaml, load)")
	listCmd.Flags().BoolVar(&listShowEmpty, "empty", false, "Include empty slots in text output")
}

func runList(cmd *cobra.Command, args []string) error {
	switch listFormat {
	case "text", "yaml", "load":
	default:
		return fmt.Errorf("unknown format %q", listFormat)
	}

	s, _, err := mustOpenScanner()
	if err != nil {
		return err
	}
	defer closeScanner(s)

	return listChannels(cmd.OutOrStdout(), s, listFrom, listTo, listFormat, listShowEmpty)
}

// listChannels streams text output as channels arrive; the list formats
// are written once reading is complete
func listChannels(w io.Writer, s *bearcat.Scanner, from, to int, format string, showEmpty bool) error {
	var channels []bearcat.Channel
	for ch, err := range s.ChannelRange(from, to) {
		if err != nil {
			return err
		}
		if format == "text" {
			if showEmpty || !ch.IsEmpty() {
				fmt.Fprintln(w, bearcat.FormatChannel(ch))
			}
			continue
		}
		channels = append(channels, ch)
	}

	switch format {
	case "yaml":
		return channellist.WriteYAML(w, channels)
	case "load":
		return channellist.WriteText(w, channels)
	}
	return nil
}
