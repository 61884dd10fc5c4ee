// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/bearcat/internal/channellist"
	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

var (
	loadClear  bool
	loadFormat string
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Program channels from a list file",
	Long: `Write every channel in a list file to the scanner.

Text lists hold one "channel:frequency" pair per line (frequency in MHz);
blank lines and lines starting with # are ignored. YAML lists hold entries
with channel, frequency and optional delay, lockout and priority flags.
The format is taken from the file extension unless --format is given. Use
"-" to read a text list from stdin.

Malformed lines are reported and skipped. With --clear all channel memory
is erased before writing. The scanner leaves program mode when done.

Exit codes:
  0 - All channels written
  1 - Some lines or writes failed
  2 - Connection error`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(&loadClear, "clear", false, "Erase all channels before loading")
	loadCmd.Flags().StringVar(&loadFormat, "format", "", "List format (text, yaml); default from extension")
}

// listFormatFor picks the list format for path
func listFormatFor(path, format string) (string, error) {
	switch format {
	case "text", "yaml":
		return format, nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "text", nil
}

// readChannelList parses a list and reports skipped lines to w
func readChannelList(w io.Writer, r io.Reader, format string) ([]bearcat.Channel, int, error) {
	parse := channellist.ParseText
	if format == "yaml" {
		parse = channellist.ParseYAML
	}

	channels, bad, err := parse(r)
	if err != nil {
		return nil, 0, err
	}
	for _, le := range bad {
		fmt.Fprintf(w, "SKIP: %s\n", le.Error())
	}
	return channels, len(bad), nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := listFormatFor(path, loadFormat)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	out := cmd.OutOrStdout()
	channels, skipped, err := readChannelList(out, r, format)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return &exitError{code: 1, err: fmt.Errorf("no channels in %s", path)}
	}

	s, _, err := mustOpenScanner()
	if err != nil {
		return err
	}
	defer closeScanner(s)

	failed, err := loadChannels(out, s, channels, loadClear)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	fmt.Fprintf(out, "\nLoaded %d of %d channels", len(channels)-failed, len(channels))
	if skipped > 0 {
		fmt.Fprintf(out, ", skipped %d lines", skipped)
	}
	fmt.Fprintln(out)

	if failed > 0 || skipped > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// loadChannels optionally clears memory, writes each channel and leaves
// program mode. A failed write is reported and counted; the error return
// is reserved for failures that stop the load.
func loadChannels(w io.Writer, s *bearcat.Scanner, channels []bearcat.Channel, clear bool) (int, error) {
	if clear {
		if err := s.ClearMemory(); err != nil {
			return 0, fmt.Errorf("clear memory: %w", err)
		}
		fmt.Fprintln(w, "Cleared channel memory")
	}

	failed := 0
	for _, ch := range channels {
		if err := s.SetChannel(ch); err != nil {
			failed++
			logger.Warn("channel write failed", zap.Int("channel", ch.Index), zap.Error(err))
			fmt.Fprintf(w, "FAILED: CH%03d: %v\n", ch.Index, err)
			continue
		}
		fmt.Fprintln(w, bearcat.FormatChannel(ch))
	}

	if err := s.ExitProgramMode(); err != nil {
		return failed, err
	}
	return failed, nil
}
