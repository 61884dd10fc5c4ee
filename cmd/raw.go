// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

var rawCmd = &cobra.Command{
	Use:   "raw [command...]",
	Short: "Send protocol commands and show the replies",
	Long: `Send raw protocol lines and print each exchange with a timestamp.

Each argument is sent as one command line, e.g.

  bearcat raw MDL VER PRG BPL EPG

With no arguments commands are read from stdin, one per line. No reply is
validated. Program mode is not tracked here; send EPG before disconnecting
if PRG was sent.`,
	RunE: runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func runRaw(cmd *cobra.Command, args []string) error {
	s, connInfo, err := mustOpenScanner()
	if err != nil {
		return err
	}
	defer closeScanner(s)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bearcat - Raw Console\n")
	fmt.Fprintf(out, "Connection: %s\n\n", connInfo)

	if len(args) > 0 {
		return rawExchange(out, s, args)
	}

	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		if err := rawExchange(out, s, []string{strings.TrimSpace(sc.Text())}); err != nil {
			return err
		}
	}
	return sc.Err()
}

// rawExchange sends each line and prints both directions. Timeouts are
// printed and skipped; other failures stop the exchange.
func rawExchange(w io.Writer, s *bearcat.Scanner, lines []string) error {
	for _, line := range lines {
		fmt.Fprint(w, bearcat.FormatFrame("TX", bearcat.ParseFrame(line), time.Now()))

		reply, err := s.Query(line)
		if errors.Is(err, bearcat.ErrTimeout) {
			fmt.Fprintf(w, "[%s] -- no reply (%v)\n", time.Now().Format("15:04:05.000"), err)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprint(w, bearcat.FormatFrame("RX", bearcat.ParseFrame(reply), time.Now()))
	}
	return nil
}
