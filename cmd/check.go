// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

var (
	checkShowAll bool
	checkUseTUI  bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Read all channels and report anomalies",
	Long: `Read every channel slot and validate what the scanner reports.

Each non-empty channel is checked for:
  - An index outside 1-300
  - A frequency outside the receive bands (25-54, 108-174, 400-512 MHz)
  - A frequency that does not fit the 8-digit wire field
  - Priority and lockout both set

By default only anomalies are displayed. Use --show-all to display every
channel. A statistics summary is printed at the end.

The terminal UI is used when stdout is a terminal; --tui=false forces
text output.

Exit codes:
  0 - No anomalies
  1 - Anomalies found or reading failed
  2 - Connection error`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkShowAll, "show-all", false, "Show all channels (not just anomalies)")
	checkCmd.Flags().BoolVar(&checkUseTUI, "tui", true, "Use terminal UI (false for text mode)")
}

var (
	anomalyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runCheck(cmd *cobra.Command, args []string) error {
	useTUI := checkUseTUI
	if !cmd.Flags().Changed("tui") {
		useTUI = term.IsTerminal(int(os.Stdout.Fd()))
	}

	s, connInfo, err := mustOpenScanner()
	if err != nil {
		return err
	}
	defer closeScanner(s)

	var anomalies int
	if useTUI {
		anomalies, err = runCheckTUI(s, connInfo)
	} else {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Bearcat - Channel Check\n")
		fmt.Fprintf(out, "Connection: %s\n", connInfo)
		if checkShowAll {
			fmt.Fprintf(out, "Mode: All channels\n\n")
		} else {
			fmt.Fprintf(out, "Mode: Anomalies only\n\n")
		}
		anomalies, err = checkChannels(out, s, checkShowAll)
		fmt.Fprintln(out)
		fmt.Fprint(out, s.Stats().String())
	}

	if err != nil {
		return &exitError{code: 1, err: err}
	}
	if anomalies > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// validate checks one channel and records the result in the session
// statistics and metrics
func validate(s *bearcat.Scanner, ch bearcat.Channel) []bearcat.ValidationError {
	anomalies := bearcat.ValidateChannel(ch)
	s.Stats().UpdateChannel(ch, anomalies)
	if scannerMetrics != nil {
		scannerMetrics.ObserveChannel(ch, anomalies)
	}
	return anomalies
}

// checkChannels reads and validates every slot, printing anomalies as
// they are found. Returns the number of anomalies.
func checkChannels(w io.Writer, s *bearcat.Scanner, showAll bool) (int, error) {
	total := 0
	for ch, err := range s.Channels() {
		if err != nil {
			fmt.Fprintf(w, "[%s] %s %v\n", time.Now().Format("15:04:05.000"), failStyle.Render("READ ERROR:"), err)
			return total, err
		}

		anomalies := validate(s, ch)
		total += len(anomalies)
		if len(anomalies) > 0 {
			printAnomalies(w, ch, anomalies)
		} else if showAll {
			fmt.Fprintf(w, "%s %s\n", okStyle.Render("OK"), bearcat.FormatChannel(ch))
		}
	}

	if total == 0 {
		fmt.Fprintln(w, okStyle.Render("No anomalies found"))
	}
	return total, nil
}

// printAnomalies prints a channel and each of its validation errors
func printAnomalies(w io.Writer, ch bearcat.Channel, anomalies []bearcat.ValidationError) {
	fmt.Fprintf(w, "%s %s\n", anomalyStyle.Render("ANOMALY:"), bearcat.FormatChannel(ch))
	for i, a := range anomalies {
		fmt.Fprintf(w, "  Issue %d: %s\n", i+1, a.Message)
		switch a.Type {
		case bearcat.AnomalyOutOfBand:
			fmt.Fprintln(w, dimStyle.Render("    coverage: 25-54, 108-174, 400-512 MHz"))
		case bearcat.AnomalyPriorityLockout:
			fmt.Fprintln(w, dimStyle.Render("    a locked out channel is never scanned"))
		}
	}
}
