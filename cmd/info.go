// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Identify the scanner and check it is supported",
	Long: `Drain stale output, then query model, firmware and bandplan.

The model must be one of scanner.supportedModels (BC75XLT, UBC75XLT). No
further commands are sent to an unsupported model. Reading the bandplan
puts the scanner in program mode; it is returned to normal operation on
exit.

Exit codes:
  0 - Scanner identified and supported
  1 - Check failed (unsupported model, unknown bandplan, no reply)
  2 - Connection error`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, connInfo, err := mustOpenScanner()
	if err != nil {
		return err
	}
	defer closeScanner(s)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bearcat - Scanner Info\n")
	fmt.Fprintf(out, "Connection: %s\n\n", connInfo)

	if err := printInfo(out, s); err != nil {
		return &exitError{code: 1, err: err}
	}
	return nil
}

// printInfo runs the self check and prints the result
func printInfo(w io.Writer, s *bearcat.Scanner) error {
	id, err := s.SelfCheck()
	if err != nil {
		var modelErr *bearcat.UnsupportedModelError
		if errors.As(err, &modelErr) {
			fmt.Fprintf(w, "FAILED: unsupported model %s\n", modelErr.Model)
		} else {
			fmt.Fprintf(w, "FAILED: %v\n", err)
		}
		return err
	}

	fmt.Fprintf(w, "SUCCESS: %s\n", bearcat.FormatIdentity(id))
	fmt.Fprintf(w, "  Model:    %s\n", id.Model)
	fmt.Fprintf(w, "  Firmware: %s\n", id.Firmware)
	fmt.Fprintf(w, "  Bandplan: %s (%s)\n", id.Bandplan, id.Region)
	return nil
}
