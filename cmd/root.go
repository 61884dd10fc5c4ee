// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/bearcat/internal/config"
	"github.com/Thermoquad/bearcat/internal/logging"
	"github.com/Thermoquad/bearcat/internal/metrics"
	"github.com/Thermoquad/bearcat/internal/transport"
)

var (
	cfgFile string

	// Serial connection flags
	portName    string
	baudRate    int
	readTimeout time.Duration

	// Session flags
	retries      int
	verifyWrites bool

	// Logging and metrics flags
	logLevel        string
	logFormat       string
	logFile         string
	metricsTextfile string
)

// Loaded in PersistentPreRunE
var (
	cfg            *config.Config
	logger         = zap.NewNop()
	registry       *prometheus.Registry
	scannerMetrics *metrics.ScannerMetrics
)

var rootCmd = &cobra.Command{
	Use:   "bearcat",
	Short: "Uniden Bearcat BC75XLT programming tool",
	Long: `Bearcat - A CLI tool for reading and programming Uniden BC75XLT and
UBC75XLT handheld scanners over the USB programming cable.

The scanner is found automatically by its USB ID (Silicon Labs CP210x,
10c4:ea60) unless --port is given.

Settings are read from bearcat.yaml in the working directory or
$HOME/.config/bearcat, from BEARCAT_* environment variables (for example
BEARCAT_SERIAL_PORT), and from flags, in increasing order of precedence.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: bearcat.yaml)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device (default: auto-detect)")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", transport.DefaultBaudRate, "Baud rate")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "timeout", transport.DefaultReadTimeout, "Reply timeout")

	// Session flags
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 1, "Retries per channel after a timeout or garbled reply")
	rootCmd.PersistentFlags().BoolVar(&verifyWrites, "verify", false, "Read back every written channel")

	// Logging and metrics flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file (rotated)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err = logging.InitLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	registry = metrics.NewRegistry()
	scannerMetrics = metrics.NewScannerMetrics(registry)
	return nil
}

// finish writes the metrics textfile and flushes logs
func finish() {
	if cfg != nil && cfg.Metrics.Textfile != "" && registry != nil {
		if err := metrics.WriteTextfile(registry, cfg.Metrics.Textfile); err != nil {
			fmt.Fprintf(os.Stderr, "Write metrics: %v\n", err)
		}
	}
	_ = logger.Sync()
}

// exitError carries a process exit code out of a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps a command error to the process exit code:
// 0 ok, 1 failure, 2 connection error
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	err := rootCmd.Execute()
	finish()

	var ee *exitError
	if err != nil && (!errors.As(err, &ee) || ee.err != nil) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}
