// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Thermoquad/bearcat/internal/discovery"
	"github.com/Thermoquad/bearcat/internal/transport"
	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// dial opens the line connection to the scanner on port
var dial = func(port string) (bearcat.Conn, error) {
	t, err := transport.Open(port, transport.Config{
		BaudRate:    cfg.Serial.BaudRate,
		ReadTimeout: cfg.Serial.ReadTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// resolvePort returns the configured port, or the first port whose USB ID
// is in discovery.deviceIds
func resolvePort() (string, error) {
	if cfg.Serial.Port != "" {
		return cfg.Serial.Port, nil
	}

	ids, err := discovery.ParseDeviceIDs(cfg.Discovery.DeviceIDs)
	if err != nil {
		return "", err
	}
	port, err := discovery.FindPort(ids)
	if err != nil {
		return "", err
	}
	logger.Info("auto-detected scanner port", zap.String("port", port))
	return port, nil
}

func scannerOptions() []bearcat.Option {
	opts := []bearcat.Option{
		bearcat.WithLogger(logger),
		bearcat.WithSupportedModels(cfg.Scanner.SupportedModels...),
		bearcat.WithBandplans(cfg.Scanner.Bandplans),
		bearcat.WithRetries(cfg.Scanner.Retries),
		bearcat.WithVerifyWrites(cfg.Scanner.VerifyWrites),
		bearcat.WithCommandInterval(cfg.Scanner.CommandInterval),
	}
	if scannerMetrics != nil {
		opts = append(opts, bearcat.WithObserver(scannerMetrics))
	}
	return opts
}

// openScanner opens the port, creates the session and drains stale
// output. The connection is closed if any step fails.
func openScanner() (*bearcat.Scanner, string, error) {
	port, err := resolvePort()
	if err != nil {
		return nil, "", err
	}

	conn, err := dial(port)
	if err != nil {
		return nil, "", err
	}

	s := bearcat.New(conn, scannerOptions()...)
	if err := s.Initialize(); err != nil {
		s.Close()
		return nil, "", fmt.Errorf("initialize %s: %w", port, err)
	}

	return s, fmt.Sprintf("Serial: %s @ %d baud", port, cfg.Serial.BaudRate), nil
}

// mustOpenScanner is openScanner with failures mapped to exit code 2
func mustOpenScanner() (*bearcat.Scanner, string, error) {
	s, info, err := openScanner()
	if err != nil {
		return nil, "", &exitError{code: 2, err: fmt.Errorf("connection error: %w", err)}
	}
	return s, info, nil
}

// closeScanner leaves program mode and closes the port, logging failures
func closeScanner(s *bearcat.Scanner) {
	if err := s.Close(); err != nil {
		logger.Warn("close scanner", zap.Error(err))
	}
}
