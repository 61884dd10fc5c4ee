// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
	"github.com/Thermoquad/bearcat/pkg/bearcat/bearcattest"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&bearcat.TimeoutError{}, "timeout"},
		{fmt.Errorf("MODEL: %w", &bearcat.MalformedRecordError{}), "malformed"},
		{&bearcat.CommandError{Command: "PRG", Reply: "PRG,NG"}, "rejected"},
		{&bearcat.DecodeError{Reason: "x"}, "decode_error"},
		{&bearcat.IOError{Op: "read", Err: os.ErrClosed}, "io_error"},
		{bearcat.ErrInvalidField, "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result(tt.err), "Result(%v)", tt.err)
	}
}

func TestScannerMetrics_ObserveCommand(t *testing.T) {
	reg := NewRegistry()
	m := NewScannerMetrics(reg)

	dev := bearcattest.NewDevice()
	s := bearcat.New(dev, bearcat.WithObserver(m))
	require.NoError(t, s.Initialize())
	_, err := s.SelfCheck()
	require.NoError(t, err)
	dev.Silent = 1
	_, err = s.Model()
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("DRAIN", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("MODEL", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("MODEL", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("PROGRAM_MODE", "ok")))
	assert.Equal(t, 6, testutil.CollectAndCount(m.Commands))
	assert.Equal(t, 5, testutil.CollectAndCount(m.CommandDuration))
	assert.Greater(t, testutil.ToFloat64(m.LastRun), 0.0)
}

func TestScannerMetrics_ObserveChannel(t *testing.T) {
	reg := NewRegistry()
	m := NewScannerMetrics(reg)

	bad := bearcat.Channel{Index: 3, Frequency: bearcat.FrequencyFromMHz(90), Priority: true, Lockout: true}
	m.ObserveChannel(bad, bearcat.ValidateChannel(bad))
	m.ObserveChannel(bearcat.Channel{Index: 4}, nil)

	expected := `
# HELP bearcat_channel_anomalies_total Channel validation anomalies by type.
# TYPE bearcat_channel_anomalies_total counter
bearcat_channel_anomalies_total{type="out_of_band"} 1
bearcat_channel_anomalies_total{type="priority_lockout"} 1
# HELP bearcat_channels_checked_total Channel slots read and validated.
# TYPE bearcat_channels_checked_total counter
bearcat_channels_checked_total{state="empty"} 1
bearcat_channels_checked_total{state="programmed"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"bearcat_channel_anomalies_total", "bearcat_channels_checked_total")
	assert.NoError(t, err)
}

func TestWriteTextfile(t *testing.T) {
	reg := NewRegistry()
	m := NewScannerMetrics(reg)
	m.ObserveCommand(bearcat.CmdChannelInfo, 20*time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "bearcat.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bearcat_commands_total{command="CHANNEL_INFO",result="ok"} 1`)
	assert.Contains(t, string(data), "bearcat_command_duration_seconds_bucket")
}

func TestAnomalyName(t *testing.T) {
	assert.Equal(t, "index_range", AnomalyName(bearcat.AnomalyIndexRange))
	assert.Equal(t, "frequency_overflow", AnomalyName(bearcat.AnomalyFrequencyOverflow))
	assert.Equal(t, "anomaly_9", AnomalyName(bearcat.AnomalyType(9)))
}
