// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package metrics counts protocol round trips and channel checks, and
// exports them in the node_exporter textfile format.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// NewRegistry creates an empty registry. Runtime collectors are left out
// so textfiles from several runs can sit side by side.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// WriteTextfile atomically writes every metric in reg to path
func WriteTextfile(reg *prometheus.Registry, path string) error {
	return prometheus.WriteToTextfile(path, reg)
}

// ScannerMetrics implements bearcat.Observer
type ScannerMetrics struct {
	Commands        *prometheus.CounterVec   // labels: command, result
	CommandDuration *prometheus.HistogramVec // labels: command
	Channels        *prometheus.CounterVec   // labels: state=programmed|empty
	Anomalies       *prometheus.CounterVec   // labels: type
	LastRun         prometheus.Gauge
}

// NewScannerMetrics registers and returns the scanner metrics
func NewScannerMetrics(reg prometheus.Registerer) *ScannerMetrics {
	m := &ScannerMetrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bearcat",
			Name:      "commands_total",
			Help:      "Scanner command round trips by command and result.",
		}, []string{"command", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bearcat",
			Name:      "command_duration_seconds",
			Help:      "Scanner command round trip time.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 3},
		}, []string{"command"}),
		Channels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bearcat",
			Name:      "channels_checked_total",
			Help:      "Channel slots read and validated.",
		}, []string{"state"}),
		Anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bearcat",
			Name:      "channel_anomalies_total",
			Help:      "Channel validation anomalies by type.",
		}, []string{"type"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bearcat",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last command finished.",
		}),
	}
	reg.MustRegister(m.Commands, m.CommandDuration, m.Channels, m.Anomalies, m.LastRun)
	return m
}

// ObserveCommand implements bearcat.Observer
func (m *ScannerMetrics) ObserveCommand(verb string, elapsed time.Duration, err error) {
	name := bearcat.FormatCommandName(verb)
	m.Commands.WithLabelValues(name, Result(err)).Inc()
	m.CommandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	m.LastRun.SetToCurrentTime()
}

// ObserveChannel records one validated channel
func (m *ScannerMetrics) ObserveChannel(c bearcat.Channel, anomalies []bearcat.ValidationError) {
	state := "programmed"
	if c.IsEmpty() {
		state = "empty"
	}
	m.Channels.WithLabelValues(state).Inc()
	for _, a := range anomalies {
		m.Anomalies.WithLabelValues(AnomalyName(a.Type)).Inc()
	}
}

// Result classifies a round trip error for the result label
func Result(err error) string {
	var (
		timeoutErr   *bearcat.TimeoutError
		decodeErr    *bearcat.DecodeError
		ioErr        *bearcat.IOError
		malformedErr *bearcat.MalformedRecordError
		commandErr   *bearcat.CommandError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &decodeErr):
		return "decode_error"
	case errors.As(err, &ioErr):
		return "io_error"
	case errors.As(err, &malformedErr):
		return "malformed"
	case errors.As(err, &commandErr):
		return "rejected"
	default:
		return "error"
	}
}

// AnomalyName returns the label value for an anomaly type
func AnomalyName(t bearcat.AnomalyType) string {
	switch t {
	case bearcat.AnomalyIndexRange:
		return "index_range"
	case bearcat.AnomalyOutOfBand:
		return "out_of_band"
	case bearcat.AnomalyFrequencyOverflow:
		return "frequency_overflow"
	case bearcat.AnomalyPriorityLockout:
		return "priority_lockout"
	default:
		return "anomaly_" + strconv.Itoa(int(t))
	}
}
