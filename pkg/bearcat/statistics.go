// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks command round trips and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Round trip counters
	TotalCommands uint64
	OKCommands    uint64
	Timeouts      uint64
	DecodeErrors  uint64
	IOErrors      uint64
	Malformed     uint64
	Rejected      uint64
	Retries       uint64
	Resyncs       uint64

	// Channel validation counters
	ChannelsChecked uint64
	ChannelsEmpty   uint64
	Anomalies       uint64
	IndexRange      uint64
	OutOfBand       uint64
	Overflow        uint64
	Contradictions  uint64

	// Latency
	TotalLatency time.Duration
	MaxLatency   time.Duration

	// Rates (calculated)
	CommandRate float64 // commands/sec
	ErrorRate   float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one command round trip and its outcome
func (s *Statistics) Update(elapsed time.Duration, err error) {
	s.TotalCommands++
	s.TotalLatency += elapsed
	if elapsed > s.MaxLatency {
		s.MaxLatency = elapsed
	}
	s.LastUpdateTime = time.Now()

	if err == nil {
		s.OKCommands++
		return
	}

	var (
		timeoutErr   *TimeoutError
		decodeErr    *DecodeError
		ioErr        *IOError
		malformedErr *MalformedRecordError
		commandErr   *CommandError
	)
	switch {
	case errors.As(err, &timeoutErr):
		s.Timeouts++
	case errors.As(err, &decodeErr):
		s.DecodeErrors++
	case errors.As(err, &ioErr):
		s.IOErrors++
	case errors.As(err, &malformedErr):
		s.Malformed++
	case errors.As(err, &commandErr):
		s.Rejected++
	}
}

// UpdateChannel records the validation result of one decoded channel
func (s *Statistics) UpdateChannel(c Channel, validationErrors []ValidationError) {
	s.ChannelsChecked++
	if c.IsEmpty() {
		s.ChannelsEmpty++
	}
	for _, v := range validationErrors {
		s.Anomalies++
		switch v.Type {
		case AnomalyIndexRange:
			s.IndexRange++
		case AnomalyOutOfBand:
			s.OutOfBand++
		case AnomalyFrequencyOverflow:
			s.Overflow++
		case AnomalyPriorityLockout:
			s.Contradictions++
		}
	}
}

// Errors returns the number of failed round trips
func (s *Statistics) Errors() uint64 {
	return s.Timeouts + s.DecodeErrors + s.IOErrors + s.Malformed + s.Rejected
}

// AverageLatency returns the mean round trip time
func (s *Statistics) AverageLatency() time.Duration {
	if s.TotalCommands == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.TotalCommands)
}

// CalculateRates calculates command and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.CommandRate = float64(s.TotalCommands) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var okPercent, errorPercent float64
	if s.TotalCommands > 0 {
		okPercent = float64(s.OKCommands) * 100.0 / float64(s.TotalCommands)
		errorPercent = float64(s.Errors()) * 100.0 / float64(s.TotalCommands)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Commands:        %8d\n", s.TotalCommands)
	result += fmt.Sprintf("OK:              %8d (%.1f%%)\n", s.OKCommands, okPercent)

	if s.Errors() > 0 {
		result += fmt.Sprintf("Errors:          %8d (%.1f%%)\n", s.Errors(), errorPercent)
		if s.Timeouts > 0 {
			result += fmt.Sprintf("  Timeouts:         %5d\n", s.Timeouts)
		}
		if s.DecodeErrors > 0 {
			result += fmt.Sprintf("  Decode Errors:    %5d\n", s.DecodeErrors)
		}
		if s.IOErrors > 0 {
			result += fmt.Sprintf("  I/O Errors:       %5d\n", s.IOErrors)
		}
		if s.Malformed > 0 {
			result += fmt.Sprintf("  Malformed:        %5d\n", s.Malformed)
		}
		if s.Rejected > 0 {
			result += fmt.Sprintf("  Rejected:         %5d\n", s.Rejected)
		}
	}
	if s.Retries > 0 || s.Resyncs > 0 {
		result += fmt.Sprintf("Retries:         %8d (resyncs %d)\n", s.Retries, s.Resyncs)
	}

	if s.ChannelsChecked > 0 {
		result += fmt.Sprintf("Channels:        %8d (%d empty)\n", s.ChannelsChecked, s.ChannelsEmpty)
	}
	if s.Anomalies > 0 {
		result += fmt.Sprintf("Anomalies:       %8d\n", s.Anomalies)
		if s.IndexRange > 0 {
			result += fmt.Sprintf("  Index Range:      %5d\n", s.IndexRange)
		}
		if s.OutOfBand > 0 {
			result += fmt.Sprintf("  Out of Band:      %5d\n", s.OutOfBand)
		}
		if s.Overflow > 0 {
			result += fmt.Sprintf("  Freq Overflow:    %5d\n", s.Overflow)
		}
		if s.Contradictions > 0 {
			result += fmt.Sprintf("  Prio+Lockout:     %5d\n", s.Contradictions)
		}
	}

	result += fmt.Sprintf("Avg Round Trip:  %8s (max %s)\n", s.AverageLatency().Round(time.Millisecond), s.MaxLatency.Round(time.Millisecond))
	result += fmt.Sprintf("Command Rate:    %8.1f cmds/sec\n", s.CommandRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
