// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import "fmt"

// AnomalyType represents different kinds of channel record anomalies
type AnomalyType int

const (
	AnomalyIndexRange AnomalyType = iota
	AnomalyOutOfBand
	AnomalyFrequencyOverflow
	AnomalyPriorityLockout
)

// Band is an inclusive frequency range the scanner can receive
type Band struct {
	Low  Frequency
	High Frequency
}

// Contains reports whether f lies within the band
func (b Band) Contains(f Frequency) bool {
	return f >= b.Low && f <= b.High
}

// CoverageBands are the receive ranges of the BC75XLT family
var CoverageBands = []Band{
	{Low: 25 * FrequencyScale, High: 54 * FrequencyScale},
	{Low: 108 * FrequencyScale, High: 174 * FrequencyScale},
	{Low: 400 * FrequencyScale, High: 512 * FrequencyScale},
}

// ValidationError represents a channel validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateChannel checks a decoded channel for values the scanner should
// never report. Returns a slice of validation errors (empty if the channel
// is valid). Empty slots are only checked for their index.
func ValidateChannel(c Channel) []ValidationError {
	errors := []ValidationError{}

	if !ValidIndex(c.Index) {
		errors = append(errors, ValidationError{
			Type:    AnomalyIndexRange,
			Message: fmt.Sprintf("Channel index=%d outside %d-%d", c.Index, MinChannel, MaxChannel),
			Details: map[string]interface{}{"index": c.Index, "min": MinChannel, "max": MaxChannel},
		})
	}

	if c.IsEmpty() {
		return errors
	}

	if c.Frequency > MaxFrequencyRaw {
		errors = append(errors, ValidationError{
			Type:    AnomalyFrequencyOverflow,
			Message: fmt.Sprintf("Frequency raw=%d exceeds %d digits", uint32(c.Frequency), FrequencyDigits),
			Details: map[string]interface{}{"raw": uint32(c.Frequency), "max": MaxFrequencyRaw},
		})
	} else if !inCoverage(c.Frequency) {
		errors = append(errors, ValidationError{
			Type:    AnomalyOutOfBand,
			Message: fmt.Sprintf("Frequency %.4f MHz outside receive coverage", c.Frequency.MHz()),
			Details: map[string]interface{}{"mhz": c.Frequency.MHz()},
		})
	}

	if c.Priority && c.Lockout {
		errors = append(errors, ValidationError{
			Type:    AnomalyPriorityLockout,
			Message: fmt.Sprintf("Channel %d is both priority and locked out", c.Index),
			Details: map[string]interface{}{"index": c.Index},
		})
	}

	return errors
}

func inCoverage(f Frequency) bool {
	for _, b := range CoverageBands {
		if b.Contains(f) {
			return true
		}
	}
	return false
}
