// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"fmt"
	"math"
	"strconv"
)

// Frequency is a channel frequency in units of 100 Hz (0.0001 MHz), the
// resolution the scanner stores.
type Frequency uint32

// FrequencyFromMHz converts megahertz to the nearest representable Frequency.
// Negative or NaN input yields 0.
func FrequencyFromMHz(mhz float64) Frequency {
	raw := math.Round(mhz * FrequencyScale)
	if !(raw > 0) {
		return 0
	}
	if raw > math.MaxUint32 {
		return Frequency(math.MaxUint32)
	}
	return Frequency(raw)
}

// ParseMHz converts user supplied megahertz to a Frequency that fits the
// wire field. NaN, infinite and negative values are rejected rather than
// clamped.
func ParseMHz(mhz float64) (Frequency, error) {
	if math.IsNaN(mhz) || math.IsInf(mhz, 0) || mhz < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFrequency, mhz)
	}
	f := FrequencyFromMHz(mhz)
	if _, err := f.Wire(); err != nil {
		return 0, err
	}
	return f, nil
}

// MHz returns the frequency in megahertz
func (f Frequency) MHz() float64 {
	return float64(f) / FrequencyScale
}

// String formats the frequency as MHz with four decimals
func (f Frequency) String() string {
	return fmt.Sprintf("%.4f MHz", f.MHz())
}

// Wire returns the 8-digit zero-padded wire form
func (f Frequency) Wire() (string, error) {
	if f > MaxFrequencyRaw {
		return "", fmt.Errorf("%w: %d", ErrFrequencyOverflow, uint32(f))
	}
	return fmt.Sprintf("%0*d", FrequencyDigits, uint32(f)), nil
}

// Channel is one scanner memory slot
type Channel struct {
	Index      int
	Frequency  Frequency
	Modulation string // read only: never sent on the write path
	Delay      bool
	Lockout    bool
	Priority   bool
}

// IsEmpty reports whether the slot holds no frequency
func (c Channel) IsEmpty() bool {
	return c.Frequency == 0
}

// ValidIndex reports whether index addresses a channel slot
func ValidIndex(index int) bool {
	return index >= MinChannel && index <= MaxChannel
}

// DecodeChannel decodes a CIN reply.
// Expected fields: [CIN, index, reserved, freq, modulation, reserved, delay, lockout, priority]
func DecodeChannel(fields Frame) (Channel, error) {
	if len(fields) != channelFieldCount {
		return Channel{}, &MalformedRecordError{
			Fields: fields,
			Reason: fmt.Sprintf("expected %d fields, got %d", channelFieldCount, len(fields)),
		}
	}
	if fields[0] != CmdChannelInfo {
		return Channel{}, &MalformedRecordError{
			Fields: fields,
			Reason: fmt.Sprintf("expected %s echo, got %q", CmdChannelInfo, fields[0]),
		}
	}

	index, err := strconv.Atoi(fields[1])
	if err != nil {
		return Channel{}, &MalformedRecordError{Fields: fields, Reason: "index is not an integer"}
	}

	freq, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return Channel{}, &MalformedRecordError{Fields: fields, Reason: "frequency is not an integer"}
	}

	flags := [3]bool{}
	for i, name := range []string{"delay", "lockout", "priority"} {
		v, err := strconv.Atoi(fields[6+i])
		if err != nil {
			return Channel{}, &MalformedRecordError{Fields: fields, Reason: name + " flag is not an integer"}
		}
		flags[i] = v != 0
	}

	return Channel{
		Index:      index,
		Frequency:  Frequency(freq),
		Modulation: fields[4],
		Delay:      flags[0],
		Lockout:    flags[1],
		Priority:   flags[2],
	}, nil
}

// Encode builds the CIN write frame for the channel. Modulation and the
// reserved fields are always sent empty so the scanner keeps its own
// defaults.
func (c Channel) Encode() (Frame, error) {
	if !ValidIndex(c.Index) {
		return nil, fmt.Errorf("%w: %d", ErrChannelOutOfRange, c.Index)
	}
	freq, err := c.Frequency.Wire()
	if err != nil {
		return nil, err
	}
	return BuildFrame(CmdChannelInfo,
		strconv.Itoa(c.Index),
		"", // reserved
		freq,
		"", // modulation, write-suppressed
		"", // reserved
		flagChar(c.Delay),
		flagChar(c.Lockout),
		flagChar(c.Priority),
	), nil
}

func flagChar(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
