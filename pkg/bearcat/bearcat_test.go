// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// ============================================================
// Validator Tests
// ============================================================

func TestValidateChannel_Valid(t *testing.T) {
	tests := []Channel{
		{Index: 1, Frequency: FrequencyFromMHz(146.52), Modulation: "FM"},
		{Index: 300, Frequency: FrequencyFromMHz(462.5625), Priority: true},
		{Index: 42, Frequency: FrequencyFromMHz(27.185), Lockout: true},
		{Index: 7}, // empty slot
	}

	for _, c := range tests {
		if errs := ValidateChannel(c); len(errs) != 0 {
			t.Errorf("ValidateChannel(%+v) = %v, want none", c, errs)
		}
	}
}

func TestValidateChannel_Anomalies(t *testing.T) {
	tests := []struct {
		name string
		c    Channel
		want []AnomalyType
	}{
		{"index zero", Channel{Index: 0}, []AnomalyType{AnomalyIndexRange}},
		{"index 301 with frequency", Channel{Index: 301, Frequency: FrequencyFromMHz(150)}, []AnomalyType{AnomalyIndexRange}},
		{"out of band", Channel{Index: 5, Frequency: FrequencyFromMHz(88.5)}, []AnomalyType{AnomalyOutOfBand}},
		{"above coverage", Channel{Index: 5, Frequency: FrequencyFromMHz(800)}, []AnomalyType{AnomalyOutOfBand}},
		{"overflow", Channel{Index: 5, Frequency: MaxFrequencyRaw + 1}, []AnomalyType{AnomalyFrequencyOverflow}},
		{"priority and lockout", Channel{Index: 5, Frequency: FrequencyFromMHz(155), Priority: true, Lockout: true}, []AnomalyType{AnomalyPriorityLockout}},
		{"everything", Channel{Index: 400, Frequency: FrequencyFromMHz(60), Priority: true, Lockout: true},
			[]AnomalyType{AnomalyIndexRange, AnomalyOutOfBand, AnomalyPriorityLockout}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateChannel(tt.c)
			if len(errs) != len(tt.want) {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(tt.want))
			}
			for i, e := range errs {
				if e.Type != tt.want[i] {
					t.Errorf("errs[%d].Type = %d, want %d", i, e.Type, tt.want[i])
				}
				if e.Error() == "" {
					t.Errorf("errs[%d] has empty message", i)
				}
			}
		})
	}
}

func TestBand_Contains(t *testing.T) {
	b := Band{Low: FrequencyFromMHz(108), High: FrequencyFromMHz(174)}

	if !b.Contains(FrequencyFromMHz(108)) || !b.Contains(FrequencyFromMHz(174)) {
		t.Error("band edges should be inclusive")
	}
	if b.Contains(FrequencyFromMHz(107.9999)) || b.Contains(FrequencyFromMHz(174.0001)) {
		t.Error("frequencies outside the band should not match")
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	s.Update(10*time.Millisecond, nil)
	s.Update(30*time.Millisecond, &TimeoutError{After: time.Second})
	s.Update(5*time.Millisecond, fmt.Errorf("CHANNEL_INFO: %w", &MalformedRecordError{Fields: Frame{"ERR"}}))
	s.Update(5*time.Millisecond, &DecodeError{Reason: "x"})
	s.Update(5*time.Millisecond, &IOError{Op: "write", Err: errors.New("broken pipe")})
	s.Update(5*time.Millisecond, &CommandError{Command: "PRG", Reply: "PRG,NG"})

	if s.TotalCommands != 6 {
		t.Errorf("TotalCommands = %d, want 6", s.TotalCommands)
	}
	if s.OKCommands != 1 {
		t.Errorf("OKCommands = %d, want 1", s.OKCommands)
	}
	if s.Timeouts != 1 || s.Malformed != 1 || s.DecodeErrors != 1 || s.IOErrors != 1 || s.Rejected != 1 {
		t.Errorf("error counters = %+v", s)
	}
	if s.Errors() != 5 {
		t.Errorf("Errors() = %d, want 5", s.Errors())
	}
	if s.MaxLatency != 30*time.Millisecond {
		t.Errorf("MaxLatency = %v", s.MaxLatency)
	}
	if s.AverageLatency() != 10*time.Millisecond {
		t.Errorf("AverageLatency() = %v, want 10ms", s.AverageLatency())
	}
}

func TestStatistics_UpdateChannel(t *testing.T) {
	s := NewStatistics()

	full := Channel{Index: 5, Frequency: FrequencyFromMHz(60), Priority: true, Lockout: true}
	s.UpdateChannel(full, ValidateChannel(full))
	empty := Channel{Index: 6}
	s.UpdateChannel(empty, ValidateChannel(empty))

	if s.ChannelsChecked != 2 || s.ChannelsEmpty != 1 {
		t.Errorf("checked=%d empty=%d", s.ChannelsChecked, s.ChannelsEmpty)
	}
	if s.Anomalies != 2 || s.OutOfBand != 1 || s.Contradictions != 1 {
		t.Errorf("anomalies=%d outOfBand=%d contradictions=%d", s.Anomalies, s.OutOfBand, s.Contradictions)
	}
}

func TestStatistics_StringAndReset(t *testing.T) {
	s := NewStatistics()
	s.Update(time.Millisecond, nil)
	s.Update(time.Millisecond, &TimeoutError{})
	s.Retries = 1

	out := s.String()
	for _, want := range []string{"Commands:", "Timeouts:", "Retries:"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}

	s.Reset()
	if s.TotalCommands != 0 || s.Retries != 0 || s.AverageLatency() != 0 {
		t.Errorf("Reset did not clear counters: %+v", s)
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatCommandName(t *testing.T) {
	tests := map[string]string{
		CmdDrain:       "DRAIN",
		CmdModel:       "MODEL",
		CmdFirmware:    "FIRMWARE",
		CmdBandplan:    "BANDPLAN",
		CmdProgram:     "PROGRAM_MODE",
		CmdExitProgram: "EXIT_PROGRAM_MODE",
		CmdChannelInfo: "CHANNEL_INFO",
		CmdClearMemory: "CLEAR_MEMORY",
		StatusError:    "ERROR",
		"XYZ":          "UNKNOWN",
	}
	for verb, want := range tests {
		if got := FormatCommandName(verb); got != want {
			t.Errorf("FormatCommandName(%q) = %q, want %q", verb, got, want)
		}
	}
}

func TestFormatChannel(t *testing.T) {
	tests := []struct {
		c    Channel
		want string
	}{
		{Channel{Index: 7}, "CH007  (empty)"},
		{Channel{Index: 12, Frequency: FrequencyFromMHz(162.55), Modulation: "FM", Delay: true, Priority: true},
			"CH012   162.5500 MHz  FM   D-P"},
		{Channel{Index: 300, Frequency: FrequencyFromMHz(27.185), Lockout: true},
			"CH300    27.1850 MHz  -    -L-"},
	}

	for _, tt := range tests {
		if got := FormatChannel(tt.c); got != tt.want {
			t.Errorf("FormatChannel(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestFormatFrame(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 30, 45, 123_000_000, time.UTC)

	got := FormatFrame("TX", Frame{"CIN", "5"}, at)
	want := "[12:30:45.123] TX CHANNEL_INFO (CIN) \"5\"\n"
	if got != want {
		t.Errorf("FormatFrame = %q, want %q", got, want)
	}

	got = FormatFrame("RX", Frame{"ERR"}, at)
	if got != "[12:30:45.123] RX ERROR (ERR)\n" {
		t.Errorf("FormatFrame = %q", got)
	}
}

func TestFormatIdentity(t *testing.T) {
	id := Identity{Model: "BC75XLT", Firmware: "Version 1.00.00", Bandplan: "0", Region: "US"}
	if got := FormatIdentity(id); got != "BC75XLT, Version 1.00.00, bandplan 0 (US)" {
		t.Errorf("FormatIdentity = %q", got)
	}
}

func TestErrorMatching(t *testing.T) {
	timeout := fmt.Errorf("MODEL: %w", &TimeoutError{After: 3 * time.Second, Partial: 4})
	if !errors.Is(timeout, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
	if !strings.Contains(timeout.Error(), "4 bytes discarded") {
		t.Errorf("message = %q", timeout.Error())
	}

	conn := &ConnectionError{Port: "/dev/ttyUSB0", Err: ErrDeviceInUse}
	if !errors.Is(conn, ErrDeviceInUse) {
		t.Error("ConnectionError should unwrap to its cause")
	}

	model := &UnsupportedModelError{Model: "BCD996", Supported: DefaultSupportedModels}
	if !strings.Contains(model.Error(), "BC75XLT, UBC75XLT") {
		t.Errorf("message = %q", model.Error())
	}
}
