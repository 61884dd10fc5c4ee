// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")

	ErrTimeout           = errors.New("timed out waiting for reply")
	ErrChannelOutOfRange = fmt.Errorf("channel index out of range (%d-%d)", MinChannel, MaxChannel)
	ErrFrequencyOverflow = fmt.Errorf("frequency does not fit %d digits", FrequencyDigits)
	ErrInvalidFrequency  = errors.New("frequency must be a finite, non-negative number")
	ErrInvalidField      = errors.New("frame field contains separator or terminator")
	ErrVerifyMismatch    = errors.New("channel read back does not match written record")
)

// ConnectionError reports a failure to open the serial port.
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IOError reports a failed read or write on an open connection.
type IOError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that no terminated reply arrived within the read
// timeout. errors.Is(err, ErrTimeout) matches it.
type TimeoutError struct {
	After   time.Duration
	Partial int // bytes discarded without a terminator
}

func (e *TimeoutError) Error() string {
	if e.Partial > 0 {
		return fmt.Sprintf("no reply terminator after %v (%d bytes discarded)", e.After, e.Partial)
	}
	return fmt.Sprintf("no reply after %v", e.After)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// DecodeError reports a reply line that is not valid text.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "decode reply: " + e.Reason
}

// MalformedRecordError reports a reply whose shape does not match the
// expected record. It usually means the conversation is out of step.
type MalformedRecordError struct {
	Fields Frame
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %q: %s", e.Fields.String(), e.Reason)
}

// UnsupportedModelError reports a model identifier outside the allow-list.
type UnsupportedModelError struct {
	Model     string
	Supported []string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model %q (supported: %s)", e.Model, strings.Join(e.Supported, ", "))
}

// LookupError reports a key missing from a fixed table.
type LookupError struct {
	Table string
	Key   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Table, e.Key)
}

// CommandError reports a command the scanner answered with something other
// than the expected acknowledgement.
type CommandError struct {
	Command string
	Reply   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s rejected: %q", e.Command, e.Reply)
}
