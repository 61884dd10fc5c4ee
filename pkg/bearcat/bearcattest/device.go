// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bearcattest provides an in-memory scanner that speaks the Bearcat
// line protocol, for testing code built on bearcat.Scanner without hardware.
package bearcattest

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// ErrClosed is returned by Send and Receive after Close
var ErrClosed = errors.New("bearcattest: device closed")

// Device simulates a BC75XLT. It implements bearcat.Conn and
// bearcat.Flusher.
type Device struct {
	Model    string
	Firmware string
	Bandplan string

	// Silent makes the next N commands produce no reply, so the following
	// Receive times out.
	Silent int

	memory  [bearcat.MaxChannel + 1]bearcat.Channel
	program bool
	output  []string
	script  map[string][]string
	sent    []string
	flushes int
	closed  bool
}

// NewDevice creates a simulated US BC75XLT with empty memory
func NewDevice() *Device {
	d := &Device{
		Model:    "BC75XLT",
		Firmware: "Version 1.00.00",
		Bandplan: "0",
		script:   make(map[string][]string),
	}
	for i := bearcat.MinChannel; i <= bearcat.MaxChannel; i++ {
		d.memory[i] = bearcat.Channel{Index: i, Modulation: "FM"}
	}
	return d
}

// Script queues replies for a command line. Scripted replies are used in
// order, one per matching command, before the simulator's own behavior.
func (d *Device) Script(line string, replies ...string) {
	d.script[line] = append(d.script[line], replies...)
}

// QueueOutput places lines in the output buffer as if left over from an
// earlier conversation
func (d *Device) QueueOutput(lines ...string) {
	d.output = append(d.output, lines...)
}

// Send implements bearcat.Conn
func (d *Device) Send(line string) error {
	if d.closed {
		return &bearcat.IOError{Op: "write", Err: ErrClosed}
	}
	d.sent = append(d.sent, line)

	if d.Silent > 0 {
		d.Silent--
		return nil
	}
	if replies := d.script[line]; len(replies) > 0 {
		d.script[line] = replies[1:]
		d.output = append(d.output, replies[0])
		return nil
	}
	d.output = append(d.output, d.handle(bearcat.ParseFrame(line)))
	return nil
}

// Receive implements bearcat.Conn
func (d *Device) Receive() (string, error) {
	if d.closed {
		return "", &bearcat.IOError{Op: "read", Err: ErrClosed}
	}
	if len(d.output) == 0 {
		return "", &bearcat.TimeoutError{After: 3 * time.Second}
	}
	line := d.output[0]
	d.output = d.output[1:]
	return line, nil
}

// Flush implements bearcat.Flusher
func (d *Device) Flush() error {
	d.output = nil
	d.flushes++
	return nil
}

// Close implements bearcat.Conn
func (d *Device) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close was called
func (d *Device) Closed() bool {
	return d.closed
}

// InProgramMode reports the simulated scanner's own mode
func (d *Device) InProgramMode() bool {
	return d.program
}

// Sent returns every line received from the host, in order
func (d *Device) Sent() []string {
	return append([]string(nil), d.sent...)
}

// Count returns how many commands with the given verb were received
func (d *Device) Count(verb string) int {
	n := 0
	for _, line := range d.sent {
		if bearcat.ParseFrame(line).Verb() == verb {
			n++
		}
	}
	return n
}

// Flushes returns how many times Flush was called
func (d *Device) Flushes() int {
	return d.flushes
}

// Memory returns the stored channel slot
func (d *Device) Memory(index int) bearcat.Channel {
	return d.memory[index]
}

// SetMemory stores a channel slot directly
func (d *Device) SetMemory(c bearcat.Channel) {
	d.memory[c.Index] = c
}

func (d *Device) handle(f bearcat.Frame) string {
	switch f.Verb() {
	case bearcat.CmdModel:
		return bearcat.CmdModel + "," + d.Model
	case bearcat.CmdFirmware:
		return bearcat.CmdFirmware + "," + d.Firmware
	case bearcat.CmdProgram:
		d.program = true
		return bearcat.CmdProgram + "," + bearcat.StatusOK
	case bearcat.CmdExitProgram:
		d.program = false
		return bearcat.CmdExitProgram + "," + bearcat.StatusOK
	}

	if !d.program {
		return bearcat.StatusError
	}

	switch f.Verb() {
	case bearcat.CmdBandplan:
		return bearcat.CmdBandplan + "," + d.Bandplan
	case bearcat.CmdClearMemory:
		for i := bearcat.MinChannel; i <= bearcat.MaxChannel; i++ {
			d.memory[i] = bearcat.Channel{Index: i, Modulation: "FM"}
		}
		return bearcat.CmdClearMemory + "," + bearcat.StatusOK
	case bearcat.CmdChannelInfo:
		return d.channelInfo(f)
	}
	return bearcat.StatusError
}

func (d *Device) channelInfo(f bearcat.Frame) string {
	ng := bearcat.CmdChannelInfo + "," + bearcat.StatusNG

	switch len(f) {
	case 2:
		index, err := strconv.Atoi(f[1])
		if err != nil || !bearcat.ValidIndex(index) {
			return ng
		}
		c := d.memory[index]
		return fmt.Sprintf("CIN,%d,,%08d,%s,,%s,%s,%s",
			c.Index, uint32(c.Frequency), c.Modulation, bit(c.Delay), bit(c.Lockout), bit(c.Priority))

	case 9:
		c, err := bearcat.DecodeChannel(f)
		if err != nil || !bearcat.ValidIndex(c.Index) {
			return ng
		}
		c.Modulation = d.memory[c.Index].Modulation
		d.memory[c.Index] = c
		return bearcat.CmdChannelInfo + "," + bearcat.StatusOK
	}
	return bearcat.StatusError
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
