// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bearcat implements the host side of the Uniden Bearcat handheld
// scanner remote protocol.
//
// The protocol is line oriented ASCII: a command verb and its parameters are
// joined with commas and terminated by a single carriage return. The scanner
// answers every command with exactly one line that echoes the verb. This
// package provides frame building and parsing, a byte-level line decoder,
// the channel record codec and Scanner, which sequences commands over a
// connection and tracks program mode.
package bearcat

// Wire framing
const (
	Terminator = '\r'
	Separator  = ","

	// MaxLineLength bounds a single reply line. The longest reply the
	// scanner produces is a CIN record, well under this.
	MaxLineLength = 256
)

// Channel memory layout
const (
	MinChannel   = 1
	MaxChannel   = 300
	ChannelCount = MaxChannel - MinChannel + 1

	// channelFieldCount is the arity of a CIN record including the verb echo
	channelFieldCount = 9
)

// Frequency encoding: the wire carries frequency in units of 100 Hz as an
// 8-digit zero-padded decimal.
const (
	FrequencyScale  = 10000 // raw units per MHz
	FrequencyDigits = 8
	MaxFrequencyRaw = 99999999
)

// Command verbs
const (
	CmdDrain       = ""
	CmdModel       = "MDL"
	CmdFirmware    = "VER"
	CmdBandplan    = "BPL"
	CmdProgram     = "PRG"
	CmdExitProgram = "EPG"
	CmdChannelInfo = "CIN"
	CmdClearMemory = "CLR"
)

// Reply status tokens
const (
	StatusOK    = "OK"
	StatusNG    = "NG"
	StatusError = "ERR"
)

// DefaultSupportedModels lists the model identifiers returned by MDL that
// this driver accepts.
var DefaultSupportedModels = []string{
	"BC75XLT",  // US/Canada
	"UBC75XLT", // European
}

// DefaultBandplans maps BPL codes to region names.
var DefaultBandplans = map[string]string{
	"0": "US",
	"1": "Canada",
	"2": "Europe",
}
