// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"fmt"
	"strconv"
)

// Command builder functions create Frame values ready for encoding.
// These are convenience wrappers around BuildFrame that keep verb and
// parameter order in one place.

// NewDrain creates the empty command used to flush stale output.
// The scanner answers it with ERR.
func NewDrain() Frame {
	return Frame{CmdDrain}
}

// NewModelQuery creates an MDL query. Reply: MDL,<model>
func NewModelQuery() Frame {
	return BuildFrame(CmdModel)
}

// NewFirmwareQuery creates a VER query. Reply: VER,<version>
func NewFirmwareQuery() Frame {
	return BuildFrame(CmdFirmware)
}

// NewBandplanQuery creates a BPL query (program mode only). Reply: BPL,<code>
func NewBandplanQuery() Frame {
	return BuildFrame(CmdBandplan)
}

// NewProgramMode creates a PRG command. Reply: PRG,OK
func NewProgramMode() Frame {
	return BuildFrame(CmdProgram)
}

// NewExitProgramMode creates an EPG command. Reply: EPG,OK
func NewExitProgramMode() Frame {
	return BuildFrame(CmdExitProgram)
}

// NewChannelQuery creates a CIN read for one slot (program mode only).
// Reply: the 9-field channel record.
func NewChannelQuery(index int) (Frame, error) {
	if !ValidIndex(index) {
		return nil, fmt.Errorf("%w: %d", ErrChannelOutOfRange, index)
	}
	return BuildFrame(CmdChannelInfo, strconv.Itoa(index)), nil
}

// NewChannelWrite creates a CIN write for a channel (program mode only).
// Reply: CIN,OK
func NewChannelWrite(c Channel) (Frame, error) {
	return c.Encode()
}

// NewClearMemory creates a CLR command erasing every channel slot
// (program mode only). Reply: CLR,OK
func NewClearMemory() Frame {
	return BuildFrame(CmdClearMemory)
}
