// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"fmt"
	"unicode/utf8"
)

// Decoder assembles reply lines from a byte stream
type Decoder struct {
	buffer   []byte
	overflow bool // line exceeded MaxLineLength, discarding until terminator
	dropped  int
}

// NewDecoder creates a new line decoder
func NewDecoder() *Decoder {
	return &Decoder{
		buffer: make([]byte, 0, MaxLineLength),
	}
}

// Reset discards any partial line
func (d *Decoder) Reset() {
	d.buffer = d.buffer[:0]
	d.overflow = false
	d.dropped = 0
}

// Pending returns the number of bytes buffered for an unterminated line
func (d *Decoder) Pending() int {
	return len(d.buffer) + d.dropped
}

// DecodeByte processes a single byte.
// Returns the completed line (without terminator) and true once the
// terminator arrives, or "", false while the line is incomplete.
// Returns an error for an over-long line or a line that is not valid UTF-8;
// the decoder is reset and ready for the next line in both cases.
func (d *Decoder) DecodeByte(b byte) (string, bool, error) {
	if b == Terminator {
		if d.overflow {
			n := len(d.buffer) + d.dropped
			d.Reset()
			return "", false, &DecodeError{Reason: fmt.Sprintf("line too long: %d bytes (max %d)", n, MaxLineLength)}
		}
		line := d.buffer
		if !utf8.Valid(line) {
			d.Reset()
			return "", false, &DecodeError{Reason: "invalid UTF-8"}
		}
		s := string(line)
		d.Reset()
		return s, true, nil
	}

	// Check for buffer overflow before accepting byte
	if len(d.buffer) >= MaxLineLength {
		d.overflow = true
		d.dropped++
		return "", false, nil
	}
	d.buffer = append(d.buffer, b)
	return "", false, nil
}

// Decode feeds data through the decoder and returns every completed line.
// Bytes after the last terminator stay buffered for the next call. A bad
// line does not stop decoding: the lines around it are still returned,
// along with the first error.
func (d *Decoder) Decode(data []byte) ([]string, error) {
	var (
		lines    []string
		firstErr error
	)
	for _, b := range data {
		line, done, err := d.DecodeByte(b)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if done {
			lines = append(lines, line)
		}
	}
	return lines, firstErr
}
