// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package channellist reads and writes channel lists for bulk programming.
//
// The text format has one "channel:frequency" pair per line, frequency in
// MHz. Blank lines and lines starting with # are ignored. The YAML format
// is a list of entries with optional flags:
//
//	- channel: 1
//	  frequency: 146.52
//	  priority: true
package channellist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// LineError describes a text line that could not be parsed
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

var errNoSeparator = errors.New("expected channel:frequency")

// ParseText reads a channel:frequency list. Malformed lines are returned
// as LineErrors and skipped; only read failures abort.
func ParseText(r io.Reader) ([]bearcat.Channel, []LineError, error) {
	var (
		channels []bearcat.Channel
		bad      []LineError
	)

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		c, err := parseLine(text)
		if err != nil {
			bad = append(bad, LineError{Line: n, Text: text, Err: err})
			continue
		}
		channels = append(channels, c)
	}
	if err := sc.Err(); err != nil {
		return channels, bad, fmt.Errorf("read channel list: %w", err)
	}
	return channels, bad, nil
}

func parseLine(text string) (bearcat.Channel, error) {
	ch, freq, ok := strings.Cut(text, ":")
	if !ok || strings.Contains(freq, ":") {
		return bearcat.Channel{}, errNoSeparator
	}

	index, err := strconv.Atoi(strings.TrimSpace(ch))
	if err != nil {
		return bearcat.Channel{}, fmt.Errorf("channel: %w", err)
	}
	mhz, err := strconv.ParseFloat(strings.TrimSpace(freq), 64)
	if err != nil {
		return bearcat.Channel{}, fmt.Errorf("frequency: %w", err)
	}
	return newChannel(index, mhz, false, false, false)
}

func newChannel(index int, mhz float64, delay, lockout, priority bool) (bearcat.Channel, error) {
	if !bearcat.ValidIndex(index) {
		return bearcat.Channel{}, fmt.Errorf("%w: %d", bearcat.ErrChannelOutOfRange, index)
	}
	freq, err := bearcat.ParseMHz(mhz)
	if err != nil {
		return bearcat.Channel{}, err
	}
	return bearcat.Channel{
		Index:     index,
		Frequency: freq,
		Delay:     delay,
		Lockout:   lockout,
		Priority:  priority,
	}, nil
}

// Entry is one channel in the YAML format
type Entry struct {
	Channel    int     `yaml:"channel"`
	Frequency  float64 `yaml:"frequency"`
	Modulation string  `yaml:"modulation,omitempty"`
	Delay      bool    `yaml:"delay,omitempty"`
	Lockout    bool    `yaml:"lockout,omitempty"`
	Priority   bool    `yaml:"priority,omitempty"`
}

// ParseYAML reads a YAML channel list. Entries that fail validation are
// returned as LineErrors with the entry's source line.
func ParseYAML(r io.Reader) ([]bearcat.Channel, []LineError, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("parse channel list: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil, nil
	}
	list := root.Content[0]
	if list.Kind != yaml.SequenceNode {
		return nil, nil, fmt.Errorf("parse channel list: line %d: expected a list of channels", list.Line)
	}

	var (
		channels []bearcat.Channel
		bad      []LineError
	)
	for i, node := range list.Content {
		var e Entry
		if err := node.Decode(&e); err != nil {
			bad = append(bad, LineError{Line: node.Line, Text: fmt.Sprintf("entry %d", i+1), Err: err})
			continue
		}
		c, err := newChannel(e.Channel, e.Frequency, e.Delay, e.Lockout, e.Priority)
		if err != nil {
			bad = append(bad, LineError{Line: node.Line, Text: fmt.Sprintf("entry %d", i+1), Err: err})
			continue
		}
		channels = append(channels, c)
	}
	return channels, bad, nil
}

// EntryFromChannel converts a decoded channel for YAML output
func EntryFromChannel(c bearcat.Channel) Entry {
	return Entry{
		Channel:    c.Index,
		Frequency:  c.Frequency.MHz(),
		Modulation: c.Modulation,
		Delay:      c.Delay,
		Lockout:    c.Lockout,
		Priority:   c.Priority,
	}
}

// WriteText writes channels in the channel:frequency format. Empty slots
// are skipped.
func WriteText(w io.Writer, channels []bearcat.Channel) error {
	for _, c := range channels {
		if c.IsEmpty() {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d:%.4f\n", c.Index, c.Frequency.MHz()); err != nil {
			return err
		}
	}
	return nil
}

// WriteYAML writes channels as a YAML list. Empty slots are skipped.
func WriteYAML(w io.Writer, channels []bearcat.Channel) error {
	entries := make([]Entry, 0, len(channels))
	for _, c := range channels {
		if !c.IsEmpty() {
			entries = append(entries, EntryFromChannel(c))
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}
