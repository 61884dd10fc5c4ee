// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildFrame(t *testing.T) {
	tests := []struct {
		name   string
		verb   string
		params []string
		want   string
	}{
		{"verb only", "MDL", nil, "MDL"},
		{"one param", "CIN", []string{"12"}, "CIN,12"},
		{"empty params kept", "CIN", []string{"1", "", "01462000", "", "", "0", "0", "1"}, "CIN,1,,01462000,,,0,0,1"},
		{"drain", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := BuildFrame(tt.verb, tt.params...)
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if f.Verb() != tt.verb {
				t.Errorf("Verb() = %q, want %q", f.Verb(), tt.verb)
			}
			if len(f) != len(tt.params)+1 {
				t.Errorf("len = %d, want %d", len(f), len(tt.params)+1)
			}
		})
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		raw  string
		want Frame
	}{
		{"MDL,BC75XLT", Frame{"MDL", "BC75XLT"}},
		{"ERR", Frame{"ERR"}},
		{"", Frame{""}},
		{"CIN,295,,00000000,FM,,0,1,0", Frame{"CIN", "295", "", "00000000", "FM", "", "0", "1", "0"}},
		{"A,,", Frame{"A", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseFrame(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFrame(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFrame_ParseStringRoundTrip(t *testing.T) {
	for _, raw := range []string{"MDL", "CIN,1", "CIN,1,,01462000,,,0,0,1", ",,"} {
		if got := ParseFrame(raw).String(); got != raw {
			t.Errorf("ParseFrame(%q).String() = %q", raw, got)
		}
	}
}

func TestFrame_Encode(t *testing.T) {
	line, err := BuildFrame("CIN", "7").Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if line != "CIN,7" {
		t.Errorf("Encode() = %q, want %q", line, "CIN,7")
	}

	for _, bad := range []Frame{
		{"CIN", "1,2"},
		{"MDL\r"},
		{"VER", "x\ry"},
	} {
		if _, err := bad.Encode(); !errors.Is(err, ErrInvalidField) {
			t.Errorf("Encode(%#v) error = %v, want ErrInvalidField", bad, err)
		}
	}
}

func TestFrame_Field(t *testing.T) {
	f := Frame{"MDL", "BC75XLT"}

	if v, ok := f.Field(1); !ok || v != "BC75XLT" {
		t.Errorf("Field(1) = %q, %v", v, ok)
	}
	if _, ok := f.Field(2); ok {
		t.Error("Field(2) should not exist")
	}
	if _, ok := f.Field(-1); ok {
		t.Error("Field(-1) should not exist")
	}
	if (Frame{}).Verb() != "" {
		t.Error("Verb() of empty frame should be empty")
	}
}

func TestFrame_IsStatus(t *testing.T) {
	tests := []struct {
		raw    string
		verb   string
		status string
		want   bool
	}{
		{"PRG,OK", "PRG", "OK", true},
		{"PRG,NG", "PRG", "OK", false},
		{"PRG,NG", "PRG", "NG", true},
		{"EPG,OK", "PRG", "OK", false},
		{"PRG,OK,extra", "PRG", "OK", false},
		{"ERR", "PRG", "OK", false},
	}

	for _, tt := range tests {
		if got := ParseFrame(tt.raw).IsStatus(tt.verb, tt.status); got != tt.want {
			t.Errorf("%q.IsStatus(%s, %s) = %v, want %v", tt.raw, tt.verb, tt.status, got, tt.want)
		}
	}
}

func TestCommandBuilders(t *testing.T) {
	tests := []struct {
		name string
		f    Frame
		want string
	}{
		{"drain", NewDrain(), ""},
		{"model", NewModelQuery(), "MDL"},
		{"firmware", NewFirmwareQuery(), "VER"},
		{"bandplan", NewBandplanQuery(), "BPL"},
		{"program", NewProgramMode(), "PRG"},
		{"exit program", NewExitProgramMode(), "EPG"},
		{"clear", NewClearMemory(), "CLR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewChannelQuery(t *testing.T) {
	f, err := NewChannelQuery(295)
	if err != nil {
		t.Fatalf("NewChannelQuery failed: %v", err)
	}
	if f.String() != "CIN,295" {
		t.Errorf("String() = %q, want CIN,295", f.String())
	}

	for _, index := range []int{0, 301, -1} {
		if _, err := NewChannelQuery(index); !errors.Is(err, ErrChannelOutOfRange) {
			t.Errorf("NewChannelQuery(%d) error = %v, want ErrChannelOutOfRange", index, err)
		}
	}
}
