// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package discovery finds serial ports whose USB vendor and product IDs
// match a known scanner cable.
package discovery

import (
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial/enumerator"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// DeviceID is a USB vendor/product pair
type DeviceID struct {
	VID uint16
	PID uint16
}

// DefaultDeviceIDs is the Silicon Labs CP210x bridge built into the
// BC75XLT programming cable
var DefaultDeviceIDs = []DeviceID{
	{VID: 0x10c4, PID: 0xea60},
}

// ParseDeviceID parses "vvvv:pppp" in hex
func ParseDeviceID(s string) (DeviceID, error) {
	vid, pid, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return DeviceID{}, fmt.Errorf("device id %q: expected vid:pid", s)
	}
	v, err := parseHex16(vid)
	if err != nil {
		return DeviceID{}, fmt.Errorf("device id %q: vendor: %w", s, err)
	}
	p, err := parseHex16(pid)
	if err != nil {
		return DeviceID{}, fmt.Errorf("device id %q: product: %w", s, err)
	}
	return DeviceID{VID: v, PID: p}, nil
}

// ParseDeviceIDs parses a list of "vvvv:pppp" strings
func ParseDeviceIDs(ss []string) ([]DeviceID, error) {
	ids := make([]DeviceID, 0, len(ss))
	for _, s := range ss {
		id, err := ParseDeviceID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseHex16(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func (id DeviceID) String() string {
	return fmt.Sprintf("%04x:%04x", id.VID, id.PID)
}

// Matches reports whether the enumerator's hex VID and PID strings
// identify this device. Comparison is numeric, so case and leading zeros
// do not matter.
func (id DeviceID) Matches(vid, pid string) bool {
	v, err := parseHex16(vid)
	if err != nil {
		return false
	}
	p, err := parseHex16(pid)
	if err != nil {
		return false
	}
	return v == id.VID && p == id.PID
}

// PortInfo describes one enumerated serial port
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Match        bool // VID/PID is in the requested set
}

// listPorts is replaced in tests
var listPorts = enumerator.GetDetailedPortsList

// ListPorts enumerates all serial ports and flags those matching ids
func ListPorts(ids []DeviceID) ([]PortInfo, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	result := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		if p == nil {
			continue
		}
		result = append(result, PortInfo{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Match:        p.IsUSB && matchesAny(ids, p.VID, p.PID),
		})
	}
	return result, nil
}

func matchesAny(ids []DeviceID, vid, pid string) bool {
	for _, id := range ids {
		if id.Matches(vid, pid) {
			return true
		}
	}
	return false
}

// FindPorts returns the names of ports matching ids, in enumeration order
func FindPorts(ids []DeviceID) ([]string, error) {
	ports, err := ListPorts(ids)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, p := range ports {
		if p.Match {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

// FindPort returns the first matching port. ErrDeviceNotFound is returned
// when nothing matches.
func FindPort(ids []DeviceID) (string, error) {
	names, err := FindPorts(ids)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no port with id %s", bearcat.ErrDeviceNotFound, joinIDs(ids))
	}
	return names[0], nil
}

func joinIDs(ids []DeviceID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	return strings.Join(s, ", ")
}
