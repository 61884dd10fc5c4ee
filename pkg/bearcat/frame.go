// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import "strings"

// Frame is one protocol line split into its comma-separated fields. Field 0
// is the command verb (or its echo in a reply).
type Frame []string

// BuildFrame creates a frame from a verb and its ordered parameters
func BuildFrame(verb string, params ...string) Frame {
	f := make(Frame, 0, len(params)+1)
	f = append(f, verb)
	return append(f, params...)
}

// ParseFrame splits a received line into fields. The field count is not
// validated; callers check arity themselves.
func ParseFrame(raw string) Frame {
	return strings.Split(raw, Separator)
}

// Verb returns field 0
func (f Frame) Verb() string {
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// Field returns field i and whether it exists
func (f Frame) Field(i int) (string, bool) {
	if i < 0 || i >= len(f) {
		return "", false
	}
	return f[i], true
}

// String joins the fields with the separator, without a trailing separator
// and without the terminator.
func (f Frame) String() string {
	return strings.Join(f, Separator)
}

// Encode returns the wire text of the frame without the terminator. Fields
// are not escaped, so a field containing the separator or terminator is
// rejected.
func (f Frame) Encode() (string, error) {
	for _, field := range f {
		if strings.ContainsAny(field, Separator+string(Terminator)) {
			return "", ErrInvalidField
		}
	}
	return f.String(), nil
}

// IsStatus reports whether the frame is the acknowledgement "<verb>,<status>"
func (f Frame) IsStatus(verb, status string) bool {
	return len(f) == 2 && f[0] == verb && f[1] == status
}
