// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// RunRef identifies a run either by its canonical name or by its
// numeric run number. Users refer to runs both ways, so every entry
// point that takes a run accepts either form and resolves it against
// the source.
type RunRef struct {
	// Name is the canonical run name, empty for a purely numeric
	// reference.
	Name string

	// Number is the numeric run number, or -1 when the reference
	// carries no recognizable number.
	Number int64
}

// ParseRunRef interprets a user-supplied run reference. A string of
// digits is a run number; anything else is a run name, with a trailing
// digit group (if any) recorded as the number.
func ParseRunRef(s string) (RunRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RunRef{}, fmt.Errorf("empty run reference")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return RunRef{Number: n}, nil
	}
	return RunRef{Name: s, Number: numberFromName(s)}, nil
}

// IsNumeric reports whether the reference carries only a run number.
func (r RunRef) IsNumeric() bool {
	return r.Name == ""
}

func (r RunRef) String() string {
	if r.IsNumeric() {
		return strconv.FormatInt(r.Number, 10)
	}
	return r.Name
}

// numberFromName extracts the trailing digit group of a run name, or
// -1 if the name ends in no digits.
func numberFromName(name string) int64 {
	end := len(name)
	start := end
	for start > 0 && unicode.IsDigit(rune(name[start-1])) {
		start--
	}
	if start == end {
		return -1
	}
	n, err := strconv.ParseInt(name[start:end], 10, 64)
	if err != nil {
		return -1
	}
	return n
}
