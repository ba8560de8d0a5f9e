// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package looseversion orders dotted version strings the way the
// analysis toolchain has always ordered them: component by component,
// numerically where both components are numeric, lexically otherwise.
// "0.2.0" sorts after "0.1", and "6.10" after "6.9". This is looser
// than semver on purpose — producer versions and raw-data builder
// versions in the wild are strings like "0.1", "6.0.0", or "6.2.1rc1"
// that a strict semver parser would reject.
package looseversion

import (
	"strconv"
	"strings"
)

// Compare returns -1, 0, or +1 if a sorts before, equal to, or after b.
//
// The empty string is the oldest possible version: it sorts before
// every non-empty version and equal to itself. Artifact metadata that
// predates upstream-version recording is therefore always considered
// outdated by strict checks.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}

	as := split(a)
	bs := split(b)

	for i := 0; i < len(as) || i < len(bs); i++ {
		// A missing component is older than any present component:
		// "0.1" < "0.1.0" is fine for our purposes because equality
		// was handled above and 0 compares equal to a trailing zero.
		var ac, bc string
		if i < len(as) {
			ac = as[i]
		}
		if i < len(bs) {
			bc = bs[i]
		}

		if c := compareComponent(ac, bc); c != 0 {
			return c
		}
	}
	return 0
}

// Less reports whether a sorts strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// split breaks a version string into components. Dots and dashes both
// separate components; a trailing alphabetic suffix on a numeric
// component ("1rc2") becomes its own component so that "6.2.1rc1"
// sorts after "6.2.1" was never a requirement — it sorts after "6.2"
// and before "6.2.2", which matches the old behavior.
func split(v string) []string {
	raw := strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})

	var out []string
	for _, component := range raw {
		// Separate a numeric prefix from an alphanumeric tail.
		cut := len(component)
		for i, r := range component {
			if r < '0' || r > '9' {
				cut = i
				break
			}
		}
		if cut == 0 || cut == len(component) {
			out = append(out, component)
			continue
		}
		out = append(out, component[:cut], component[cut:])
	}
	return out
}

// compareComponent compares two version components. Numeric components
// compare as integers; if either side is non-numeric, both compare as
// strings. An empty component counts as numeric zero.
func compareComponent(a, b string) int {
	an, aok := atoi(a)
	bn, bok := atoi(b)

	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(a, b)
}

// atoi parses a component as a non-negative integer. The empty string
// parses as zero, so "0.1" and "0.1.0" compare equal.
func atoi(s string) (int64, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
