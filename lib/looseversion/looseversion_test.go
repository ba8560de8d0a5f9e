// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package looseversion

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0.1", "0.1", 0},
		{"0.1", "0.2", -1},
		{"0.2.0", "0.1", 1},
		{"0.1", "0.1.0", 0},
		{"6.0.0", "6.0", 0},
		{"6.9", "6.10", -1},
		{"6.10", "6.9", 1},
		{"1.0", "2", -1},
		{"6.2.1", "6.2", 1},
		{"6.2.1rc1", "6.2", 1},
		{"6.2.1rc1", "6.3", -1},
		{"6.2.1rc1", "6.2.1rc2", -1},
		{"", "", 0},
		{"", "0.0.1", -1},
		{"0.0.1", "", 1},
	}

	for _, test := range tests {
		got := Compare(test.a, test.b)
		if got != test.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
		// Compare must be antisymmetric.
		if rev := Compare(test.b, test.a); rev != -test.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", test.b, test.a, rev, -test.want)
		}
	}
}

func TestLess(t *testing.T) {
	if !Less("0.1", "0.2.0") {
		t.Error("Less(0.1, 0.2.0) = false, want true")
	}
	if Less("0.2.0", "0.1") {
		t.Error("Less(0.2.0, 0.1) = true, want false")
	}
	if Less("0.1", "0.1") {
		t.Error("Less(0.1, 0.1) = true, want false")
	}
	// Empty string is the oldest possible version.
	if !Less("", "0.0.0.1") {
		t.Error("Less(\"\", 0.0.0.1) = false, want true")
	}
}
