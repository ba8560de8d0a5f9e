// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPolicyAdmit(t *testing.T) {
	log := discardLogger()
	tests := []struct {
		name    string
		policy  Policy
		stored  string
		current string
		want    bool
	}{
		{"loose accepts anything", Loose(), "1.0", "9.9", true},
		{"loose accepts empty", Loose(), "", "9.9", true},
		{"exact match", Exact("6.0.1"), "6.0.1", "", true},
		{"exact mismatch newer", Exact("v1"), "v2", "", false},
		{"exact mismatch empty", Exact("6.0.1"), "", "", false},
		{"latest equal", Latest(), "6.0.1", "6.0.1", true},
		{"latest stored newer", Latest(), "6.1.0", "6.0.1", true},
		{"latest stored older", Latest(), "6.0.0", "6.0.1", false},
		{"latest stored empty", Latest(), "", "6.0.1", false},
		{"latest unknown current admits", Latest(), "6.0.0", "", true},
		{"latest dotted ordering", Latest(), "6.10", "6.9", true},
	}
	for _, test := range tests {
		if got := test.policy.Admit(test.stored, test.current, log); got != test.want {
			t.Errorf("%s: Admit(%q, %q) = %v, want %v",
				test.name, test.stored, test.current, got, test.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	if p := ParsePolicy("latest"); p != Latest() {
		t.Errorf("ParsePolicy(latest) = %v", p)
	}
	if p := ParsePolicy("loose"); p != Loose() {
		t.Errorf("ParsePolicy(loose) = %v", p)
	}
	if p := ParsePolicy("6.0.1"); p != Exact("6.0.1") {
		t.Errorf("ParsePolicy(6.0.1) = %v", p)
	}
}

func TestPolicyNeedsCurrent(t *testing.T) {
	if !Latest().NeedsCurrent() {
		t.Error("Latest should need the current upstream version")
	}
	if Loose().NeedsCurrent() || Exact("v1").NeedsCurrent() {
		t.Error("Loose and Exact must not need the current upstream version")
	}
}
