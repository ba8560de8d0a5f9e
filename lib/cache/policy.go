// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"log/slog"

	"github.com/opendetector/skim/lib/looseversion"
)

type policyKind int

const (
	policyLatest policyKind = iota
	policyLoose
	policyExact
)

// Policy decides whether a cached artifact's recorded upstream
// (raw-data builder) version is acceptable. The producer version check
// is separate and unconditional; Policy only governs the upstream
// dimension.
type Policy struct {
	kind    policyKind
	version string
}

// Latest requires the stored upstream version to be at least the raw
// data's current builder version.
func Latest() Policy { return Policy{kind: policyLatest} }

// Loose accepts any stored upstream version.
func Loose() Policy { return Policy{kind: policyLoose} }

// Exact requires the stored upstream version to equal v.
func Exact(v string) Policy { return Policy{kind: policyExact, version: v} }

// ParsePolicy interprets a configured policy string: "latest" and
// "loose" select those policies, anything else is an exact builder
// version.
func ParsePolicy(s string) Policy {
	switch s {
	case "latest":
		return Latest()
	case "loose":
		return Loose()
	default:
		return Exact(s)
	}
}

// NeedsCurrent reports whether Admit will consult the raw data's
// current builder version, letting callers skip the lookup otherwise.
func (p Policy) NeedsCurrent() bool {
	return p.kind == policyLatest
}

func (p Policy) String() string {
	switch p.kind {
	case policyLatest:
		return "latest"
	case policyLoose:
		return "loose"
	default:
		return "exact:" + p.version
	}
}

// Admit reports whether an artifact whose metadata records stored as
// its upstream version is acceptable. current is the raw data's
// builder version right now, or empty when it could not be determined;
// under Latest an undeterminable current version logs a warning and
// admits, since refusing would make every cached artifact unusable
// whenever run metadata is temporarily unreadable.
func (p Policy) Admit(stored, current string, log *slog.Logger) bool {
	switch p.kind {
	case policyLoose:
		return true
	case policyExact:
		return stored == p.version
	default:
		if current == "" {
			log.Warn("raw data builder version unknown, accepting cached artifact",
				"stored_version", stored)
			return true
		}
		return !looseversion.Less(stored, current)
	}
}
