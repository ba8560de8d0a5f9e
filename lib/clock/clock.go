// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock time for testability. Production
// code injects Real(); tests inject a Fake with deterministic control.
//
// The materializer stamps artifact metadata with the current time, so
// every code path that would call time.Now takes a Clock instead. This
// keeps cache tests byte-for-byte reproducible.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the system clock.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
