// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package source defines the raw event data interface and its
// directory-backed and in-memory implementations. The cache layer
// consumes events through the Source interface only and never touches
// raw files directly.
package source

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a run's raw data or metadata does not
// exist in the source.
var ErrNotFound = errors.New("run not found")

// RunMetadata is the per-run record produced by the upstream
// processor. BuilderVersion identifies the processor version the raw
// data was built with; version policies compare against it.
type RunMetadata struct {
	BuilderVersion string `json:"file_builder_version"`
}

// Source provides sequential access to a run's events and its
// processing metadata.
type Source interface {
	// Events calls fn for every event of the run, in stored order.
	// fields is a read hint naming the event fields the caller will
	// use; implementations may ignore it. Iteration stops at the
	// first error from fn or from the underlying data.
	Events(ctx context.Context, run string, fields []string, fn func(*Event) error) error

	// Metadata returns the run's processing metadata.
	Metadata(run string) (RunMetadata, error)

	// Resolve maps a user-supplied run reference (name or number) to
	// the canonical run name known to this source.
	Resolve(ref string) (string, error)
}
