// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import "errors"

var (
	// ErrEmptyResult is returned when materialization produced zero
	// rows. No artifact is written in that case: an empty artifact
	// would be indistinguishable from a producer bug.
	ErrEmptyResult = errors.New("extraction produced no rows")

	// ErrNoData is returned by Load when the requested runs and
	// producers yield nothing at all.
	ErrNoData = errors.New("no data for requested runs and producers")
)
