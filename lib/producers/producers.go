// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package producers holds the baseline producers most analyses need.
// Importing the package registers them all in the default registry.
package producers

import "github.com/opendetector/skim/lib/registry"

// All returns the descriptors of every baseline producer.
func All() []registry.Descriptor {
	return []registry.Descriptor{
		Fundamentals,
		Basics,
		LargestPeakProperties,
		TotalProperties,
		PeakAreas,
	}
}

func init() {
	for _, d := range All() {
		registry.Register(d)
	}
}
