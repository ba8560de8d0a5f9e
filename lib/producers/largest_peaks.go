// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package producers

import (
	"math"

	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

// positionAlgorithm selects which reconstructed position feeds the
// x/y columns. When a peak carries several entries for the algorithm,
// the last one wins.
const positionAlgorithm = "PosRecTopPatternFit"

// largestPeakTypes are the peak types that get their own column group.
var largestPeakTypes = []string{"s1", "s2", "lone_hit", "unknown"}

// largestPeakProperties are the per-peak quantities emitted for the
// largest peak of each type, as <type>_<property> columns. All are
// float64 so that absent peaks can be NaN.
var largestPeakProperties = []string{
	"area", "area_fraction_top", "n_hits", "hit_time_std", "center_time",
	"n_saturated_channels", "n_contributing_channels",
	"range_50p_area", "range_90p_area", "x", "y",
}

// LargestPeakProperties provides the properties of the largest TPC
// peak of each type. For S1-only or S2-only analyses this replaces
// Basics; the two combine cleanly otherwise.
var LargestPeakProperties = registry.Descriptor{
	Name:    "LargestPeakProperties",
	Version: "0.1",
	Doc:     "Properties of the largest TPC peak of each type.",
	RequiredFields: []string{
		"peaks.n_hits", "peaks.hit_time_std", "peaks.center_time",
		"peaks.n_saturated_channels", "peaks.n_contributing_channels",
	},
	New: func() registry.Producer { return largestPeaks{} },
}

type largestPeaks struct{}

func (largestPeaks) Extract(e *source.Event) (table.Row, error) {
	// Largest TPC peak of each type by uncorrected area.
	largest := map[string]*source.Peak{}
	for i := range e.Peaks {
		p := &e.Peaks[i]
		if p.Detector != "tpc" {
			continue
		}
		if best, ok := largest[p.Type]; !ok || p.Area > best.Area {
			largest[p.Type] = p
		}
	}

	row := table.Row{}
	for _, peakType := range largestPeakTypes {
		addPeakProperties(row, peakType+"_", largest[peakType])
	}
	return row, nil
}

// addPeakProperties fills one column group. A nil peak (no peak of
// that type in the event) yields NaN for every property.
func addPeakProperties(row table.Row, prefix string, p *source.Peak) {
	if p == nil {
		for _, property := range largestPeakProperties {
			row[prefix+property] = math.NaN()
		}
		return
	}

	row[prefix+"area"] = p.Area
	row[prefix+"area_fraction_top"] = p.AreaFractionTop
	row[prefix+"n_hits"] = float64(p.NHits)
	row[prefix+"hit_time_std"] = p.HitTimeStd
	row[prefix+"center_time"] = p.CenterTime
	row[prefix+"n_saturated_channels"] = float64(p.NSaturatedChannels)
	row[prefix+"n_contributing_channels"] = float64(p.NContributingChannels)
	row[prefix+"range_50p_area"] = rangeDecile(p, 5)
	row[prefix+"range_90p_area"] = rangeDecile(p, 9)

	x, y := math.NaN(), math.NaN()
	for _, rp := range p.ReconstructedPositions {
		if rp.Algorithm == positionAlgorithm {
			x, y = rp.X, rp.Y
		}
	}
	row[prefix+"x"] = x
	row[prefix+"y"] = y
}
