// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package producers

import (
	"fmt"
	"math"

	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

// Basics provides the main-interaction quantities most analyses start
// from: S1/S2 areas (raw and corrected), the interaction position, and
// the largest peaks outside the main interaction for double-scatter
// cuts. The main interaction is Interactions[0], chosen upstream.
//
// Events without an S1+S2 pair get NaN for all interaction columns;
// the largest_other_* columns are filled for every event.
var Basics = registry.Descriptor{
	Name:    "Basics",
	Version: "0.1",
	Doc:     "Basic information needed in most analyses, mostly on the main interaction.",
	New:     func() registry.Producer { return basics{} },
}

type basics struct{}

func (basics) Extract(e *source.Event) (table.Row, error) {
	nan := math.NaN()
	row := table.Row{
		"s1":                   nan,
		"s2":                   nan,
		"cs1":                  nan,
		"cs2":                  nan,
		"x":                    nan,
		"y":                    nan,
		"z":                    nan,
		"drift_time":           nan,
		"s1_area_fraction_top": nan,
		"s2_area_fraction_top": nan,
		"s1_range_50p_area":    nan,
		"s2_range_50p_area":    nan,
	}

	excluded := map[int64]bool{}
	if len(e.Interactions) != 0 {
		interaction := e.Interactions[0]
		s1, err := peakAt(e, interaction.S1)
		if err != nil {
			return nil, err
		}
		s2, err := peakAt(e, interaction.S2)
		if err != nil {
			return nil, err
		}

		row["s1"] = s1.Area
		row["s2"] = s2.Area
		row["cs1"] = s1.Area * interaction.S1AreaCorrection
		row["cs2"] = s2.Area * interaction.S2AreaCorrection
		row["x"] = interaction.X
		row["y"] = interaction.Y
		row["z"] = interaction.Z
		row["drift_time"] = interaction.DriftTime
		row["s1_area_fraction_top"] = s1.AreaFractionTop
		row["s2_area_fraction_top"] = s2.AreaFractionTop
		row["s1_range_50p_area"] = rangeDecile(s1, 5)
		row["s2_range_50p_area"] = rangeDecile(s2, 5)

		excluded[interaction.S1] = true
		excluded[interaction.S2] = true
	}

	// Largest remaining peak of each type, for double-scatter cuts.
	// Non-TPC peaks are keyed by detector; their lone hits are skipped.
	largest := map[string]float64{}
	for i := range e.Peaks {
		if excluded[int64(i)] {
			continue
		}
		p := &e.Peaks[i]
		peakType := p.Type
		if p.Detector != "tpc" {
			if p.Type == "lone_hit" {
				continue
			}
			peakType = p.Detector
		}
		if p.Area > largest[peakType] {
			largest[peakType] = p.Area
		}
	}
	row["largest_other_s1"] = largest["s1"]
	row["largest_other_s2"] = largest["s2"]
	row["largest_veto"] = largest["veto"]
	row["largest_unknown"] = largest["unknown"]
	row["largest_coincidence"] = largest["coincidence"]

	return row, nil
}

func peakAt(e *source.Event, index int64) (*source.Peak, error) {
	if index < 0 || index >= int64(len(e.Peaks)) {
		return nil, fmt.Errorf("interaction references peak %d of %d", index, len(e.Peaks))
	}
	return &e.Peaks[index], nil
}

// rangeDecile returns the duration containing the central d*10% of the
// peak's area, NaN when the upstream processor recorded no deciles.
func rangeDecile(p *source.Peak, d int) float64 {
	if d < 0 || d >= len(p.RangeAreaDecile) {
		return math.NaN()
	}
	return p.RangeAreaDecile[d]
}
