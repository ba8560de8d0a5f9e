// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package producers

import (
	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

// TotalProperties provides aggregate signal properties of the whole
// event.
//
// Columns:
//   - n_pulses: total number of raw pulses in the event
//   - n_peaks: total number of peaks (including lone hits)
//   - n_true_peaks: number of peaks that are not lone hits
//   - total_peak_area: summed area in pe of all TPC peaks
//   - area_before_main_s2: same, restricted to peaks starting before
//     the main interaction's S2 (0 when there is no interaction)
var TotalProperties = registry.Descriptor{
	Name:    "TotalProperties",
	Version: "0.2.0",
	Doc:     "Aggregate properties of signals in the entire event.",
	RequiredFields: []string{
		"n_pulses", "peaks.area", "peaks.detector", "peaks.left",
		"peaks.type", "interactions.s2",
	},
	New: func() registry.Producer { return totals{} },
}

type totals struct{}

func (totals) Extract(e *source.Event) (table.Row, error) {
	var truePeaks int64
	var totalArea float64
	for i := range e.Peaks {
		p := &e.Peaks[i]
		if p.Type != "lone_hit" {
			truePeaks++
		}
		if p.Detector == "tpc" {
			totalArea += p.Area
		}
	}

	areaBeforeMainS2 := 0.0
	if len(e.Interactions) != 0 {
		mainS2, err := peakAt(e, e.Interactions[0].S2)
		if err != nil {
			return nil, err
		}
		for i := range e.Peaks {
			p := &e.Peaks[i]
			if p.Detector == "tpc" && p.Left < mainS2.Left {
				areaBeforeMainS2 += p.Area
			}
		}
	}

	return table.Row{
		"n_pulses":            e.NPulses,
		"n_peaks":             int64(len(e.Peaks)),
		"n_true_peaks":        truePeaks,
		"total_peak_area":     totalArea,
		"area_before_main_s2": areaBeforeMainS2,
	}, nil
}
