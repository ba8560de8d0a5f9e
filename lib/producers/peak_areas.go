// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package producers

import (
	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

// PeakAreas provides per-peak sequence columns over the TPC peaks of
// each event, in stored peak order. Events differ in peak count, so
// these columns are variable-length.
//
// Columns:
//   - peak_areas: area in pe of each TPC peak
//   - peak_hits: hit count of each TPC peak
var PeakAreas = registry.Descriptor{
	Name:           "PeakAreas",
	Version:        "0.1",
	Doc:            "Per-peak areas and hit counts of the TPC peaks in each event.",
	RequiredFields: []string{"peaks.area", "peaks.n_hits", "peaks.detector"},
	New:            func() registry.Producer { return peakAreas{} },
}

type peakAreas struct{}

func (peakAreas) Extract(e *source.Event) (table.Row, error) {
	areas := []float64{}
	hits := []int64{}
	for i := range e.Peaks {
		p := &e.Peaks[i]
		if p.Detector != "tpc" {
			continue
		}
		areas = append(areas, p.Area)
		hits = append(hits, p.NHits)
	}
	return table.Row{
		"peak_areas": areas,
		"peak_hits":  hits,
	}, nil
}
