// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package producers

import (
	"math"
	"testing"

	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

func deciles(fifty, ninety float64) []float64 {
	d := make([]float64, 11)
	d[5] = fifty
	d[9] = ninety
	return d
}

// sampleEvent has one S1+S2 interaction plus assorted other peaks, so
// every producer has something to chew on.
func sampleEvent() *source.Event {
	return &source.Event{
		RunNumber: 3141,
		Number:    7,
		StartTime: 1_000_000,
		StopTime:  1_000_350,
		NPulses:   42,
		Peaks: []source.Peak{
			{Detector: "tpc", Type: "s1", Area: 50, AreaFractionTop: 0.3,
				RangeAreaDecile: deciles(80, 200), Left: 100, NHits: 10,
				HitTimeStd: 12.5, CenterTime: 140, NSaturatedChannels: 0,
				NContributingChannels: 8,
				ReconstructedPositions: []source.Position{
					{Algorithm: "PosRecNeuralNet", X: 1.0, Y: 1.0},
					{Algorithm: "PosRecTopPatternFit", X: 2.5, Y: -1.5},
					{Algorithm: "PosRecTopPatternFit", X: 3.0, Y: -2.0},
				}},
			{Detector: "tpc", Type: "s2", Area: 400, AreaFractionTop: 0.6,
				RangeAreaDecile: deciles(900, 2500), Left: 500, NHits: 120},
			{Detector: "tpc", Type: "s1", Area: 20, Left: 300},
			{Detector: "veto", Type: "lone_hit", Area: 90, Left: 10},
			{Detector: "veto", Type: "s1", Area: 30, Left: 20},
			{Detector: "tpc", Type: "unknown", Area: 5, Left: 600},
		},
		Interactions: []source.Interaction{
			{S1: 0, S2: 1, X: 1.5, Y: -2.5, Z: -10, DriftTime: 65000,
				S1AreaCorrection: 1.1, S2AreaCorrection: 0.9},
		},
	}
}

func extract(t *testing.T, d registry.Descriptor, e *source.Event) table.Row {
	t.Helper()
	row, err := d.New().Extract(e)
	if err != nil {
		t.Fatal(err)
	}
	if row == nil {
		t.Fatal("producer returned no row")
	}
	return row
}

func wantFloat(t *testing.T, row table.Row, column string, want float64) {
	t.Helper()
	value, ok := row[column]
	if !ok {
		t.Errorf("column %q missing", column)
		return
	}
	got, ok := value.(float64)
	if !ok {
		t.Errorf("column %q is %T, want float64", column, value)
		return
	}
	if math.IsNaN(want) {
		if !math.IsNaN(got) {
			t.Errorf("%s = %v, want NaN", column, got)
		}
		return
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", column, got, want)
	}
}

func wantInt(t *testing.T, row table.Row, column string, want int64) {
	t.Helper()
	got, ok := row[column].(int64)
	if !ok {
		t.Errorf("column %q is %T, want int64", column, row[column])
		return
	}
	if got != want {
		t.Errorf("%s = %d, want %d", column, got, want)
	}
}

func TestFundamentals(t *testing.T) {
	row := extract(t, Fundamentals, sampleEvent())
	wantInt(t, row, "event_time", 1_000_000)
	wantInt(t, row, "event_duration", 350)
}

func TestBasicsMainInteraction(t *testing.T) {
	row := extract(t, Basics, sampleEvent())

	wantFloat(t, row, "s1", 50)
	wantFloat(t, row, "s2", 400)
	wantFloat(t, row, "cs1", 55)  // 50 * 1.1
	wantFloat(t, row, "cs2", 360) // 400 * 0.9
	wantFloat(t, row, "x", 1.5)
	wantFloat(t, row, "y", -2.5)
	wantFloat(t, row, "z", -10)
	wantFloat(t, row, "drift_time", 65000)
	wantFloat(t, row, "s1_range_50p_area", 80)
	wantFloat(t, row, "s2_range_50p_area", 900)

	// The interaction's own peaks are excluded from the largest-other
	// search; veto lone hits are skipped entirely.
	wantFloat(t, row, "largest_other_s1", 20)
	wantFloat(t, row, "largest_other_s2", 0)
	wantFloat(t, row, "largest_veto", 30)
	wantFloat(t, row, "largest_unknown", 5)
	wantFloat(t, row, "largest_coincidence", 0)
}

func TestBasicsNoInteraction(t *testing.T) {
	e := sampleEvent()
	e.Interactions = nil
	row := extract(t, Basics, e)

	for _, column := range []string{"s1", "s2", "cs1", "cs2", "x", "y", "z", "drift_time"} {
		wantFloat(t, row, column, math.NaN())
	}
	// Nothing excluded now, so the main S1 counts.
	wantFloat(t, row, "largest_other_s1", 50)
	wantFloat(t, row, "largest_other_s2", 400)
}

func TestBasicsBadPeakIndex(t *testing.T) {
	e := sampleEvent()
	e.Interactions[0].S2 = 99
	if _, err := Basics.New().Extract(e); err == nil {
		t.Error("expected error for out-of-range peak index")
	}
}

func TestLargestPeakProperties(t *testing.T) {
	row := extract(t, LargestPeakProperties, sampleEvent())

	wantFloat(t, row, "s1_area", 50)
	wantFloat(t, row, "s1_n_hits", 10)
	wantFloat(t, row, "s1_range_90p_area", 200)
	wantFloat(t, row, "s2_area", 400)

	// Two PosRecTopPatternFit entries: the last one wins.
	wantFloat(t, row, "s1_x", 3.0)
	wantFloat(t, row, "s1_y", -2.0)

	// No reconstructed positions on the S2.
	wantFloat(t, row, "s2_x", math.NaN())

	// No TPC lone hits in the event (the veto one does not count).
	wantFloat(t, row, "lone_hit_area", math.NaN())
	wantFloat(t, row, "unknown_area", 5)
}

func TestTotalProperties(t *testing.T) {
	row := extract(t, TotalProperties, sampleEvent())

	wantInt(t, row, "n_pulses", 42)
	wantInt(t, row, "n_peaks", 6)
	wantInt(t, row, "n_true_peaks", 5)
	wantFloat(t, row, "total_peak_area", 475) // 50+400+20+5
	// TPC peaks starting before the main S2 at 500: areas 50 and 20.
	wantFloat(t, row, "area_before_main_s2", 70)
}

func TestTotalPropertiesNoInteraction(t *testing.T) {
	e := sampleEvent()
	e.Interactions = nil
	row := extract(t, TotalProperties, e)
	wantFloat(t, row, "area_before_main_s2", 0)
}

func TestPeakAreas(t *testing.T) {
	row := extract(t, PeakAreas, sampleEvent())

	areas, ok := row["peak_areas"].([]float64)
	if !ok {
		t.Fatalf("peak_areas is %T", row["peak_areas"])
	}
	want := []float64{50, 400, 20, 5}
	if len(areas) != len(want) {
		t.Fatalf("peak_areas = %v, want %v", areas, want)
	}
	for i := range want {
		if areas[i] != want[i] {
			t.Errorf("peak_areas[%d] = %v, want %v", i, areas[i], want[i])
		}
	}

	hits, ok := row["peak_hits"].([]int64)
	if !ok {
		t.Fatalf("peak_hits is %T", row["peak_hits"])
	}
	if len(hits) != 4 || hits[0] != 10 || hits[1] != 120 {
		t.Errorf("peak_hits = %v", hits)
	}
}

func TestAllRegisteredInDefault(t *testing.T) {
	for _, d := range All() {
		if _, err := registry.Lookup(d.Name); err != nil {
			t.Errorf("%s not registered in the default registry: %v", d.Name, err)
		}
	}
}
