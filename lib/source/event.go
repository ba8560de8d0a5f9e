// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package source

// Position is one reconstructed (x, y) position for a peak, labeled
// with the algorithm that produced it.
type Position struct {
	Algorithm string  `cbor:"algorithm" json:"algorithm"`
	X         float64 `cbor:"x" json:"x"`
	Y         float64 `cbor:"y" json:"y"`
}

// Peak is one detected signal in an event.
type Peak struct {
	// Detector names the subdetector the peak was seen in ("tpc",
	// "veto", ...).
	Detector string `cbor:"detector" json:"detector"`

	// Type classifies the peak ("s1", "s2", "lone_hit", "unknown",
	// "coincidence").
	Type string `cbor:"type" json:"type"`

	// Area is the uncorrected area in photoelectrons.
	Area float64 `cbor:"area" json:"area"`

	// AreaFractionTop is the fraction of the area seen by the top
	// sensor array.
	AreaFractionTop float64 `cbor:"area_fraction_top" json:"area_fraction_top"`

	// RangeAreaDecile[d] is the duration in ns of the region
	// containing the central d*10% of the peak's area. Index 5 is
	// the conventional 50% width.
	RangeAreaDecile []float64 `cbor:"range_area_decile" json:"range_area_decile"`

	// Left is the sample index where the peak starts.
	Left int64 `cbor:"left" json:"left"`

	NHits                 int64   `cbor:"n_hits" json:"n_hits"`
	HitTimeStd            float64 `cbor:"hit_time_std" json:"hit_time_std"`
	CenterTime            float64 `cbor:"center_time" json:"center_time"`
	NSaturatedChannels    int64   `cbor:"n_saturated_channels" json:"n_saturated_channels"`
	NContributingChannels int64   `cbor:"n_contributing_channels" json:"n_contributing_channels"`

	// ReconstructedPositions holds one entry per position algorithm
	// that ran on this peak.
	ReconstructedPositions []Position `cbor:"reconstructed_positions" json:"reconstructed_positions"`
}

// Interaction pairs an S1 peak with a later S2 peak. S1 and S2 are
// indices into the event's Peaks slice.
type Interaction struct {
	S1 int64 `cbor:"s1" json:"s1"`
	S2 int64 `cbor:"s2" json:"s2"`

	X float64 `cbor:"x" json:"x"`
	Y float64 `cbor:"y" json:"y"`
	Z float64 `cbor:"z" json:"z"`

	// DriftTime is the time in ns between the S1 and the S2.
	DriftTime float64 `cbor:"drift_time" json:"drift_time"`

	// Area corrections to apply for position and saturation effects.
	S1AreaCorrection float64 `cbor:"s1_area_correction" json:"s1_area_correction"`
	S2AreaCorrection float64 `cbor:"s2_area_correction" json:"s2_area_correction"`
}

// Event is one recorded event window with its reconstructed signals.
// Interactions are ordered by the upstream processor; index 0 is the
// main interaction.
type Event struct {
	RunNumber int64 `cbor:"run_number" json:"run_number"`
	Number    int64 `cbor:"event_number" json:"event_number"`

	// StartTime and StopTime bound the event window, in ns since the
	// unix epoch.
	StartTime int64 `cbor:"start_time" json:"start_time"`
	StopTime  int64 `cbor:"stop_time" json:"stop_time"`

	// NPulses is the total number of raw pulses recorded.
	NPulses int64 `cbor:"n_pulses" json:"n_pulses"`

	Peaks        []Peak        `cbor:"peaks" json:"peaks"`
	Interactions []Interaction `cbor:"interactions" json:"interactions"`
}
