// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package producers

import (
	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

// Fundamentals provides basic identity columns for every event,
// regardless of its contents. It is loaded with every request whether
// asked for or not.
//
// Columns:
//   - run_number: run this event came from (common to all producers)
//   - event_number: event number within the run (common to all producers)
//   - event_time: unix time in ns of the start of the event window
//   - event_duration: duration of the event window in ns
var Fundamentals = registry.Descriptor{
	Name:           "Fundamentals",
	Version:        "0.1",
	Doc:            "Basic information about every event, regardless of its contents.",
	RequiredFields: []string{"event_number", "start_time", "stop_time"},
	New:            func() registry.Producer { return fundamentals{} },
}

type fundamentals struct{}

func (fundamentals) Extract(e *source.Event) (table.Row, error) {
	return table.Row{
		"event_time":     e.StartTime,
		"event_duration": e.StopTime - e.StartTime,
	}, nil
}
