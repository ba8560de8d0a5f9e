// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opendetector/skim/lib/artifact"
	"github.com/opendetector/skim/lib/clock"
	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

// materializer runs a producer over a run's events and builds the
// derived table plus its provenance metadata.
type materializer struct {
	source    source.Source
	clock     clock.Clock
	createdBy string
	log       *slog.Logger
}

// materialize extracts the run's derived table for one producer. A
// producer that yields no rows at all is ErrEmptyResult; the caller
// must not persist anything in that case.
func (m *materializer) materialize(ctx context.Context, run string, d registry.Descriptor) (*table.Table, artifact.Metadata, error) {
	producer := d.New()
	builder := table.NewBuilder(d.FlushSize)

	events := 0
	err := m.source.Events(ctx, run, d.RequiredFields, func(event *source.Event) error {
		events++
		row, err := producer.Extract(event)
		if err != nil {
			return fmt.Errorf("event %d: %w", event.Number, err)
		}
		if row == nil {
			return nil
		}

		// Every row carries the event identity, whatever the
		// producer extracts.
		if _, ok := row["run_number"]; !ok {
			row["run_number"] = event.RunNumber
		}
		if _, ok := row["event_number"]; !ok {
			row["event_number"] = event.Number
		}
		return builder.Append(row)
	})
	if err != nil {
		return nil, artifact.Metadata{}, fmt.Errorf("cache: extract %s from %s: %w", d.Name, run, err)
	}

	tbl, err := builder.Finish()
	if err != nil {
		return nil, artifact.Metadata{}, fmt.Errorf("cache: build table for %s from %s: %w", d.Name, run, err)
	}
	if tbl.NumRows() == 0 {
		return nil, artifact.Metadata{}, fmt.Errorf("cache: %w: producer %s on %s (%d events)",
			ErrEmptyResult, d.Name, run, events)
	}

	upstream := ""
	if runMeta, err := m.source.Metadata(run); err != nil {
		m.log.Warn("run metadata unavailable, artifact will record no upstream version",
			"run", run, "error", err)
	} else {
		upstream = runMeta.BuilderVersion
	}

	meta := artifact.Metadata{
		ProducerVersion: d.Version,
		UpstreamVersion: upstream,
		CreatedBy:       m.createdBy,
		Documentation:   d.Doc,
		CreatedAt:       m.clock.Now().UTC(),
	}

	m.log.Debug("materialized",
		"run", run,
		"producer", d.Name,
		"rows", tbl.NumRows(),
		"events", events)
	return tbl, meta, nil
}
