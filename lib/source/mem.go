// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"sync"
)

// MemSource is an in-memory Source for tests. It records how many
// times each run's events were iterated, so tests can assert that the
// cache re-extracts only when it should.
type MemSource struct {
	mu     sync.Mutex
	runs   map[string]memRun
	counts map[string]int
}

type memRun struct {
	events []Event
	meta   RunMetadata
}

// NewMemSource creates an empty in-memory source.
func NewMemSource() *MemSource {
	return &MemSource{
		runs:   make(map[string]memRun),
		counts: make(map[string]int),
	}
}

// AddRun registers a run with its events and metadata, replacing any
// previous entry.
func (s *MemSource) AddRun(run string, meta RunMetadata, events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run] = memRun{events: events, meta: meta}
}

// SetBuilderVersion updates a run's builder version in place.
func (s *MemSource) SetBuilderVersion(run, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.runs[run]
	entry.meta.BuilderVersion = version
	s.runs[run] = entry
}

// EventCalls reports how many times the run's events were iterated.
func (s *MemSource) EventCalls(run string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[run]
}

// Events iterates the run's stored events in insertion order.
func (s *MemSource) Events(ctx context.Context, run string, fields []string, fn func(*Event) error) error {
	s.mu.Lock()
	entry, ok := s.runs[run]
	if ok {
		s.counts[run]++
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("source: %w: %s", ErrNotFound, run)
	}
	for i := range entry.events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&entry.events[i]); err != nil {
			return err
		}
	}
	return nil
}

// Metadata returns the run's stored metadata.
func (s *MemSource) Metadata(run string) (RunMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.runs[run]
	if !ok {
		return RunMetadata{}, fmt.Errorf("source: %w: %s", ErrNotFound, run)
	}
	return entry.meta, nil
}

// Resolve maps a run reference to a stored run name, matching numeric
// references against trailing run numbers.
func (s *MemSource) Resolve(ref string) (string, error) {
	parsed, err := ParseRunRef(ref)
	if err != nil {
		return "", err
	}
	if !parsed.IsNumeric() {
		return parsed.Name, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for run := range s.runs {
		if numberFromName(run) == parsed.Number {
			return run, nil
		}
	}
	return "", fmt.Errorf("source: %w: run number %d", ErrNotFound, parsed.Number)
}
