// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry maps producer names to the descriptors that create
// them. Producers register at init time (or explicitly in tests) and
// are looked up by name when a run is materialized or loaded.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

var (
	// ErrUnknownProducer is returned when a lookup names a producer
	// that was never registered.
	ErrUnknownProducer = errors.New("unknown producer")

	// ErrDuplicateProducer is returned when two registrations claim
	// the same name.
	ErrDuplicateProducer = errors.New("producer already registered")

	// ErrMissingVersion is returned when a descriptor declares no
	// version. Versionless producers would make staleness detection
	// impossible, so registration refuses them outright.
	ErrMissingVersion = errors.New("producer declares no version")
)

// Producer extracts one table row per event. Extract returns a nil row
// to skip the event without error.
type Producer interface {
	Extract(event *source.Event) (table.Row, error)
}

// Descriptor declares a producer: its identity, its version (which
// drives cache staleness), and a constructor for fresh instances. A
// new instance is created per materialization so producers may keep
// per-run state.
type Descriptor struct {
	// Name identifies the producer and appears in artifact
	// filenames. It must not contain underscores: the filename
	// format uses "_" to separate run from producer, and allowing it
	// in names would make filenames ambiguous.
	Name string

	// Version marks the producer's logic. Bump it whenever the
	// extraction changes so cached artifacts from the old logic are
	// recognized as stale.
	Version string

	// Doc describes what the producer computes. It is stored in the
	// artifact metadata.
	Doc string

	// RequiredFields lists the event fields the producer reads,
	// passed to the source as a read hint.
	RequiredFields []string

	// FlushSize overrides the row buffer size during
	// materialization. Zero selects table.DefaultFlushSize.
	FlushSize int

	// New creates a fresh producer instance.
	New func() Producer
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return errors.New("producer has no name")
	}
	if strings.Contains(d.Name, "_") {
		return fmt.Errorf("producer name %q contains an underscore", d.Name)
	}
	if d.Version == "" {
		return fmt.Errorf("%w: %s", ErrMissingVersion, d.Name)
	}
	if d.New == nil {
		return fmt.Errorf("producer %s has no constructor", d.Name)
	}
	return nil
}

// Registry is a concurrency-safe name-to-descriptor map.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Descriptor)}
}

// Register adds a descriptor, rejecting invalid or duplicate entries.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProducer, d.Name)
	}
	r.entries[d.Name] = d
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.entries[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownProducer, name)
	}
	return d, nil
}

// Names returns all registered producer names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes all entries. Intended for tests that build their own
// producer sets.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]Descriptor)
}

// Default is the process-wide registry that producers register into
// at init time.
var Default = New()

// Register adds a descriptor to the default registry, panicking on
// failure. Registration errors are programming mistakes, so they
// surface at init time rather than at first use.
func Register(d Descriptor) {
	if err := Default.Register(d); err != nil {
		panic(err)
	}
}

// Lookup looks up a producer in the default registry.
func Lookup(name string) (Descriptor, error) {
	return Default.Lookup(name)
}

// Names lists the default registry's producers.
func Names() []string {
	return Default.Names()
}
