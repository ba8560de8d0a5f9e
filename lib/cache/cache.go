// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache is the core of skim: it decides whether a cached
// derived-data artifact may be reused or must be regenerated, runs
// producers to materialize missing artifacts, and combines artifacts
// across runs and producers into one analysis table.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"

	"github.com/opendetector/skim/lib/artifact"
	"github.com/opendetector/skim/lib/clock"
	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/table"
)

// fundamentalsName is the producer implicitly prepended to every Load:
// its columns give every loaded table a usable event identity.
const fundamentalsName = "Fundamentals"

// Params configures a Cache. CachePaths and Source are required; the
// zero value of everything else selects a sensible default.
type Params struct {
	// CachePaths is the ordered artifact search path. Writes target
	// the first directory.
	CachePaths []string

	// Source provides raw events and run metadata.
	Source source.Source

	// Registry resolves producer names. Nil selects the process-wide
	// default registry.
	Registry *registry.Registry

	// Policy governs upstream version acceptance. The zero value is
	// Latest.
	Policy Policy

	// Clock supplies artifact timestamps. Nil selects the real clock.
	Clock clock.Clock

	// CreatedBy is the identity recorded in artifact metadata. Empty
	// selects user@hostname.
	CreatedBy string

	// Snapshot writes a fast-reload sidecar next to every newly
	// materialized artifact.
	Snapshot bool

	// Logger receives cache decisions. Nil selects slog.Default().
	Logger *slog.Logger
}

// Cache resolves, materializes, and combines derived-data artifacts.
type Cache struct {
	paths        []string
	source       source.Source
	registry     *registry.Registry
	snapshot     bool
	log          *slog.Logger
	resolver     *resolver
	materializer *materializer
}

// New creates a Cache from params.
func New(p Params) (*Cache, error) {
	if len(p.CachePaths) == 0 {
		return nil, errors.New("cache: no cache paths configured")
	}
	if p.Source == nil {
		return nil, errors.New("cache: no raw data source configured")
	}
	if p.Registry == nil {
		p.Registry = registry.Default
	}
	if p.Clock == nil {
		p.Clock = clock.Real()
	}
	if p.CreatedBy == "" {
		p.CreatedBy = defaultCreatedBy()
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}

	return &Cache{
		paths:    p.CachePaths,
		source:   p.Source,
		registry: p.Registry,
		snapshot: p.Snapshot,
		log:      p.Logger,
		resolver: &resolver{
			paths:  p.CachePaths,
			source: p.Source,
			policy: p.Policy,
			log:    p.Logger,
		},
		materializer: &materializer{
			source:    p.Source,
			clock:     p.Clock,
			createdBy: p.CreatedBy,
			log:       p.Logger,
		},
	}, nil
}

// defaultCreatedBy is the user@hostname identity recorded in artifact
// metadata when none is configured.
func defaultCreatedBy() string {
	username := "unknown"
	if current, err := user.Current(); err == nil && current.Username != "" {
		username = current.Username
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	return username + "@" + hostname
}

// GetOptions modifies a single Get.
type GetOptions struct {
	// ForceReload skips the cache search and re-materializes.
	ForceReload bool

	// Snapshot writes a snapshot sidecar if this Get materializes,
	// in addition to the cache-wide setting.
	Snapshot bool
}

// Get returns the artifact path and derived table for one (run,
// producer) pair, materializing and persisting the artifact if no
// usable cached one exists. run may be a run name or number.
func (c *Cache) Get(ctx context.Context, run, producer string, opts GetOptions) (string, *table.Table, error) {
	runName, err := c.source.Resolve(run)
	if err != nil {
		return "", nil, err
	}

	descriptor, err := c.registry.Lookup(producer)
	if err != nil {
		return "", nil, err
	}

	path, hit, err := c.resolver.resolve(runName, descriptor, opts.ForceReload)
	if err != nil {
		return "", nil, err
	}
	if hit {
		tbl, err := c.readArtifact(path, runName, descriptor.Name)
		if err != nil {
			return "", nil, err
		}
		c.log.Debug("cache hit", "run", runName, "producer", producer, "path", path)
		return path, tbl, nil
	}

	tbl, meta, err := c.materializer.materialize(ctx, runName, descriptor)
	if err != nil {
		return "", nil, err
	}

	path = filepath.Join(c.paths[0], artifact.Filename(runName, descriptor.Name))
	if err := artifact.WriteFile(path, tbl, meta); err != nil {
		return "", nil, fmt.Errorf("cache: persist %s: %w", path, err)
	}
	snapPath := filepath.Join(c.paths[0], artifact.SnapshotFilename(runName, descriptor.Name))
	if c.snapshot || opts.Snapshot {
		if err := artifact.WriteSnapshot(snapPath, tbl, meta); err != nil {
			// The primary artifact is already persisted; a failed
			// sidecar only costs reload speed.
			c.log.Warn("snapshot write failed", "path", snapPath, "error", err)
		}
	} else if err := os.Remove(snapPath); err != nil && !os.IsNotExist(err) {
		// A sidecar from an earlier materialization no longer matches
		// the artifact just written; it must not survive the rebuild.
		return "", nil, fmt.Errorf("cache: remove outdated snapshot %s: %w", snapPath, err)
	}

	c.log.Info("materialized artifact",
		"run", runName,
		"producer", producer,
		"rows", tbl.NumRows(),
		"path", path)
	return path, tbl, nil
}

// readArtifact loads a cached artifact's table, preferring the
// snapshot sidecar when one sits next to the chosen artifact. The
// sidecar is trusted only if its provenance matches the primary
// artifact's: a sidecar left behind by an earlier materialization
// must never shadow a rebuilt artifact.
func (c *Cache) readArtifact(path, run, producer string) (*table.Table, error) {
	snapPath := filepath.Join(filepath.Dir(path), artifact.SnapshotFilename(run, producer))
	if _, err := os.Stat(snapPath); err == nil {
		primary, err := artifact.ReadMetadata(path)
		if err != nil {
			return nil, fmt.Errorf("cache: read %s: %w", path, err)
		}
		tbl, snapMeta, err := artifact.ReadFile(snapPath)
		switch {
		case err != nil:
			c.log.Warn("snapshot unreadable, falling back to artifact",
				"path", snapPath, "error", err)
		case !snapMeta.CreatedAt.Equal(primary.CreatedAt) ||
			snapMeta.ProducerVersion != primary.ProducerVersion ||
			snapMeta.UpstreamVersion != primary.UpstreamVersion:
			c.log.Warn("snapshot does not match artifact, falling back",
				"path", snapPath,
				"snapshot_created", snapMeta.CreatedAt,
				"artifact_created", primary.CreatedAt)
		default:
			return tbl, nil
		}
	}

	tbl, _, err := artifact.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cache: read %s: %w", path, err)
	}
	return tbl, nil
}

// LoadOptions modifies a Load.
type LoadOptions struct {
	// ForceReload re-materializes every (run, producer) pair instead
	// of using cached artifacts.
	ForceReload bool
}

// Load produces one combined table for the requested runs and
// producers. Fundamentals is always included (prepended when absent),
// so the result carries run and event identity columns. Rows are
// concatenated across runs in request order per producer, then
// producers are joined column-wise; the earlier producer wins on
// duplicate column names.
func (c *Cache) Load(ctx context.Context, runs, producers []string, opts LoadOptions) (*table.Table, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("cache: %w: no runs requested", ErrNoData)
	}

	names := make([]string, 0, len(producers)+1)
	names = append(names, fundamentalsName)
	for _, name := range producers {
		if name != fundamentalsName {
			names = append(names, name)
		}
	}

	perProducer := make([]*table.Table, 0, len(names))
	for _, producer := range names {
		perRun := make([]*table.Table, 0, len(runs))
		for _, run := range runs {
			_, tbl, err := c.Get(ctx, run, producer, GetOptions{ForceReload: opts.ForceReload})
			if err != nil {
				return nil, err
			}
			perRun = append(perRun, tbl)
		}

		combined, err := table.Concat(perRun...)
		if err != nil {
			return nil, fmt.Errorf("cache: concatenate %s across runs: %w", producer, err)
		}
		perProducer = append(perProducer, combined)
	}

	result, err := table.Join(perProducer...)
	if err != nil {
		return nil, fmt.Errorf("cache: join producers: %w", err)
	}
	if result.NumRows() == 0 {
		return nil, fmt.Errorf("cache: %w", ErrNoData)
	}
	return result, nil
}
