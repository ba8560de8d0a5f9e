// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opendetector/skim/lib/artifact"
	"github.com/opendetector/skim/lib/looseversion"
	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
)

// resolver searches the configured cache directories for a usable
// artifact for one (run, producer) key.
type resolver struct {
	paths  []string
	source source.Source
	policy Policy
	log    *slog.Logger
}

// resolve returns the path of a usable cached artifact, or hit=false
// when one must be materialized.
//
// The search visits the cache directories in order and stops at the
// FIRST directory containing a file with the artifact's name,
// whatever its state. A stale first match is a miss: later
// directories are not consulted, so a stale copy in a fast local
// cache shadows a fresh copy on shared storage and gets rebuilt
// locally rather than fetched. Corrupt or unreadable metadata in the
// matched file is an error, not a silent miss — silently rebuilding
// over a corrupt artifact would hide data damage.
func (r *resolver) resolve(run string, d registry.Descriptor, force bool) (string, bool, error) {
	if force {
		return "", false, nil
	}

	for _, dir := range r.paths {
		path := filepath.Join(dir, artifact.Filename(run, d.Name))
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", false, fmt.Errorf("cache: stat %s: %w", path, err)
		}

		meta, err := artifact.ReadMetadata(path)
		if err != nil {
			return "", false, fmt.Errorf("cache: unreadable artifact %s: %w", path, err)
		}

		if looseversion.Less(meta.ProducerVersion, d.Version) {
			r.log.Info("cached artifact outdated",
				"run", run,
				"producer", d.Name,
				"stored_version", meta.ProducerVersion,
				"current_version", d.Version)
			return "", false, nil
		}

		current := ""
		if r.policy.NeedsCurrent() {
			runMeta, err := r.source.Metadata(run)
			if err != nil {
				r.log.Warn("run metadata unavailable", "run", run, "error", err)
			} else {
				current = runMeta.BuilderVersion
			}
		}
		if !r.policy.Admit(meta.UpstreamVersion, current, r.log) {
			r.log.Info("cached artifact rejected by version policy",
				"run", run,
				"producer", d.Name,
				"policy", r.policy.String(),
				"stored_upstream", meta.UpstreamVersion,
				"current_upstream", current)
			return "", false, nil
		}

		return path, true, nil
	}

	return "", false, nil
}
