// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import "time"

// Metadata is the provenance record carried by every artifact. It is
// written once, when the artifact is materialized, and is what the
// resolver inspects to decide whether a cached copy is still
// acceptable.
type Metadata struct {
	// ProducerVersion is the version of the producer that extracted
	// this artifact. Compared against the current descriptor's version
	// on every resolve; strictly older means stale.
	ProducerVersion string `cbor:"producer_version" json:"producer_version"`

	// UpstreamVersion is the version of the raw-data builder that
	// produced the source file this artifact was extracted from. An
	// empty value means the version was unknown at materialization
	// time and compares as the oldest possible version.
	UpstreamVersion string `cbor:"upstream_version" json:"upstream_version"`

	// CreatedBy identifies who materialized the artifact,
	// conventionally user@hostname.
	CreatedBy string `cbor:"created_by" json:"created_by"`

	// Documentation is the producer's doc string, if it has one.
	Documentation string `cbor:"documentation,omitempty" json:"documentation,omitempty"`

	// CreatedAt is when the artifact was materialized.
	CreatedAt time.Time `cbor:"created_at" json:"created_at"`
}

// Filename returns the artifact filename for a (run, producer) key:
// "<run>_<producer>.skim". The path within a cache directory is a pure
// function of the key. Producer names may not contain underscores
// (enforced at registration), which keeps the filename-to-key mapping
// unambiguous even though run names contain underscores themselves.
func Filename(run, producer string) string {
	return run + "_" + producer + ".skim"
}

// SnapshotFilename returns the filename of the optional fast-reload
// snapshot written alongside an artifact.
func SnapshotFilename(run, producer string) string {
	return run + "_" + producer + ".snap"
}
