// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact defines the persisted artifact file: a derived
// table plus its provenance metadata for one (run, producer) key.
//
// An artifact is a single file whose name is a pure function of its
// key. The container holds a section index followed by section
// payloads: a CBOR metadata record, a CBOR schema record, and one
// binary payload per column. Column payloads are compressed (zstd,
// lz4, or a byte-grouping transform for floats) and checksummed with
// blake3; sequence columns store an explicit per-row length block so
// variable-length values round-trip losslessly.
//
// Artifacts are written atomically (temp file + rename) and are
// read-only afterward; regeneration overwrites the whole file.
package artifact
