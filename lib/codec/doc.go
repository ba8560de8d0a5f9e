// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides skim's standard CBOR encoding configuration.
//
// All persisted CBOR — artifact metadata and schema sections, snapshot
// sidecars, event files — goes through this package so that encoding
// options are set in exactly one place.
package codec
