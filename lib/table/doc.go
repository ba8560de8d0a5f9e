// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package table is skim's in-memory column table: one row per event,
// columns tagged as scalar or variable-length sequence with int or
// float elements. The schema is decided once per table, from the first
// extracted row.
//
// Tables are built through a bounded-buffer Builder during
// materialization, concatenated row-wise when combining the same
// producer across runs, and joined column-wise (positionally) when
// combining producers for the same runs.
package table
