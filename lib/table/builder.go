// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package table

import "fmt"

// DefaultFlushSize is the bounded-buffer size used when a producer
// does not declare one.
const DefaultFlushSize = 1000

// Builder accumulates extracted rows into a Table through a bounded
// buffer. Rows are buffered until the buffer holds flushSize entries,
// then flushed in bulk; Finish flushes whatever remains. This bounds
// peak per-row bookkeeping while keeping table construction a bulk
// operation rather than a per-row one.
//
// The table's schema is inferred from the first row at the first
// flush and is fixed from then on.
type Builder struct {
	flushSize int
	buffer    []Row
	table     *Table
}

// NewBuilder creates a Builder. flushSize <= 0 selects
// DefaultFlushSize.
func NewBuilder(flushSize int) *Builder {
	if flushSize <= 0 {
		flushSize = DefaultFlushSize
	}
	return &Builder{flushSize: flushSize}
}

// Append adds one row to the buffer, flushing into the table when the
// buffer is full.
func (b *Builder) Append(row Row) error {
	b.buffer = append(b.buffer, row)
	if len(b.buffer) >= b.flushSize {
		return b.flush()
	}
	return nil
}

// flush drains the buffer into the table, creating the table (and
// deciding the schema) on the first call.
func (b *Builder) flush() error {
	if len(b.buffer) == 0 {
		return nil
	}

	if b.table == nil {
		schema, err := inferSchema(b.buffer[0])
		if err != nil {
			return err
		}
		b.table = New(schema)
	}

	for _, row := range b.buffer {
		if err := b.table.appendRow(row); err != nil {
			return fmt.Errorf("row %d: %w", b.table.rows, err)
		}
	}
	b.buffer = b.buffer[:0]
	return nil
}

// Finish flushes any buffered rows and returns the built table. A
// builder that never received a row returns a table with zero rows
// and zero columns — callers decide whether that is an error.
func (b *Builder) Finish() (*Table, error) {
	if err := b.flush(); err != nil {
		return nil, err
	}
	if b.table == nil {
		b.table = New(nil)
	}
	return b.table, nil
}
