// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package table

import "fmt"

// Concat appends the rows of all tables into one table, in argument
// order. Every table must have the same schema — the same producer ran
// over different runs, so a mismatch means the producer changed
// between materializations and the artifacts cannot be combined.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return New(nil), nil
	}

	out := New(tables[0].Schema())
	for _, t := range tables {
		if err := out.appendTable(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// appendTable bulk-appends all rows of src, which must have a schema
// identical to t's.
func (t *Table) appendTable(src *Table) error {
	if len(src.columns) != len(t.columns) {
		return fmt.Errorf("cannot concatenate: %d columns vs %d", len(src.columns), len(t.columns))
	}

	for i, dst := range t.columns {
		from := src.columns[i]
		if from.Schema != dst.Schema {
			return fmt.Errorf("cannot concatenate: column %d is %+v in one table and %+v in another",
				i, dst.Schema, from.Schema)
		}
		dst.Ints = append(dst.Ints, from.Ints...)
		dst.Floats = append(dst.Floats, from.Floats...)
		dst.IntSeqs = append(dst.IntSeqs, from.IntSeqs...)
		dst.FloatSeqs = append(dst.FloatSeqs, from.FloatSeqs...)
	}
	t.rows += src.rows
	return nil
}

// Join combines tables column-wise. The join is positional: row i of
// every input describes the same event, so all inputs must have the
// same row count. Producers that disagree on event ordering produce
// meaningless joins; that contract is theirs to uphold.
//
// When two inputs define a column with the same name, the first
// occurrence wins and later ones are dropped. The baseline producer is
// always joined first, so its columns survive a producer that re-emits
// one of its names.
func Join(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return New(nil), nil
	}

	rows := tables[0].rows
	out := &Table{byName: make(map[string]*Column), rows: rows}

	for _, t := range tables {
		if t.rows != rows {
			return nil, fmt.Errorf("cannot join: row count %d vs %d", t.rows, rows)
		}
		for _, column := range t.columns {
			if _, exists := out.byName[column.Schema.Name]; exists {
				continue
			}
			out.columns = append(out.columns, column)
			out.byName[column.Schema.Name] = column
		}
	}
	return out, nil
}
