// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package table

import "fmt"

// FromColumns assembles a table from fully-populated columns, in the
// given order. Used when reading a persisted artifact back into
// memory. All columns must have the same row count.
func FromColumns(columns []*Column) (*Table, error) {
	t := &Table{byName: make(map[string]*Column, len(columns))}

	for i, column := range columns {
		if column.Schema.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, exists := t.byName[column.Schema.Name]; exists {
			return nil, fmt.Errorf("duplicate column %q", column.Schema.Name)
		}
		if i == 0 {
			t.rows = column.Len()
		} else if column.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", column.Schema.Name, column.Len(), t.rows)
		}
		t.columns = append(t.columns, column)
		t.byName[column.Schema.Name] = column
	}
	return t, nil
}
