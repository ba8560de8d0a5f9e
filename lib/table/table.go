// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"fmt"
	"sort"
)

// ScalarType is the element type of a column.
type ScalarType uint8

const (
	// TypeInt marks 64-bit signed integer elements.
	TypeInt ScalarType = 1
	// TypeFloat marks 64-bit floating point elements.
	TypeFloat ScalarType = 2
)

// String returns the human-readable name of a scalar type.
func (t ScalarType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Kind distinguishes one-value-per-row columns from variable-length
// sequence columns.
type Kind uint8

const (
	// KindScalar marks columns with exactly one value per row.
	KindScalar Kind = 1
	// KindSequence marks columns whose per-row value is a
	// variable-length sequence (possibly empty) of scalars.
	KindSequence Kind = 2
)

// String returns the human-readable name of a column kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ColumnSchema describes one column: its name, whether it holds
// scalars or sequences, and the element type. The schema of a table is
// decided once — from the first extracted row — and never re-evaluated
// per row.
type ColumnSchema struct {
	Name string     `cbor:"name"`
	Kind Kind       `cbor:"kind"`
	Type ScalarType `cbor:"type"`
}

// Row is one extracted event: a mapping from column name to value.
// Supported value types are Go integers, float32/float64, and slices
// of them. Everything else is rejected when the row is appended.
type Row map[string]any

// Column holds the data of one column. Exactly one of the four data
// slices is populated, according to the schema's Kind and Type.
type Column struct {
	Schema ColumnSchema

	Ints      []int64
	Floats    []float64
	IntSeqs   [][]int64
	FloatSeqs [][]float64
}

// Len returns the number of rows stored in the column.
func (c *Column) Len() int {
	switch {
	case c.Schema.Kind == KindSequence && c.Schema.Type == TypeInt:
		return len(c.IntSeqs)
	case c.Schema.Kind == KindSequence && c.Schema.Type == TypeFloat:
		return len(c.FloatSeqs)
	case c.Schema.Type == TypeInt:
		return len(c.Ints)
	default:
		return len(c.Floats)
	}
}

// Table is an in-memory column table with one row per event. Tables
// are append-only while being built and read-only afterward.
type Table struct {
	columns []*Column
	byName  map[string]*Column
	rows    int
}

// New creates an empty table with the given schema.
func New(schema []ColumnSchema) *Table {
	t := &Table{byName: make(map[string]*Column, len(schema))}
	for _, cs := range schema {
		column := &Column{Schema: cs}
		t.columns = append(t.columns, column)
		t.byName[cs.Name] = column
	}
	return t
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns in the table.
func (t *Table) NumColumns() int { return len(t.columns) }

// Schema returns the ordered column schemas.
func (t *Table) Schema() []ColumnSchema {
	schema := make([]ColumnSchema, len(t.columns))
	for i, column := range t.columns {
		schema[i] = column.Schema
	}
	return schema
}

// Columns returns the table's columns in schema order. The returned
// slice and the columns it points to must not be mutated.
func (t *Table) Columns() []*Column { return t.columns }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	column, ok := t.byName[name]
	return column, ok
}

// ColumnNames returns the column names in schema order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, column := range t.columns {
		names[i] = column.Schema.Name
	}
	return names
}

// inferSchema derives a schema from the first extracted row. Columns
// are ordered by name so that the schema (and therefore the persisted
// artifact bytes) do not depend on map iteration order.
func inferSchema(row Row) ([]ColumnSchema, error) {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := make([]ColumnSchema, 0, len(names))
	for _, name := range names {
		cs, err := schemaFor(name, row[name])
		if err != nil {
			return nil, err
		}
		schema = append(schema, cs)
	}
	return schema, nil
}

// schemaFor tags a single column from its first value.
func schemaFor(name string, value any) (ColumnSchema, error) {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return ColumnSchema{Name: name, Kind: KindScalar, Type: TypeInt}, nil
	case float32, float64:
		return ColumnSchema{Name: name, Kind: KindScalar, Type: TypeFloat}, nil
	case []int64, []int:
		return ColumnSchema{Name: name, Kind: KindSequence, Type: TypeInt}, nil
	case []float64, []float32:
		return ColumnSchema{Name: name, Kind: KindSequence, Type: TypeFloat}, nil
	default:
		return ColumnSchema{}, fmt.Errorf("column %q: unsupported value type %T (values must be ints, floats, or slices of them)", name, value)
	}
}

// appendRow validates a row against the schema and appends it. Every
// schema column must be present, and no extra keys are allowed —
// producers must emit the same columns for every event (filling NaN
// where a quantity is not defined for an event).
func (t *Table) appendRow(row Row) error {
	if len(row) != len(t.columns) {
		for name := range row {
			if _, ok := t.byName[name]; !ok {
				return fmt.Errorf("row has column %q not present in the first row's schema", name)
			}
		}
	}

	for _, column := range t.columns {
		value, ok := row[column.Schema.Name]
		if !ok {
			return fmt.Errorf("row is missing column %q", column.Schema.Name)
		}
		if err := column.append(value); err != nil {
			return err
		}
	}
	t.rows++
	return nil
}

// append coerces value to the column's type and stores it.
func (c *Column) append(value any) error {
	name := c.Schema.Name

	switch c.Schema.Kind {
	case KindScalar:
		switch c.Schema.Type {
		case TypeInt:
			n, ok := toInt64(value)
			if !ok {
				return fmt.Errorf("column %q: expected integer, got %T", name, value)
			}
			c.Ints = append(c.Ints, n)
		case TypeFloat:
			f, ok := toFloat64(value)
			if !ok {
				return fmt.Errorf("column %q: expected float, got %T", name, value)
			}
			c.Floats = append(c.Floats, f)
		}

	case KindSequence:
		switch c.Schema.Type {
		case TypeInt:
			seq, ok := toInt64Slice(value)
			if !ok {
				return fmt.Errorf("column %q: expected integer sequence, got %T", name, value)
			}
			c.IntSeqs = append(c.IntSeqs, seq)
		case TypeFloat:
			seq, ok := toFloat64Slice(value)
			if !ok {
				return fmt.Errorf("column %q: expected float sequence, got %T", name, value)
			}
			c.FloatSeqs = append(c.FloatSeqs, seq)
		}
	}
	return nil
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	default:
		return 0, false
	}
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		// Integers widen to float when the first row tagged the
		// column as float (a producer mixing 0 and 0.5 for the same
		// quantity).
		if n, ok := toInt64(value); ok {
			return float64(n), true
		}
		return 0, false
	}
}

func toInt64Slice(value any) ([]int64, bool) {
	switch v := value.(type) {
	case []int64:
		return v, true
	case []int:
		out := make([]int64, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat64Slice(value any) ([]float64, bool) {
	switch v := value.(type) {
	case []float64:
		return v, true
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, true
	default:
		return nil, false
	}
}
