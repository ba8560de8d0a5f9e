// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/opendetector/skim/lib/table"
)

// Column payloads are fixed-stride binary, 8 bytes per value, little
// endian. Scalar columns are rows*8 bytes of values. Sequence columns
// store an explicit length block first — one int64 per row — followed
// by the flattened element values, so the per-row element count
// survives the round trip losslessly (including zero-length rows).

// columnBytes encodes a column's data. The second return value reports
// whether the payload is float-dominated, which selects the
// byte-grouping compression transform.
func columnBytes(c *table.Column) ([]byte, bool) {
	switch {
	case c.Schema.Kind == table.KindScalar && c.Schema.Type == table.TypeInt:
		out := make([]byte, 8*len(c.Ints))
		for i, v := range c.Ints {
			binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
		}
		return out, false

	case c.Schema.Kind == table.KindScalar && c.Schema.Type == table.TypeFloat:
		out := make([]byte, 8*len(c.Floats))
		for i, v := range c.Floats {
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
		}
		return out, true

	case c.Schema.Kind == table.KindSequence && c.Schema.Type == table.TypeInt:
		total := 0
		for _, seq := range c.IntSeqs {
			total += len(seq)
		}
		out := make([]byte, 8*(len(c.IntSeqs)+total))
		offset := 0
		for _, seq := range c.IntSeqs {
			binary.LittleEndian.PutUint64(out[offset:], uint64(len(seq)))
			offset += 8
		}
		for _, seq := range c.IntSeqs {
			for _, v := range seq {
				binary.LittleEndian.PutUint64(out[offset:], uint64(v))
				offset += 8
			}
		}
		return out, false

	default: // sequence of floats
		total := 0
		for _, seq := range c.FloatSeqs {
			total += len(seq)
		}
		out := make([]byte, 8*(len(c.FloatSeqs)+total))
		offset := 0
		for _, seq := range c.FloatSeqs {
			binary.LittleEndian.PutUint64(out[offset:], uint64(len(seq)))
			offset += 8
		}
		for _, seq := range c.FloatSeqs {
			for _, v := range seq {
				binary.LittleEndian.PutUint64(out[offset:], math.Float64bits(v))
				offset += 8
			}
		}
		return out, true
	}
}

// decodeColumn reconstructs a column from its payload bytes.
func decodeColumn(schema table.ColumnSchema, rows int, data []byte) (*table.Column, error) {
	column := &table.Column{Schema: schema}

	switch schema.Kind {
	case table.KindScalar:
		if len(data) != 8*rows {
			return nil, fmt.Errorf("column %q: payload is %d bytes, expected %d for %d rows",
				schema.Name, len(data), 8*rows, rows)
		}
		switch schema.Type {
		case table.TypeInt:
			column.Ints = make([]int64, rows)
			for i := range column.Ints {
				column.Ints[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
			}
		case table.TypeFloat:
			column.Floats = make([]float64, rows)
			for i := range column.Floats {
				column.Floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
			}
		default:
			return nil, fmt.Errorf("column %q: unknown scalar type %d", schema.Name, schema.Type)
		}

	case table.KindSequence:
		if len(data) < 8*rows {
			return nil, fmt.Errorf("column %q: payload is %d bytes, too short for %d length entries",
				schema.Name, len(data), rows)
		}
		lengths := make([]int, rows)
		total := 0
		for i := range lengths {
			length := int64(binary.LittleEndian.Uint64(data[i*8:]))
			if length < 0 {
				return nil, fmt.Errorf("column %q: negative sequence length at row %d", schema.Name, i)
			}
			lengths[i] = int(length)
			total += int(length)
		}
		if len(data) != 8*(rows+total) {
			return nil, fmt.Errorf("column %q: payload is %d bytes, expected %d for lengths summing to %d",
				schema.Name, len(data), 8*(rows+total), total)
		}

		offset := 8 * rows
		switch schema.Type {
		case table.TypeInt:
			column.IntSeqs = make([][]int64, rows)
			for i, length := range lengths {
				seq := make([]int64, length)
				for j := range seq {
					seq[j] = int64(binary.LittleEndian.Uint64(data[offset:]))
					offset += 8
				}
				column.IntSeqs[i] = seq
			}
		case table.TypeFloat:
			column.FloatSeqs = make([][]float64, rows)
			for i, length := range lengths {
				seq := make([]float64, length)
				for j := range seq {
					seq[j] = math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
					offset += 8
				}
				column.FloatSeqs[i] = seq
			}
		default:
			return nil, fmt.Errorf("column %q: unknown scalar type %d", schema.Name, schema.Type)
		}

	default:
		return nil, fmt.Errorf("column %q: unknown column kind %d", schema.Name, schema.Kind)
	}

	return column, nil
}
