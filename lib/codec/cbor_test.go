// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"producer_version": "0.2.0",
		"upstream_version": "6.0.1",
		"created_by":       "analyst@host",
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical values produced different encodings")
	}
}

func TestRoundTripStruct(t *testing.T) {
	type record struct {
		Name    string  `cbor:"name"`
		Count   int64   `cbor:"count"`
		Area    float64 `cbor:"area"`
		Lengths []int64 `cbor:"lengths"`
	}

	original := record{Name: "s1", Count: 3, Area: 12.5, Lengths: []int64{0, 1, 100}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	var decoded record
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Name != original.Name || decoded.Count != original.Count || decoded.Area != original.Area {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
	if len(decoded.Lengths) != 3 || decoded.Lengths[2] != 100 {
		t.Errorf("Lengths = %v, want %v", decoded.Lengths, original.Lengths)
	}
}

func TestDecodeIntoAnyUsesStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"outer": map[string]any{"inner": int64(1)}})
	if err != nil {
		t.Fatal(err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type %T, want map[string]any", decoded)
	}
	if _, ok := outer["outer"].(map[string]any); !ok {
		t.Fatalf("nested type %T, want map[string]any", outer["outer"])
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for i := 0; i < 3; i++ {
		if err := encoder.Encode(map[string]any{"event_number": int64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	decoder := NewDecoder(&buffer)
	var count int
	for {
		var item map[string]any
		if err := decoder.Decode(&item); err != nil {
			break
		}
		count++
	}
	if count != 3 {
		t.Errorf("decoded %d items, want 3", count)
	}
}
