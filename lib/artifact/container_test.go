// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opendetector/skim/lib/table"
)

func testMetadata() Metadata {
	return Metadata{
		ProducerVersion: "0.2.0",
		UpstreamVersion: "6.0.1",
		CreatedBy:       "analyst@workstation",
		Documentation:   "Basic information needed in most analyses.",
		CreatedAt:       time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC),
	}
}

func testTable(t *testing.T, rows int) *table.Table {
	t.Helper()
	builder := table.NewBuilder(0)
	for i := 0; i < rows; i++ {
		seq := make([]float64, i%3)
		for j := range seq {
			seq[j] = float64(i) + float64(j)/10
		}
		row := table.Row{
			"event_number": int64(i),
			"s1":           100.5 + float64(i),
			"hit_areas":    seq,
		}
		if err := builder.Append(row); err != nil {
			t.Fatal(err)
		}
	}
	tbl, err := builder.Finish()
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename("run_03141", "Basics"))

	original := testTable(t, 250)
	if err := WriteFile(path, original, testMetadata()); err != nil {
		t.Fatal(err)
	}

	loaded, meta, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if meta.ProducerVersion != "0.2.0" || meta.UpstreamVersion != "6.0.1" {
		t.Errorf("metadata = %+v", meta)
	}
	if !meta.CreatedAt.Equal(testMetadata().CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", meta.CreatedAt, testMetadata().CreatedAt)
	}
	if loaded.NumRows() != original.NumRows() {
		t.Fatalf("rows = %d, want %d", loaded.NumRows(), original.NumRows())
	}

	wantColumns, gotColumns := original.ColumnNames(), loaded.ColumnNames()
	for i := range wantColumns {
		if gotColumns[i] != wantColumns[i] {
			t.Fatalf("columns = %v, want %v", gotColumns, wantColumns)
		}
	}

	s1Original, _ := original.Column("s1")
	s1Loaded, _ := loaded.Column("s1")
	for i := range s1Original.Floats {
		if s1Loaded.Floats[i] != s1Original.Floats[i] {
			t.Fatalf("s1[%d] = %v, want %v", i, s1Loaded.Floats[i], s1Original.Floats[i])
		}
	}
}

func TestSequenceRoundTripLengths(t *testing.T) {
	// Per-row sequence lengths 0, 1, and 100 must survive exactly.
	lengths := []int{0, 1, 100}
	builder := table.NewBuilder(0)
	for i, length := range lengths {
		seq := make([]float64, length)
		for j := range seq {
			seq[j] = float64(i*1000 + j)
		}
		if err := builder.Append(table.Row{"event_number": int64(i), "areas": seq}); err != nil {
			t.Fatal(err)
		}
	}
	tbl, err := builder.Finish()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), Filename("run_00001", "Areas"))
	if err := WriteFile(path, tbl, testMetadata()); err != nil {
		t.Fatal(err)
	}
	loaded, _, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	column, ok := loaded.Column("areas")
	if !ok {
		t.Fatal("areas column missing after round trip")
	}
	for i, length := range lengths {
		if len(column.FloatSeqs[i]) != length {
			t.Errorf("row %d: sequence length %d, want %d", i, len(column.FloatSeqs[i]), length)
		}
		for j, v := range column.FloatSeqs[i] {
			if v != float64(i*1000+j) {
				t.Errorf("row %d element %d = %v, want %v", i, j, v, float64(i*1000+j))
			}
		}
	}
}

func TestReadMetadataOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), Filename("run_03141", "Basics"))
	if err := WriteFile(path, testTable(t, 50), testMetadata()); err != nil {
		t.Fatal(err)
	}

	meta, err := ReadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}
	if meta.CreatedBy != "analyst@workstation" {
		t.Errorf("CreatedBy = %q", meta.CreatedBy)
	}
	if meta.Documentation == "" {
		t.Error("Documentation lost")
	}
}

func TestReadMetadataMissingFile(t *testing.T) {
	_, err := ReadMetadata(filepath.Join(t.TempDir(), "absent.skim"))
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestReadRejectsCorruptMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.skim")
	if err := os.WriteFile(path, []byte("ROOTROOTROOTROOT"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadFile(path); err == nil || !strings.Contains(err.Error(), "magic") {
		t.Errorf("err = %v, want invalid magic", err)
	}
}

func TestReadDetectsCorruptPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.skim")
	if err := WriteFile(path, testTable(t, 100), testMetadata()); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte near the end (inside a column payload).
	raw[len(raw)-1] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := ReadFile(path); err == nil {
		t.Error("expected checksum or decode error for corrupt payload")
	}
}

func TestWriteLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename("run_00002", "Basics"))
	if err := WriteFile(path, testTable(t, 10), testMetadata()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contains %v, want only the artifact", names)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SnapshotFilename("run_03141", "Basics"))

	original := testTable(t, 40)
	if err := WriteSnapshot(path, original, testMetadata()); err != nil {
		t.Fatal(err)
	}

	loaded, meta, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.NumRows() != 40 {
		t.Errorf("rows = %d, want 40", loaded.NumRows())
	}
	if meta.ProducerVersion != "0.2.0" {
		t.Errorf("snapshot metadata = %+v", meta)
	}
}

func TestFilenameIsPureAndDistinct(t *testing.T) {
	if Filename("run_03141", "Basics") != Filename("run_03141", "Basics") {
		t.Error("Filename is not deterministic")
	}
	if Filename("run_03141", "Basics") == Filename("run_03141", "Fundamentals") {
		t.Error("distinct producers collide")
	}
	if Filename("run_03141", "Basics") == Filename("run_03142", "Basics") {
		t.Error("distinct runs collide")
	}
}

func TestSectionSizeLimit(t *testing.T) {
	if err := checkSectionSize(maxSectionSize); err != nil {
		t.Errorf("size at the format limit rejected: %v", err)
	}
	if err := checkSectionSize(maxSectionSize + 1); err == nil {
		t.Error("expected rejection of a payload the uint32 size field cannot record")
	}
}

func TestFloatBitPatternsPreserved(t *testing.T) {
	builder := table.NewBuilder(0)
	values := []float64{0, math.NaN(), math.Inf(1), math.Inf(-1), -0.0, 1e-300}
	for i, v := range values {
		if err := builder.Append(table.Row{"event_number": int64(i), "x": v}); err != nil {
			t.Fatal(err)
		}
	}
	tbl, err := builder.Finish()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "bits.skim")
	if err := WriteFile(path, tbl, testMetadata()); err != nil {
		t.Fatal(err)
	}
	loaded, _, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	column, _ := loaded.Column("x")
	for i, want := range values {
		got := column.Floats[i]
		if math.Float64bits(got) != math.Float64bits(want) {
			t.Errorf("row %d: bits %016x, want %016x", i, math.Float64bits(got), math.Float64bits(want))
		}
	}
}
