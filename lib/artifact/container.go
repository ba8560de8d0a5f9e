// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/opendetector/skim/lib/codec"
	"github.com/opendetector/skim/lib/table"
)

// Artifact file format constants.
const (
	formatVersion = 1

	// headerSize is the fixed header: 8-byte magic + 4-byte section
	// count.
	headerSize = 12

	// sectionEntrySize is the size of each section index entry:
	// kind(1) + compression tag(1) + 2 reserved + compressed size(4)
	// + uncompressed size(4) + 4 reserved + blake3 hash(32). The
	// reserved bytes keep the uint32 fields 4-byte aligned and the
	// entry at an 8-byte stride.
	sectionEntrySize = 48

	// maxSectionSize is the largest section payload the uint32 size
	// fields can represent. Larger payloads are rejected at write
	// time rather than silently truncated.
	maxSectionSize = math.MaxUint32
)

// checkSectionSize rejects payloads the index format cannot record.
func checkSectionSize(n int) error {
	if uint64(n) > maxSectionSize {
		return fmt.Errorf("section payload is %d bytes, exceeding the format's %d-byte limit", n, uint64(maxSectionSize))
	}
	return nil
}

// fileMagic is the 8-byte artifact file signature.
var fileMagic = [8]byte{'S', 'K', 'I', 'M', formatVersion, 0, 0, 0}

// Section kinds. Every artifact has exactly one metadata section, one
// schema section, and one section per column, in that order.
type sectionKind uint8

const (
	sectionMetadata sectionKind = 1
	sectionSchema   sectionKind = 2
	sectionColumn   sectionKind = 3
)

// sectionEntry is a decoded section index entry.
type sectionEntry struct {
	kind             sectionKind
	tag              CompressionTag
	compressedSize   uint32
	uncompressedSize uint32
	hash             [32]byte
}

// schemaRecord is the CBOR payload of the schema section. It carries
// the row count so columns can be decoded without consulting any other
// section.
type schemaRecord struct {
	Rows    int64                `cbor:"rows"`
	Columns []table.ColumnSchema `cbor:"columns"`
}

// WriteFile atomically persists a table and its metadata as an
// artifact file. The file is written to a temporary name in the target
// directory and renamed into place, so a reader never observes a
// half-written artifact. The target directory is created if absent.
//
// Column payloads are compressed (float columns with the byte-grouping
// transform, others by probe); metadata and schema sections are stored
// uncompressed so they can be read cheaply during cache resolution.
func WriteFile(path string, tbl *table.Table, meta Metadata) error {
	return writeContainer(path, tbl, meta, true)
}

// WriteSnapshot persists the fast-reload snapshot sidecar: the same
// container format with every section uncompressed. Reload skips all
// decompression at the cost of disk space. The snapshot carries a copy
// of the metadata but never replaces the primary artifact's record.
func WriteSnapshot(path string, tbl *table.Table, meta Metadata) error {
	return writeContainer(path, tbl, meta, false)
}

func writeContainer(path string, tbl *table.Table, meta Metadata, compress bool) error {
	type builtSection struct {
		entry   sectionEntry
		payload []byte
	}

	var sections []builtSection
	add := func(kind sectionKind, uncompressed []byte, floatData bool) error {
		if err := checkSectionSize(len(uncompressed)); err != nil {
			return err
		}
		payload := uncompressed
		tag := CompressionNone
		if compress && kind == sectionColumn {
			var err error
			payload, tag, err = compressAuto(uncompressed, floatData)
			if err != nil {
				return err
			}
		}
		sections = append(sections, builtSection{
			entry: sectionEntry{
				kind:             kind,
				tag:              tag,
				compressedSize:   uint32(len(payload)),
				uncompressedSize: uint32(len(uncompressed)),
				hash:             blake3.Sum256(uncompressed),
			},
			payload: payload,
		})
		return nil
	}

	metaBytes, err := codec.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encoding artifact metadata: %w", err)
	}
	if err := add(sectionMetadata, metaBytes, false); err != nil {
		return err
	}

	schemaBytes, err := codec.Marshal(&schemaRecord{
		Rows:    int64(tbl.NumRows()),
		Columns: tbl.Schema(),
	})
	if err != nil {
		return fmt.Errorf("encoding artifact schema: %w", err)
	}
	if err := add(sectionSchema, schemaBytes, false); err != nil {
		return err
	}

	for _, column := range tbl.Columns() {
		data, floatData := columnBytes(column)
		if err := add(sectionColumn, data, floatData); err != nil {
			return fmt.Errorf("column %q: %w", column.Schema.Name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".skim-write-*")
	if err != nil {
		return fmt.Errorf("creating temp artifact file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	var header [headerSize]byte
	copy(header[0:8], fileMagic[:])
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(sections)))
	if _, err := tmpFile.Write(header[:]); err != nil {
		return fmt.Errorf("writing artifact header: %w", err)
	}

	for i, s := range sections {
		if _, err := tmpFile.Write(encodeSectionEntry(s.entry)); err != nil {
			return fmt.Errorf("writing section %d index entry: %w", i, err)
		}
	}
	for i, s := range sections {
		if _, err := tmpFile.Write(s.payload); err != nil {
			return fmt.Errorf("writing section %d payload: %w", i, err)
		}
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temp artifact file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp artifact file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming artifact to %s: %w", path, err)
	}

	success = true
	return nil
}

func encodeSectionEntry(entry sectionEntry) []byte {
	buffer := make([]byte, sectionEntrySize)
	buffer[0] = byte(entry.kind)
	buffer[1] = byte(entry.tag)
	binary.LittleEndian.PutUint32(buffer[4:8], entry.compressedSize)
	binary.LittleEndian.PutUint32(buffer[8:12], entry.uncompressedSize)
	copy(buffer[16:48], entry.hash[:])
	return buffer
}

func decodeSectionEntry(buffer []byte) (sectionEntry, error) {
	if len(buffer) < sectionEntrySize {
		return sectionEntry{}, fmt.Errorf("section entry too short: %d bytes", len(buffer))
	}
	var entry sectionEntry
	entry.kind = sectionKind(buffer[0])
	entry.tag = CompressionTag(buffer[1])
	entry.compressedSize = binary.LittleEndian.Uint32(buffer[4:8])
	entry.uncompressedSize = binary.LittleEndian.Uint32(buffer[8:12])
	copy(entry.hash[:], buffer[16:48])
	return entry, nil
}

// readIndex reads and validates the header and section index from r.
func readIndex(r io.Reader) ([]sectionEntry, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading artifact header: %w", err)
	}
	if !bytes.Equal(header[0:4], fileMagic[0:4]) {
		return nil, fmt.Errorf("invalid artifact magic: got %q, want %q", header[0:4], fileMagic[0:4])
	}
	if header[4] != formatVersion {
		return nil, fmt.Errorf("unsupported artifact format version %d (this code supports %d)",
			header[4], formatVersion)
	}

	count := binary.LittleEndian.Uint32(header[8:12])
	if count < 2 {
		return nil, fmt.Errorf("artifact has %d sections, expected metadata and schema at minimum", count)
	}

	entries := make([]sectionEntry, count)
	buffer := make([]byte, sectionEntrySize)
	for i := range entries {
		if _, err := io.ReadFull(r, buffer); err != nil {
			return nil, fmt.Errorf("reading section %d index entry: %w", i, err)
		}
		entry, err := decodeSectionEntry(buffer)
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

// readSection decompresses and verifies one section payload.
func readSection(entry sectionEntry, payload []byte) ([]byte, error) {
	data, err := Decompress(payload, entry.tag, int(entry.uncompressedSize))
	if err != nil {
		return nil, err
	}
	if blake3.Sum256(data) != entry.hash {
		return nil, fmt.Errorf("section checksum mismatch (artifact corrupt)")
	}
	return data, nil
}

// ReadFile loads a complete artifact: its metadata and its table.
// Works on both primary artifacts and snapshot sidecars, which share
// the container format.
func ReadFile(path string) (*table.Table, Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("reading artifact %s: %w", path, err)
	}

	reader := bytes.NewReader(raw)
	entries, err := readIndex(reader)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("artifact %s: %w", path, err)
	}

	offset := headerSize + len(entries)*sectionEntrySize
	payloads := make([][]byte, len(entries))
	for i, entry := range entries {
		end := offset + int(entry.compressedSize)
		if end > len(raw) {
			return nil, Metadata{}, fmt.Errorf("artifact %s: section %d extends past end of file", path, i)
		}
		payloads[i] = raw[offset:end]
		offset = end
	}

	var meta Metadata
	var schema schemaRecord
	var columns []*table.Column
	columnIndex := 0

	for i, entry := range entries {
		data, err := readSection(entry, payloads[i])
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("artifact %s section %d: %w", path, i, err)
		}

		switch entry.kind {
		case sectionMetadata:
			if err := codec.Unmarshal(data, &meta); err != nil {
				return nil, Metadata{}, fmt.Errorf("artifact %s: decoding metadata: %w", path, err)
			}
		case sectionSchema:
			if err := codec.Unmarshal(data, &schema); err != nil {
				return nil, Metadata{}, fmt.Errorf("artifact %s: decoding schema: %w", path, err)
			}
		case sectionColumn:
			if columnIndex >= len(schema.Columns) {
				return nil, Metadata{}, fmt.Errorf("artifact %s: more column sections than schema columns", path)
			}
			column, err := decodeColumn(schema.Columns[columnIndex], int(schema.Rows), data)
			if err != nil {
				return nil, Metadata{}, fmt.Errorf("artifact %s: %w", path, err)
			}
			columns = append(columns, column)
			columnIndex++
		default:
			// Unknown section kinds are skipped for forward
			// compatibility.
		}
	}

	if columnIndex != len(schema.Columns) {
		return nil, Metadata{}, fmt.Errorf("artifact %s: %d column sections for %d schema columns",
			path, columnIndex, len(schema.Columns))
	}

	tbl, err := table.FromColumns(columns)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("artifact %s: %w", path, err)
	}
	return tbl, meta, nil
}

// ReadMetadata reads only the metadata section of an artifact. This is
// what cache resolution uses on every request — it never pays for
// decompressing column data.
func ReadMetadata(path string) (Metadata, error) {
	data, err := ReadMetadataBytes(path)
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := codec.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("artifact %s: decoding metadata: %w", path, err)
	}
	return meta, nil
}

// ReadMetadataBytes returns the raw CBOR bytes of an artifact's
// metadata section, verified against its checksum.
func ReadMetadataBytes(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact %s: %w", path, err)
	}
	defer file.Close()

	entries, err := readIndex(file)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}

	offset := int64(headerSize + len(entries)*sectionEntrySize)
	for _, entry := range entries {
		if entry.kind == sectionMetadata {
			payload := make([]byte, entry.compressedSize)
			if _, err := file.ReadAt(payload, offset); err != nil {
				return nil, fmt.Errorf("artifact %s: reading metadata section: %w", path, err)
			}
			data, err := readSection(entry, payload)
			if err != nil {
				return nil, fmt.Errorf("artifact %s: %w", path, err)
			}
			return data, nil
		}
		offset += int64(entry.compressedSize)
	}
	return nil, fmt.Errorf("artifact %s has no metadata section", path)
}
