// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/opendetector/skim/lib/codec"
)

const (
	eventsSuffix   = ".events.cbor"
	metadataSuffix = ".metadata.json"
)

// DirSource reads runs from a set of directories. Each run is a pair
// of files named after the run: <run>.events.cbor, a CBOR sequence of
// events, and <run>.metadata.json, the processing metadata (JSON with
// comments permitted). Directories are searched in order and the
// first one containing the run wins.
type DirSource struct {
	dirs []string
}

// NewDirSource creates a source over the given raw data directories.
func NewDirSource(dirs ...string) (*DirSource, error) {
	if len(dirs) == 0 {
		return nil, errors.New("source: no raw data directories configured")
	}
	return &DirSource{dirs: dirs}, nil
}

// findFile locates run's file with the given suffix across the
// configured directories.
func (s *DirSource) findFile(run, suffix string) (string, error) {
	for _, dir := range s.dirs {
		path := filepath.Join(dir, run+suffix)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("source: stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("source: %w: %s", ErrNotFound, run)
}

// Events streams the run's events in stored order. The fields hint is
// ignored: the directory format stores whole events and decoding is
// cheap relative to extraction.
func (s *DirSource) Events(ctx context.Context, run string, fields []string, fn func(*Event) error) error {
	path, err := s.findFile(run, eventsSuffix)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	decoder := codec.NewDecoder(f)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var event Event
		if err := decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("source: decode event in %s: %w", path, err)
		}
		if err := fn(&event); err != nil {
			return err
		}
	}
}

// Metadata reads the run's processing metadata document.
func (s *DirSource) Metadata(run string) (RunMetadata, error) {
	path, err := s.findFile(run, metadataSuffix)
	if err != nil {
		return RunMetadata{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return RunMetadata{}, fmt.Errorf("source: read %s: %w", path, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(jsonc.ToJSON(raw), &meta); err != nil {
		return RunMetadata{}, fmt.Errorf("source: parse %s: %w", path, err)
	}
	return meta, nil
}

// Resolve maps a run reference to a canonical run name. Names pass
// through unchanged; numeric references are matched against the
// trailing run number of the available runs.
func (s *DirSource) Resolve(ref string) (string, error) {
	parsed, err := ParseRunRef(ref)
	if err != nil {
		return "", err
	}
	if !parsed.IsNumeric() {
		return parsed.Name, nil
	}

	runs, err := s.runs()
	if err != nil {
		return "", err
	}
	for _, run := range runs {
		if numberFromName(run) == parsed.Number {
			return run, nil
		}
	}
	return "", fmt.Errorf("source: %w: run number %d", ErrNotFound, parsed.Number)
}

// runs lists the run names available across all directories, sorted
// and deduplicated.
func (s *DirSource) runs() ([]string, error) {
	seen := make(map[string]bool)
	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("source: read directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasSuffix(name, eventsSuffix) {
				seen[strings.TrimSuffix(name, eventsSuffix)] = true
			}
		}
	}

	runs := make([]string, 0, len(seen))
	for run := range seen {
		runs = append(runs, run)
	}
	sort.Strings(runs)
	return runs, nil
}
