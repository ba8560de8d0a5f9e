// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for skim.
//
// Configuration is loaded from a single YAML file specified by:
//   - SKIM_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides: the
// cache path list in particular determines which artifact a resolve
// finds first, so it must come from exactly one place.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for skim.
type Config struct {
	// Root is the base directory for skim data. Used to derive the
	// default cache and raw-data paths.
	Root string `yaml:"root"`

	// CachePaths is the ordered list of directories searched for
	// cached artifacts. Reads try each in order and stop at the first
	// directory containing a file with the artifact's name. Writes
	// always target the first directory, which guarantees that the
	// next resolve finds exactly the file just written.
	CachePaths []string `yaml:"cache_paths"`

	// RawDataPaths is the ordered list of directories searched for
	// raw event data and run metadata.
	RawDataPaths []string `yaml:"raw_data_paths"`

	// VersionPolicy governs whether a cached artifact's recorded
	// upstream version is acceptable. "latest" requires it to be at
	// least the raw data's own builder version; "loose" accepts any;
	// any other value is an exact builder version to match.
	VersionPolicy string `yaml:"version_policy"`

	// Snapshot enables writing a fast-reload snapshot sidecar next to
	// every newly materialized artifact.
	Snapshot bool `yaml:"snapshot"`

	// CreatedBy overrides the user identity recorded in artifact
	// metadata. Defaults to user@hostname.
	CreatedBy string `yaml:"created_by"`
}

// Default returns the default configuration. These defaults are a base
// for the config file to override; loading without a file is fine for
// local analysis use.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "skim")

	return &Config{
		Root:          defaultRoot,
		CachePaths:    []string{filepath.Join(defaultRoot, "artifacts")},
		RawDataPaths:  []string{filepath.Join(defaultRoot, "raw")},
		VersionPolicy: "latest",
	}
}

// Load loads configuration from the file named by SKIM_CONFIG, or
// returns the defaults if SKIM_CONFIG is not set.
func Load() (*Config, error) {
	configPath := os.Getenv("SKIM_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The file is
// the single source of truth; environment variables do not override
// config values. The only expansion performed is ${HOME} and similar
// path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in all
// path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"SKIM_ROOT": c.Root,
		"HOME":      os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["SKIM_ROOT"] = c.Root // update for dependent paths

	for i, path := range c.CachePaths {
		c.CachePaths[i] = expandVars(path, vars)
	}
	for i, path := range c.RawDataPaths {
		c.RawDataPaths[i] = expandVars(path, vars)
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if len(c.CachePaths) == 0 {
		errs = append(errs, fmt.Errorf("cache_paths must list at least one directory"))
	}
	for i, path := range c.CachePaths {
		if path == "" {
			errs = append(errs, fmt.Errorf("cache_paths[%d] is empty", i))
		}
	}
	if len(c.RawDataPaths) == 0 {
		errs = append(errs, fmt.Errorf("raw_data_paths must list at least one directory"))
	}
	if c.VersionPolicy == "" {
		errs = append(errs, fmt.Errorf("version_policy is required (latest, loose, or an exact builder version)"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsureCachePath creates the primary (first) cache directory if it
// does not exist. The remaining cache paths are read-only search
// locations and are not created.
func (c *Config) EnsureCachePath() error {
	if len(c.CachePaths) == 0 {
		return fmt.Errorf("no cache paths configured")
	}
	if err := os.MkdirAll(c.CachePaths[0], 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.CachePaths[0], err)
	}
	return nil
}
