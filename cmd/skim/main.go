// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

// Command skim materializes, inspects, and combines derived-data
// artifacts from raw per-event detector data.
//
// Usage:
//
//	skim make <run>... --producer <name> [flags]   materialize artifacts
//	skim load <run>... --producer <name> [flags]   combine into one table
//	skim show <artifact-file> [--diag]             print artifact metadata
//	skim producers                                 list registered producers
//	skim version                                   print build information
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/opendetector/skim/lib/artifact"
	"github.com/opendetector/skim/lib/cache"
	"github.com/opendetector/skim/lib/codec"
	"github.com/opendetector/skim/lib/config"
	"github.com/opendetector/skim/lib/registry"
	"github.com/opendetector/skim/lib/source"
	"github.com/opendetector/skim/lib/version"

	// Baseline producers register themselves at import.
	_ "github.com/opendetector/skim/lib/producers"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "skim:", err)
		os.Exit(1)
	}
}

const usage = `usage: skim <command> [flags]

commands:
  make        materialize artifacts for runs and a producer
  load        combine runs and producers into one table
  show        print a stored artifact's metadata
  producers   list registered producers
  version     print build information`

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return errors.New("no command given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "make":
		return runMake(ctx, args[1:])
	case "load":
		return runLoad(ctx, args[1:])
	case "show":
		return runShow(args[1:])
	case "producers":
		return runProducers()
	case "version":
		fmt.Println(version.Full())
		return nil
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags registers the flags every data command shares and
// returns pointers to their values.
func commonFlags(fs *pflag.FlagSet) (configPath *string, verbose *bool) {
	configPath = fs.String("config", "", "configuration file (default: $SKIM_CONFIG)")
	verbose = fs.BoolP("verbose", "v", false, "enable debug logging")
	return configPath, verbose
}

// setup loads configuration and builds the cache the data commands
// operate through.
func setup(configPath string, verbose bool) (*cache.Cache, *slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureCachePath(); err != nil {
		return nil, nil, err
	}

	src, err := source.NewDirSource(cfg.RawDataPaths...)
	if err != nil {
		return nil, nil, err
	}

	c, err := cache.New(cache.Params{
		CachePaths: cfg.CachePaths,
		Source:     src,
		Policy:     cache.ParsePolicy(cfg.VersionPolicy),
		CreatedBy:  cfg.CreatedBy,
		Snapshot:   cfg.Snapshot,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, logger, nil
}

func runMake(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("make", pflag.ContinueOnError)
	configPath, verbose := commonFlags(fs)
	producers := fs.StringSlice("producer", nil, "producer to materialize (repeatable)")
	force := fs.Bool("force", false, "re-extract even if a fresh artifact exists")
	snapshot := fs.Bool("snapshot", false, "also write a fast-reload snapshot sidecar")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runs := fs.Args()
	if len(runs) == 0 {
		return errors.New("make: no runs given")
	}
	if len(*producers) == 0 {
		return errors.New("make: --producer is required")
	}

	c, logger, err := setup(*configPath, *verbose)
	if err != nil {
		return err
	}

	for _, run := range runs {
		for _, producer := range *producers {
			path, tbl, err := c.Get(ctx, run, producer, cache.GetOptions{
				ForceReload: *force,
				Snapshot:    *snapshot,
			})
			if err != nil {
				return err
			}
			logger.Info("artifact ready",
				"run", run, "producer", producer, "rows", tbl.NumRows(), "path", path)
		}
	}
	return nil
}

func runLoad(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("load", pflag.ContinueOnError)
	configPath, verbose := commonFlags(fs)
	producers := fs.StringSlice("producer", nil, "producer to include (repeatable)")
	force := fs.Bool("force", false, "re-extract everything before loading")
	out := fs.String("out", "", "write the combined table to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runs := fs.Args()
	if len(runs) == 0 {
		return errors.New("load: no runs given")
	}

	c, _, err := setup(*configPath, *verbose)
	if err != nil {
		return err
	}

	tbl, err := c.Load(ctx, runs, *producers, cache.LoadOptions{ForceReload: *force})
	if err != nil {
		return err
	}

	fmt.Printf("%d rows, %d columns\n", tbl.NumRows(), tbl.NumColumns())
	for _, schema := range tbl.Schema() {
		fmt.Printf("  %-32s %s %s\n", schema.Name, schema.Kind, schema.Type)
	}

	if *out != "" {
		meta := artifact.Metadata{
			CreatedBy:     "skim load",
			Documentation: fmt.Sprintf("combined table: runs %s", strings.Join(runs, ", ")),
		}
		if err := artifact.WriteSnapshot(*out, tbl, meta); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *out)
	}
	return nil
}

func runShow(args []string) error {
	fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
	diag := fs.Bool("diag", false, "print the raw metadata section in CBOR diagnostic notation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("show: exactly one artifact file expected")
	}
	path := fs.Arg(0)

	if *diag {
		raw, err := artifact.ReadMetadataBytes(path)
		if err != nil {
			return err
		}
		text, err := codec.Diagnose(raw)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	meta, err := artifact.ReadMetadata(path)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func runProducers() error {
	names := registry.Names()
	if len(names) == 0 {
		return errors.New("no producers registered")
	}
	for _, name := range names {
		d, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-24s %-8s %s\n", d.Name, d.Version, d.Doc)
	}
	return nil
}
