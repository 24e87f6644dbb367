// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package assembler writes the output archive: the manifest, the build
// receipt and every reachable class whose bytes some source provides.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/petar-djukic/go-shade/internal/graph"
	"github.com/petar-djukic/go-shade/internal/policy"
	"github.com/petar-djukic/go-shade/pkg/types"
)

// ManifestPath is the archive path of the manifest entry.
const ManifestPath = "META-INF/MANIFEST.MF"

var (
	// ErrOutputWrite is returned when the archive cannot be written. No
	// partial archive is left behind.
	ErrOutputWrite = errors.New("writing output archive failed")

	ErrInvalidOptions = errors.New("invalid assembler options")
)

// ClassSource provides rewritten class bytes by renamed class name.
type ClassSource interface {
	Lookup(name string) ([]byte, bool, error)
}

// Entry is a fixed archive entry.
type Entry struct {
	Path string
	Data []byte
}

// Options configures one assembly.
type Options struct {
	Output   string        // Destination archive path
	Manifest []byte        // Written first when not nil
	Receipt  Entry         // Always written, after the manifest
	Sources  []ClassSource // Consulted in order; the first hit wins
	Graph    types.DependencyGraph

	// Provided reports classes the runtime supplies. Defaults to
	// policy.IsBootstrap.
	Provided func(name string) bool
	Logger   *slog.Logger
}

// Result describes a written archive.
type Result struct {
	Path       string
	Entries    []string             // Archive paths in write order
	Included   []string             // Class names written
	Missing    []types.MissingEntry // Missing and unresolved closure members
	Provided   []string             // Closure members supplied by the runtime
	Duplicates []string             // Classes more than one source provided
	Size       int64
	Digest     string // Hex BLAKE3-256 of the archive
}

func validateOptions(opts Options) error {
	if opts.Output == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidOptions)
	}
	if opts.Receipt.Path == "" {
		return fmt.Errorf("%w: receipt path is required", ErrInvalidOptions)
	}
	if opts.Receipt.Path == ManifestPath {
		return fmt.Errorf("%w: receipt path collides with the manifest", ErrInvalidOptions)
	}
	if _, ok := types.ClassNameFromPath(opts.Receipt.Path); ok {
		return fmt.Errorf("%w: receipt path %s is a class entry", ErrInvalidOptions, opts.Receipt.Path)
	}
	return nil
}

func applyDefaults(opts *Options) {
	if opts.Provided == nil {
		opts.Provided = policy.IsBootstrap
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Graph == nil {
		opts.Graph = make(types.DependencyGraph)
	}
}

// Assemble writes the archive for closure. Closure members without bytes
// do not fail the assembly; they are reported in Result.Missing or
// Result.Provided.
func Assemble(ctx context.Context, closure *graph.Closure, opts Options) (*Result, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	applyDefaults(&opts)

	w, err := newArchiveWriter(opts.Output)
	if err != nil {
		return nil, err
	}
	res, err := writeEntries(ctx, w, closure, opts)
	if err != nil {
		w.abort()
		return nil, err
	}
	if err := w.commit(); err != nil {
		return nil, err
	}

	res.Path = opts.Output
	res.Entries = w.entries
	res.Size = w.size
	res.Digest = w.sum()

	opts.Logger.Info("assembled archive",
		"path", res.Path,
		"classes", len(res.Included),
		"missing", len(res.Missing),
		"provided", len(res.Provided),
		"bytes", res.Size)
	return res, nil
}

func writeEntries(ctx context.Context, w *archiveWriter, closure *graph.Closure, opts Options) (*Result, error) {
	res := &Result{}

	// Step 1: fixed entries.
	if opts.Manifest != nil {
		if err := w.add(ManifestPath, opts.Manifest); err != nil {
			return nil, err
		}
	}
	if err := w.add(opts.Receipt.Path, opts.Receipt.Data); err != nil {
		return nil, err
	}

	// Step 2: closure members in lexical order.
	for _, name := range closure.Sorted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, found, dup, err := lookup(opts.Sources, name)
		if err != nil {
			return nil, err
		}
		if dup {
			res.Duplicates = append(res.Duplicates, name)
			opts.Logger.Warn("class provided by more than one artifact, keeping first", "class", name)
		}
		if !found {
			recordMissing(res, closure, opts, name)
			continue
		}
		if err := w.add(types.EntryPath(name), data); err != nil {
			return nil, err
		}
		res.Included = append(res.Included, name)
	}
	return res, nil
}

// lookup returns the bytes from the first source that has name, and
// whether a later source has it too.
func lookup(sources []ClassSource, name string) (data []byte, found, dup bool, err error) {
	for _, src := range sources {
		d, ok, err := src.Lookup(name)
		if err != nil {
			return nil, false, false, fmt.Errorf("looking up %s: %w", name, err)
		}
		if !ok {
			continue
		}
		if found {
			return data, true, true, nil
		}
		data, found = d, true
	}
	return data, found, false, nil
}

func recordMissing(res *Result, closure *graph.Closure, opts Options, name string) {
	if opts.Provided(name) {
		res.Provided = append(res.Provided, name)
		return
	}
	m := types.MissingEntry{
		Name:       name,
		Kind:       types.Unresolved,
		EntryPoint: closure.EntryPoints.Has(name),
		Via:        closure.Parent[name],
	}
	if _, declared := opts.Graph[name]; declared {
		m.Kind = types.MissingBytes
	}
	res.Missing = append(res.Missing, m)
	opts.Logger.Warn("reachable class not found in any artifact", "class", m.String())
}
