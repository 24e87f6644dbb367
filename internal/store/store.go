// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package store persists per-artifact analyses as intermediate directories
// that the assembly stage, or another tool, can consume.
//
// Layout of one directory:
//
//	classes/<name>.class     rewritten class files
//	classTree.<format>       {version, classes: {name: [deps]}}
//	entryPoints.<format>     {version, entryPoints: [names]}
//	MANIFEST.MF              manifest pass-through, when present
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/petar-djukic/go-shade/pkg/types"
)

// SchemaVersion is the version stamped into graph and entry point files.
const SchemaVersion = 1

const (
	ClassesDir      = "classes"
	ClassTreeName   = "classTree"
	EntryPointsName = "entryPoints"
	ManifestName    = "MANIFEST.MF"
)

var (
	ErrUnknownFormat     = errors.New("unknown intermediate format")
	ErrUnsupportedSchema = errors.New("unsupported intermediate schema version")
	ErrNotIntermediate   = errors.New("not an intermediate directory")
)

// ClassTree is the persisted dependency graph.
type ClassTree struct {
	Version int                 `json:"version" cbor:"version"`
	Classes map[string][]string `json:"classes" cbor:"classes"`
}

// EntryPoints is the persisted entry point set.
type EntryPoints struct {
	Version     int      `json:"version" cbor:"version"`
	EntryPoints []string `json:"entryPoints" cbor:"entryPoints"`
}

// Write replaces the contents of dir with the analysis.
func Write(dir string, a *types.Analysis, format Format) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	classes := filepath.Join(dir, ClassesDir)
	if err := os.MkdirAll(classes, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", classes, err)
	}

	for _, name := range sortedKeys(a.Classes) {
		p := filepath.Join(classes, filepath.FromSlash(types.EntryPath(name)))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, a.Classes[name], 0o644); err != nil {
			return fmt.Errorf("writing class %s: %w", name, err)
		}
	}

	tree := ClassTree{Version: SchemaVersion, Classes: a.Graph.Adjacency()}
	if err := writeEncoded(dir, ClassTreeName, format, tree); err != nil {
		return err
	}
	entries := EntryPoints{Version: SchemaVersion, EntryPoints: a.EntryPoints.Sorted()}
	if err := writeEncoded(dir, EntryPointsName, format, entries); err != nil {
		return err
	}

	if a.Manifest != nil {
		if err := os.WriteFile(filepath.Join(dir, ManifestName), a.Manifest, 0o644); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}
	return nil
}

func writeEncoded(dir, base string, format Format, v any) error {
	data, err := format.marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", base, err)
	}
	p := filepath.Join(dir, base+"."+string(format))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// Dir is a loaded intermediate directory. Class bytes are read on demand.
type Dir struct {
	Path        string
	Format      Format
	Graph       types.DependencyGraph
	EntryPoints types.ClassSet
	Manifest    []byte
}

// Load reads the graph, entry points and manifest of an intermediate
// directory, detecting its format.
func Load(dir string) (*Dir, error) {
	format, err := detect(dir)
	if err != nil {
		return nil, err
	}
	d := &Dir{Path: dir, Format: format}

	var tree ClassTree
	if err := readEncoded(dir, ClassTreeName, format, &tree); err != nil {
		return nil, err
	}
	if tree.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %s has version %d", ErrUnsupportedSchema, ClassTreeName, tree.Version)
	}
	d.Graph = types.GraphFromAdjacency(tree.Classes)

	var entries EntryPoints
	if err := readEncoded(dir, EntryPointsName, format, &entries); err != nil {
		return nil, err
	}
	if entries.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %s has version %d", ErrUnsupportedSchema, EntryPointsName, entries.Version)
	}
	d.EntryPoints = types.NewClassSet(entries.EntryPoints...)

	manifest, err := os.ReadFile(filepath.Join(dir, ManifestName))
	switch {
	case err == nil:
		d.Manifest = manifest
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return d, nil
}

func detect(dir string) (Format, error) {
	for _, f := range formats {
		if _, err := os.Stat(filepath.Join(dir, ClassTreeName+"."+string(f))); err == nil {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s has no %s file", ErrNotIntermediate, dir, ClassTreeName)
}

func readEncoded(dir, base string, format Format, v any) error {
	p := filepath.Join(dir, base+"."+string(format))
	data, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}
	if err := format.unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", p, err)
	}
	return nil
}

// Lookup returns the rewritten bytes of the named class. A class without a
// file is reported as absent, not as an error.
func (d *Dir) Lookup(name string) ([]byte, bool, error) {
	if !types.ValidClassName(name) {
		return nil, false, nil
	}
	p := filepath.Join(d.Path, ClassesDir, filepath.FromSlash(types.EntryPath(name)))
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading class %s: %w", name, err)
	}
	return data, true, nil
}

func sortedKeys(m map[string][]byte) []string {
	set := make(types.ClassSet, len(m))
	for k := range m {
		set.Add(k)
	}
	return set.Sorted()
}
