// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report collects the diagnostics of one assembly: the entry
// points, the merged graph and every reachable class that did not make it
// into the archive.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/petar-djukic/go-shade/internal/assembler"
	"github.com/petar-djukic/go-shade/pkg/types"
)

// File names written by Write.
const (
	EntryPointsFile = "entryPoints.json"
	ClassTreeFile   = "classTree.json"
	ReportFile      = "report.json"
)

// Report is the diagnostic listing of one assembly.
type Report struct {
	Archive     string               `json:"archive"`
	Size        int64                `json:"size"`
	Digest      string               `json:"digest"`
	EntryPoints []string             `json:"entryPoints"`
	GraphSize   int                  `json:"graphSize"`
	EdgeCount   int                  `json:"edgeCount"`
	Included    []string             `json:"included"`
	Missing     []types.MissingEntry `json:"missing"`
	Provided    []string             `json:"provided"`
	Duplicates  []string             `json:"duplicates,omitempty"`

	graph types.DependencyGraph
}

// New builds a report from the merged inputs and the assembly result.
func New(entryPoints types.ClassSet, g types.DependencyGraph, res *assembler.Result) *Report {
	return &Report{
		Archive:     res.Path,
		Size:        res.Size,
		Digest:      res.Digest,
		EntryPoints: entryPoints.Sorted(),
		GraphSize:   len(g),
		EdgeCount:   g.EdgeCount(),
		Included:    nonNil(res.Included),
		Missing:     append([]types.MissingEntry{}, res.Missing...),
		Provided:    nonNil(res.Provided),
		Duplicates:  res.Duplicates,
		graph:       g,
	}
}

// OK reports whether every reachable class outside the runtime was
// included.
func (r *Report) OK() bool {
	return len(r.Missing) == 0
}

// WriteSummary prints a human-readable summary, listing each missing class
// with how it was reached.
func (r *Report) WriteSummary(w io.Writer) error {
	digest := r.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}
	lines := []string{
		fmt.Sprintf("Archive:      %s (%s, blake3 %s)", r.Archive, humanize.Bytes(uint64(r.Size)), digest),
		fmt.Sprintf("Entry points: %s", humanize.Comma(int64(len(r.EntryPoints)))),
		fmt.Sprintf("Graph:        %s classes, %s edges", humanize.Comma(int64(r.GraphSize)), humanize.Comma(int64(r.EdgeCount))),
		fmt.Sprintf("Included:     %s classes", humanize.Comma(int64(len(r.Included)))),
		fmt.Sprintf("Provided:     %s runtime classes", humanize.Comma(int64(len(r.Provided)))),
	}
	if len(r.Duplicates) > 0 {
		lines = append(lines, fmt.Sprintf("Duplicates:   %s classes (first artifact kept)", humanize.Comma(int64(len(r.Duplicates)))))
		for _, d := range r.Duplicates {
			lines = append(lines, "  "+d)
		}
	}
	if len(r.Missing) > 0 {
		lines = append(lines, fmt.Sprintf("There were %d classes which should have been included in the archive but were not:", len(r.Missing)))
		for _, m := range r.Missing {
			lines = append(lines, "  "+m.String())
		}
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// Write stores the entry points, the merged graph and the full report as
// JSON files in dir.
func (r *Report) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	adjacency := map[string][]string{}
	if r.graph != nil {
		adjacency = r.graph.Adjacency()
	}
	files := []struct {
		name string
		v    any
	}{
		{EntryPointsFile, r.EntryPoints},
		{ClassTreeFile, adjacency},
		{ReportFile, r},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
