// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shader implements the shading orchestrator, wiring analysis,
// intermediate storage, reachability, assembly, reporting and publishing.
package shader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/petar-djukic/go-shade/internal/analyzer"
	"github.com/petar-djukic/go-shade/internal/assembler"
	"github.com/petar-djukic/go-shade/internal/graph"
	"github.com/petar-djukic/go-shade/internal/policy"
	"github.com/petar-djukic/go-shade/internal/publish"
	"github.com/petar-djukic/go-shade/internal/report"
	"github.com/petar-djukic/go-shade/internal/store"
	"github.com/petar-djukic/go-shade/pkg/types"
)

// RunResult holds the outcome of an assembly. This is the internal result
// type; pkg/shade converts it to the public Result.
type RunResult struct {
	Archive          string
	Digest           string
	Size             int64
	Included         []string
	Missing          []types.MissingEntry
	Provided         []string
	Duplicates       []string
	IntermediateDirs []string
	Report           *report.Report
}

// Deps holds injected dependencies for the runner.
type Deps struct {
	Policy    policy.RenamePolicy
	CacheSize int          // Classifier cache entries, 0 for the default
	WorkDir   string       // Root of the intermediate directories
	Format    store.Format // Intermediate encoding
	Workers   int          // Parallel analyses, 0 for NumCPU

	Output      string // Archive path
	ReceiptFile string // Build receipt on disk
	ReceiptPath string // Archive path of the build receipt
	ReportDir   string // Report files are skipped when empty

	Publisher publish.Publisher // Optional
	Summary   io.Writer         // Human-readable summary, optional
	Logger    *slog.Logger
}

// Runner orchestrates the shading lifecycle.
type Runner struct {
	deps     Deps
	analyzer *analyzer.Analyzer
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) (*Runner, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Format == "" {
		deps.Format = store.JSON
	}
	classifier, err := policy.NewClassifier(deps.Policy, deps.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Runner{deps: deps, analyzer: analyzer.New(classifier, deps.Logger)}, nil
}

// Analyze analyzes inputs in parallel and writes one intermediate directory
// per input, named "<nnn>-<artifact>" under WorkDir. It returns the
// directories in input order.
func (r *Runner) Analyze(ctx context.Context, inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input artifacts")
	}
	results, err := r.analyzer.AnalyzeAll(ctx, inputs, r.deps.Workers)
	if err != nil {
		return nil, err
	}

	dirs := make([]string, len(results))
	for i, res := range results {
		dirs[i] = filepath.Join(r.deps.WorkDir, fmt.Sprintf("%03d-%s", i+1, artifactName(res.Artifact)))
		if err := store.Write(dirs[i], res, r.deps.Format); err != nil {
			return nil, fmt.Errorf("storing analysis of %s: %w", res.Artifact, err)
		}
	}
	return dirs, nil
}

// Assemble merges the intermediate directories, computes the closure of
// their entry points and writes the archive, the report and publications.
func (r *Runner) Assemble(ctx context.Context, dirs []string) (*RunResult, error) {
	result := &RunResult{IntermediateDirs: dirs}

	// Step 1: Load intermediate directories.
	loaded := make([]*store.Dir, 0, len(dirs))
	for _, d := range dirs {
		sd, err := store.Load(d)
		if err != nil {
			return result, fmt.Errorf("loading %s: %w", d, err)
		}
		loaded = append(loaded, sd)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Step 2: Merge graphs and entry points.
	graphs := make([]types.DependencyGraph, len(loaded))
	entrySets := make([]types.ClassSet, len(loaded))
	sources := make([]assembler.ClassSource, len(loaded))
	var manifest []byte
	for i, sd := range loaded {
		graphs[i] = sd.Graph
		entrySets[i] = sd.EntryPoints
		sources[i] = sd
		if manifest == nil {
			manifest = sd.Manifest
		}
	}
	merged := graph.Merge(graphs...)
	entryPoints := graph.MergeEntryPoints(entrySets...)

	// Step 3: Compute the reachable closure.
	closure := graph.Reachable(merged, entryPoints)
	r.deps.Logger.Debug("computed closure",
		"entryPoints", len(entryPoints),
		"graph", len(merged),
		"reachable", len(closure.Members))

	// Step 4: Write the archive.
	receipt, err := os.ReadFile(r.deps.ReceiptFile)
	if err != nil {
		return result, fmt.Errorf("reading build receipt: %w", err)
	}
	res, err := assembler.Assemble(ctx, closure, assembler.Options{
		Output:   r.deps.Output,
		Manifest: manifest,
		Receipt:  assembler.Entry{Path: r.deps.ReceiptPath, Data: receipt},
		Sources:  sources,
		Graph:    merged,
		Logger:   r.deps.Logger,
	})
	if err != nil {
		return result, err
	}
	result.Archive = res.Path
	result.Digest = res.Digest
	result.Size = res.Size
	result.Included = res.Included
	result.Missing = res.Missing
	result.Provided = res.Provided
	result.Duplicates = res.Duplicates

	// Step 5: Report.
	rep := report.New(entryPoints, merged, res)
	result.Report = rep
	if r.deps.Summary != nil {
		if err := rep.WriteSummary(r.deps.Summary); err != nil {
			return result, fmt.Errorf("writing summary: %w", err)
		}
	}
	if r.deps.ReportDir != "" {
		if err := rep.Write(r.deps.ReportDir); err != nil {
			return result, fmt.Errorf("writing report: %w", err)
		}
	}

	// Step 6: Publish.
	if r.deps.Publisher != nil {
		err := r.deps.Publisher.Publish(ctx, publish.Publication{
			Archive:   res.Path,
			Digest:    res.Digest,
			ReportDir: r.deps.ReportDir,
		})
		if err != nil {
			return result, fmt.Errorf("publishing: %w", err)
		}
	}

	return result, nil
}

// Run analyzes inputs and assembles the archive.
func (r *Runner) Run(ctx context.Context, inputs []string) (*RunResult, error) {
	dirs, err := r.Analyze(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return r.Assemble(ctx, dirs)
}

// artifactName derives a directory-safe name from an artifact path.
func artifactName(p string) string {
	base := filepath.Base(filepath.Clean(p))
	if ext := filepath.Ext(base); ext == ".jar" || ext == ".zip" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "artifact"
	}
	return base
}
