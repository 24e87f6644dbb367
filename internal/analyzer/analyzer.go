// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package analyzer turns input artifacts into per-artifact analyses:
// rewritten class bytes, a renamed dependency graph and entry points.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/go-shade/internal/classfile"
	"github.com/petar-djukic/go-shade/internal/policy"
	"github.com/petar-djukic/go-shade/pkg/types"
)

// Analyzer analyzes artifacts under one classifier. It holds no per-run
// state and may be shared between goroutines.
type Analyzer struct {
	classifier *policy.Classifier
	logger     *slog.Logger
}

// New returns an analyzer. A nil logger selects slog.Default().
func New(classifier *policy.Classifier, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{classifier: classifier, logger: logger}
}

// Analyze parses, classifies and rewrites every class of art. A malformed
// class aborts the analysis with an error wrapping classfile.ErrMalformed.
func (a *Analyzer) Analyze(art *Artifact) (*types.Analysis, error) {
	drop := a.classifier.Policy().DropIgnored
	result := types.NewAnalysis(art.Path)
	result.Manifest = art.Manifest

	for _, e := range art.Entries {
		cf, err := classfile.Parse(e.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", art.Path, e.Path, err)
		}

		self := a.classifier.Classify(cf.Name())
		if drop && self.Droppable {
			a.logger.Debug("dropping ignored class", "artifact", art.Path, "class", cf.Name())
			continue
		}
		if _, dup := result.Classes[self.Name]; dup {
			a.logger.Warn("duplicate class in artifact, keeping first",
				"artifact", art.Path, "class", self.Name, "entry", e.Path)
			continue
		}

		data, err := cf.Remap(a.classifier.Rename)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", art.Path, e.Path, err)
		}
		result.Classes[self.Name] = data

		// Step 1: record the class even when it references nothing.
		result.Graph.AddNode(self.Name)

		// Step 2: one edge per distinct renamed reference. Edges into
		// dropped classes stay so that reaching one is reported.
		for _, ref := range cf.References() {
			result.Graph.AddEdge(self.Name, a.classifier.Rename(ref))
		}

		// Step 3: entry points.
		if self.EntryPoint {
			result.EntryPoints.Add(self.Name)
		}
	}

	a.logger.Info("analyzed artifact",
		"artifact", art.Path,
		"classes", len(result.Classes),
		"edges", result.Graph.EdgeCount(),
		"entryPoints", len(result.EntryPoints))
	return result, nil
}

// AnalyzeFile opens and analyzes one artifact.
func (a *Analyzer) AnalyzeFile(path string) (*types.Analysis, error) {
	art, err := Open(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(art)
}

// AnalyzeAll analyzes the artifacts at paths in parallel with at most
// workers goroutines; workers <= 0 selects runtime.NumCPU(). Results keep
// the order of paths. The first failure cancels the remaining work.
func (a *Analyzer) AnalyzeAll(ctx context.Context, paths []string, workers int) ([]*types.Analysis, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]*types.Analysis, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.AnalyzeFile(p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
