// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// Analysis is the output of analyzing a single input artifact: the
// rewritten class bytes keyed by renamed class name, the adjacency list of
// every retained class, the entry points and the manifest pass-through.
type Analysis struct {
	Artifact    string            // Path of the analyzed artifact
	Graph       DependencyGraph   // Renamed class -> renamed direct dependencies
	EntryPoints ClassSet          // Renamed classes retained regardless of reachability
	Classes     map[string][]byte // Renamed class -> rewritten class file bytes
	Manifest    []byte            // META-INF/MANIFEST.MF contents, nil if absent
}

// NewAnalysis returns an empty analysis for the named artifact.
func NewAnalysis(artifact string) *Analysis {
	return &Analysis{
		Artifact:    artifact,
		Graph:       make(DependencyGraph),
		EntryPoints: make(ClassSet),
		Classes:     make(map[string][]byte),
	}
}

// Lookup returns the rewritten bytes of the named class.
func (a *Analysis) Lookup(name string) ([]byte, bool, error) {
	data, ok := a.Classes[name]
	return data, ok, nil
}
