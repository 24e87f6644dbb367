// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "sort"

// ClassSet is a set of internal class names.
type ClassSet map[string]struct{}

// NewClassSet returns a set holding the given names.
func NewClassSet(names ...string) ClassSet {
	s := make(ClassSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set.
func (s ClassSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s ClassSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// AddAll inserts every member of other.
func (s ClassSet) AddAll(other ClassSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Sorted returns the members in lexical order.
func (s ClassSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DependencyGraph maps a class to the set of classes it references directly.
// Keys are renamed class names of classes present in some artifact; targets
// may name classes no artifact provides.
type DependencyGraph map[string]ClassSet

// AddNode ensures name is a key of the graph.
func (g DependencyGraph) AddNode(name string) {
	if _, ok := g[name]; !ok {
		g[name] = make(ClassSet)
	}
}

// AddEdge records a reference from one class to another. Self references
// are not recorded.
func (g DependencyGraph) AddEdge(from, to string) {
	g.AddNode(from)
	if from == to {
		return
	}
	g[from].Add(to)
}

// Edges returns the direct dependencies of name in lexical order.
func (g DependencyGraph) Edges(name string) []string {
	deps, ok := g[name]
	if !ok {
		return nil
	}
	return deps.Sorted()
}

// Keys returns the graph's classes in lexical order.
func (g DependencyGraph) Keys() []string {
	out := make([]string, 0, len(g))
	for k := range g {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Adjacency returns the graph as a plain map of sorted edge lists, the shape
// used for serialization.
func (g DependencyGraph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g))
	for k, deps := range g {
		out[k] = deps.Sorted()
	}
	return out
}

// GraphFromAdjacency builds a graph from its serialized shape.
func GraphFromAdjacency(adj map[string][]string) DependencyGraph {
	g := make(DependencyGraph, len(adj))
	for k, deps := range adj {
		g.AddNode(k)
		for _, d := range deps {
			g.AddEdge(k, d)
		}
	}
	return g
}

// EdgeCount returns the number of edges in the graph.
func (g DependencyGraph) EdgeCount() int {
	n := 0
	for _, deps := range g {
		n += len(deps)
	}
	return n
}
