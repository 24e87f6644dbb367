// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package graph merges per-artifact dependency graphs and computes the
// classes reachable from the entry points.
package graph

import (
	"github.com/petar-djukic/go-shade/pkg/types"
)

// Merge unions the edge sets of graphs key by key into a new graph. The
// inputs are not modified. The result does not depend on argument order.
func Merge(graphs ...types.DependencyGraph) types.DependencyGraph {
	out := make(types.DependencyGraph)
	for _, g := range graphs {
		for from, deps := range g {
			out.AddNode(from)
			out[from].AddAll(deps)
		}
	}
	return out
}

// MergeEntryPoints unions entry point sets into a new set.
func MergeEntryPoints(sets ...types.ClassSet) types.ClassSet {
	out := make(types.ClassSet)
	for _, s := range sets {
		out.AddAll(s)
	}
	return out
}

// Closure is the result of a reachability traversal.
type Closure struct {
	Members     types.ClassSet
	EntryPoints types.ClassSet

	// Order is the breadth-first visit order and Parent the class each
	// member was first reached from. Both are for diagnostics only.
	Order  []string
	Parent map[string]string
}

// Has reports whether name is in the closure.
func (c *Closure) Has(name string) bool {
	return c.Members.Has(name)
}

// Sorted returns the members in lexical order.
func (c *Closure) Sorted() []string {
	return c.Members.Sorted()
}

// Path returns the chain of classes from an entry point to name, entry
// point first, or nil when name is not a member.
func (c *Closure) Path(name string) []string {
	if !c.Has(name) {
		return nil
	}
	var path []string
	for cur, ok := name, true; ok; cur, ok = c.Parent[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Reachable performs a breadth-first traversal of g from entryPoints. A
// class with no key in g is a leaf. Every class is visited once, so cycles
// terminate.
func Reachable(g types.DependencyGraph, entryPoints types.ClassSet) *Closure {
	c := &Closure{
		Members:     make(types.ClassSet),
		EntryPoints: make(types.ClassSet),
		Parent:      make(map[string]string),
	}
	c.EntryPoints.AddAll(entryPoints)

	// Index-based FIFO queue; the head advances instead of reslicing.
	queue := entryPoints.Sorted()
	for _, e := range queue {
		c.Members.Add(e)
	}
	for head := 0; head < len(queue); head++ {
		current := queue[head]
		c.Order = append(c.Order, current)
		for _, dep := range g.Edges(current) {
			if c.Members.Has(dep) {
				continue
			}
			c.Members.Add(dep)
			c.Parent[dep] = current
			queue = append(queue, dep)
		}
	}
	return c
}
