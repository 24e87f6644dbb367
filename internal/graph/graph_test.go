// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petar-djukic/go-shade/pkg/types"
)

func graphOf(adj map[string][]string) types.DependencyGraph {
	return types.GraphFromAdjacency(adj)
}

func TestMerge_UnionsEdgeSets(t *testing.T) {
	g1 := graphOf(map[string][]string{"Z": {"A"}})
	g2 := graphOf(map[string][]string{"Z": {"B"}, "A": nil})

	merged := Merge(g1, g2)
	assert.Equal(t, []string{"A", "B"}, merged.Edges("Z"))
	assert.Equal(t, []string{"A", "Z"}, merged.Keys())

	// Inputs are untouched.
	assert.Equal(t, []string{"A"}, g1.Edges("Z"))
	assert.Equal(t, []string{"B"}, g2.Edges("Z"))
}

func TestMerge_AssociativeCommutativeIdempotent(t *testing.T) {
	g1 := graphOf(map[string][]string{"A": {"B"}, "C": {"D"}})
	g2 := graphOf(map[string][]string{"A": {"C"}, "B": nil})
	g3 := graphOf(map[string][]string{"C": {"A", "E"}, "F": {"A"}})

	left := Merge(Merge(g1, g2), g3)
	right := Merge(g1, Merge(g2, g3))
	assert.Equal(t, left, right)
	assert.Equal(t, left, Merge(g3, g1, g2))
	assert.Equal(t, left, Merge(g2, g3, g1))
	assert.Equal(t, left, Merge(left, left))
	assert.Equal(t, g1, Merge(g1, g1))
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge())
	assert.Empty(t, MergeEntryPoints())
}

func TestMergeEntryPoints(t *testing.T) {
	got := MergeEntryPoints(types.NewClassSet("A", "B"), types.NewClassSet("B", "C"))
	assert.Equal(t, []string{"A", "B", "C"}, got.Sorted())
}

func TestReachable(t *testing.T) {
	g := graphOf(map[string][]string{
		"Api":    {"Helper", "Util"},
		"Helper": {"Leaf"},
		"Util":   nil,
		"Unused": {"Helper"},
	})

	c := Reachable(g, types.NewClassSet("Api"))
	assert.Equal(t, []string{"Api", "Helper", "Leaf", "Util"}, c.Sorted())
	assert.Equal(t, []string{"Api", "Helper", "Util", "Leaf"}, c.Order)
	assert.Equal(t, "Api", c.Parent["Helper"])
	assert.Equal(t, "Helper", c.Parent["Leaf"])
	assert.Equal(t, []string{"Api", "Helper", "Leaf"}, c.Path("Leaf"))
	assert.Equal(t, []string{"Api"}, c.Path("Api"))
	assert.Nil(t, c.Path("Unused"))
	assert.False(t, c.Has("Unused"))
}

func TestReachable_CycleVisitsEachOnce(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B"}, "B": {"A"}})

	c := Reachable(g, types.NewClassSet("A"))
	assert.Equal(t, []string{"A", "B"}, c.Order)
	assert.Equal(t, []string{"A", "B"}, c.Sorted())
}

func TestReachable_MissingKeyIsLeaf(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"Missing"}})

	c := Reachable(g, types.NewClassSet("A", "Unknown"))
	assert.Equal(t, []string{"A", "Missing", "Unknown"}, c.Sorted())
	assert.True(t, c.EntryPoints.Has("Unknown"))
	_, hasParent := c.Parent["Unknown"]
	assert.False(t, hasParent)
}

func TestReachable_Monotonic(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"D": {"E"},
		"E": {"A"},
		"F": nil,
	})
	sets := []types.ClassSet{
		types.NewClassSet(),
		types.NewClassSet("A"),
		types.NewClassSet("A", "F"),
		types.NewClassSet("A", "F", "D"),
	}

	for i := 1; i < len(sets); i++ {
		smaller := Reachable(g, sets[i-1])
		larger := Reachable(g, sets[i])
		for m := range smaller.Members {
			assert.True(t, larger.Has(m), "%s lost when growing entry points", m)
		}
	}
}

func TestReachable_OrderIndependent(t *testing.T) {
	g1 := graphOf(map[string][]string{"A": {"B"}, "B": {"C"}})
	g2 := graphOf(map[string][]string{"C": {"D"}, "A": {"E"}})

	c1 := Reachable(Merge(g1, g2), types.NewClassSet("A"))
	c2 := Reachable(Merge(g2, g1), types.NewClassSet("A"))
	assert.Equal(t, c1.Members, c2.Members)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, c1.Sorted())
}

func TestReachable_NoEntryPoints(t *testing.T) {
	c := Reachable(graphOf(map[string][]string{"A": {"B"}}), nil)
	assert.Empty(t, c.Members)
	assert.Empty(t, c.Order)
}
