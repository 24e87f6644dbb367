// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-shade/internal/assembler"
	"github.com/petar-djukic/go-shade/pkg/types"
)

func sample() *Report {
	g := types.GraphFromAdjacency(map[string][]string{
		"com/acme/Api":     {"com/acme/Missing", "java/lang/Object"},
		"com/acme/Missing": nil,
	})
	res := &assembler.Result{
		Path:     "out/shaded.jar",
		Size:     2048,
		Digest:   "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Included: []string{"com/acme/Api"},
		Missing: []types.MissingEntry{
			{Name: "com/acme/Ghost", Kind: types.Unresolved, EntryPoint: true},
			{Name: "com/acme/Missing", Kind: types.MissingBytes, Via: "com/acme/Api"},
		},
		Provided: []string{"java/lang/Object"},
	}
	return New(types.NewClassSet("com/acme/Api", "com/acme/Ghost"), g, res)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().WriteSummary(&buf))

	out := buf.String()
	assert.Contains(t, out, "out/shaded.jar (2.0 kB, blake3 0123456789ab)")
	assert.Contains(t, out, "Entry points: 2")
	assert.Contains(t, out, "Graph:        2 classes, 2 edges")
	assert.Contains(t, out, "2 classes which should have been included")
	assert.Contains(t, out, "  com/acme/Ghost (unresolved; entry point)\n")
	assert.Contains(t, out, "  com/acme/Missing (missing; reachable from com/acme/Api)\n")
	assert.NotContains(t, out, "Duplicates")
}

func TestWriteSummary_Clean(t *testing.T) {
	r := New(types.NewClassSet("A"), types.GraphFromAdjacency(map[string][]string{"A": nil}),
		&assembler.Result{Path: "a.jar", Included: []string{"A"}, Duplicates: []string{"A"}})
	assert.True(t, r.OK())

	var buf bytes.Buffer
	require.NoError(t, r.WriteSummary(&buf))
	assert.NotContains(t, buf.String(), "should have been included")
	assert.Contains(t, buf.String(), "Duplicates:   1 classes")
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "report")
	r := sample()
	assert.False(t, r.OK())
	require.NoError(t, r.Write(dir))

	var entryPoints []string
	readJSON(t, filepath.Join(dir, EntryPointsFile), &entryPoints)
	assert.Equal(t, []string{"com/acme/Api", "com/acme/Ghost"}, entryPoints)

	var tree map[string][]string
	readJSON(t, filepath.Join(dir, ClassTreeFile), &tree)
	assert.Equal(t, []string{"com/acme/Missing", "java/lang/Object"}, tree["com/acme/Api"])

	var decoded map[string]any
	readJSON(t, filepath.Join(dir, ReportFile), &decoded)
	assert.Equal(t, "out/shaded.jar", decoded["archive"])
	missing := decoded["missing"].([]any)
	require.Len(t, missing, 2)
	assert.Equal(t, map[string]any{"name": "com/acme/Ghost", "kind": "unresolved", "entryPoint": true}, missing[0])
	assert.Equal(t, map[string]any{"name": "com/acme/Missing", "kind": "missing", "via": "com/acme/Api"}, missing[1])
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
