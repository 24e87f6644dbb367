// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package classfiletest

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
)

// WriteJar writes a JAR at path holding the given entries in path order.
func WriteJar(tb testing.TB, path string, entries map[string][]byte) {
	tb.Helper()
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("creating jar: %v", err)
	}
	defer f.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("adding %s: %v", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			tb.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("closing jar: %v", err)
	}
}

// WriteDir writes the entries as files under dir.
func WriteDir(tb testing.TB, dir string, entries map[string][]byte) {
	tb.Helper()
	for name, data := range entries {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			tb.Fatalf("creating %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			tb.Fatalf("writing %s: %v", p, err)
		}
	}
}

// ReadJar returns the entry names of the JAR at path in archive order,
// along with their contents.
func ReadJar(tb testing.TB, path string) ([]string, map[string][]byte) {
	tb.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		tb.Fatalf("opening jar: %v", err)
	}
	defer zr.Close()

	var names []string
	contents := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			tb.Fatalf("opening %s: %v", f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			tb.Fatalf("reading %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		contents[f.Name] = buf
	}
	return names, contents
}
