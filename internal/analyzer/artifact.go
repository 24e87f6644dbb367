// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analyzer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/petar-djukic/go-shade/pkg/types"
)

// ManifestPath is the archive path of the JAR manifest.
const ManifestPath = "META-INF/MANIFEST.MF"

// Entry is one class file of an artifact.
type Entry struct {
	Path string // Slash-separated path inside the artifact
	Data []byte
}

// Artifact is an input unit of compiled classes: a JAR file or a class
// directory.
type Artifact struct {
	Path     string
	Entries  []Entry // Sorted by Path
	Manifest []byte
}

// Open reads the class entries of a JAR file or class directory. Class
// files under META-INF/ (multi-release variants) and module descriptors
// are skipped, as are non-class resources.
func Open(p string) (*Artifact, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	art := &Artifact{Path: p}
	if info.IsDir() {
		err = art.readDir()
	} else {
		err = art.readJar()
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(art.Entries, func(i, j int) bool { return art.Entries[i].Path < art.Entries[j].Path })
	return art, nil
}

func (a *Artifact) readDir() error {
	err := filepath.WalkDir(a.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.Path, p)
		if err != nil {
			return err
		}
		return a.add(filepath.ToSlash(rel), func() ([]byte, error) { return os.ReadFile(p) })
	})
	if err != nil {
		return fmt.Errorf("reading class directory %s: %w", a.Path, err)
	}
	return nil
}

func (a *Artifact) readJar() error {
	zr, err := zip.OpenReader(a.Path)
	if err != nil {
		return fmt.Errorf("reading jar %s: %w", a.Path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		err := a.add(f.Name, func() ([]byte, error) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		})
		if err != nil {
			return fmt.Errorf("reading jar %s: %w", a.Path, err)
		}
	}
	return nil
}

// add records the entry at p when it is a class file or the manifest. read
// is only called for entries that are kept.
func (a *Artifact) add(p string, read func() ([]byte, error)) error {
	switch {
	case p == ManifestPath:
		data, err := read()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		a.Manifest = data
	case skipEntry(p):
	default:
		data, err := read()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		a.Entries = append(a.Entries, Entry{Path: p, Data: data})
	}
	return nil
}

func skipEntry(p string) bool {
	if !strings.HasSuffix(p, types.ClassSuffix) {
		return true
	}
	return path.Base(p) == "module-info.class" || strings.HasPrefix(p, "META-INF/")
}
