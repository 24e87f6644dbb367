// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package publish copies a finished archive and its report to additional
// locations. Publishing runs after the archive is final and never touches
// it.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// Publication is one finished assembly.
type Publication struct {
	Archive   string // Path of the written archive
	Digest    string // Hex digest of the archive
	ReportDir string // Directory of report files, may be empty
}

// Prefix is the deterministic name under which the publication is stored:
// "shaded-" followed by the first 16 digest characters.
func (p Publication) Prefix() string {
	d := p.Digest
	if len(d) > 16 {
		d = d[:16]
	}
	return "shaded-" + d
}

// file is one file to publish and its name relative to the destination.
type file struct {
	src  string
	name string
}

// files lists the archive and the report files, in a stable order.
func (p Publication) files() ([]file, error) {
	if p.Archive == "" {
		return nil, errors.New("publication has no archive")
	}
	prefix := p.Prefix()
	out := []file{{src: p.Archive, name: prefix + filepath.Ext(p.Archive)}}
	if p.ReportDir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(p.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("reading report directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, file{
			src:  filepath.Join(p.ReportDir, e.Name()),
			name: path.Join(prefix+"-report", e.Name()),
		})
	}
	return out, nil
}

// Publisher stores a publication somewhere.
type Publisher interface {
	Publish(ctx context.Context, p Publication) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, p Publication) error {
	var errs []error
	for _, pub := range m {
		if err := pub.Publish(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
