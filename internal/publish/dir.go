// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirPublisher copies publications into a local directory.
type DirPublisher struct {
	Dir string
}

// Publish implements Publisher.
func (d DirPublisher) Publish(ctx context.Context, p Publication) error {
	files, err := p.files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := filepath.Join(d.Dir, filepath.FromSlash(f.name))
		if err := copyFile(f.src, dst); err != nil {
			return fmt.Errorf("publishing %s to %s: %w", f.src, d.Dir, err)
		}
	}
	return nil
}

// copyFile writes src to a temp file beside dst and renames it into place.
// A failed copy never leaves a partial file at dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".go-shade-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
