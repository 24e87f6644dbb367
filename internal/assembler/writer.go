// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package assembler

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/zeebo/blake3"
)

// modTime is stamped on every entry so identical inputs give identical
// archives. It is the earliest time the zip format represents reliably.
var modTime = time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC)

// archiveWriter streams a zip archive into a temp file beside its final
// destination while hashing it.
type archiveWriter struct {
	path    string
	tmp     *os.File
	zw      *zip.Writer
	digest  hash.Hash
	size    int64
	entries []string
}

func newArchiveWriter(path string) (*archiveWriter, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".go-shade-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp file: %v", ErrOutputWrite, err)
	}
	w := &archiveWriter{path: path, tmp: f, digest: blake3.New()}
	w.zw = zip.NewWriter(io.MultiWriter(f, w.digest, (*counter)(&w.size)))
	return w, nil
}

// add writes one deflated entry.
func (w *archiveWriter) add(name string, data []byte) error {
	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modTime,
	})
	if err != nil {
		return fmt.Errorf("%w: adding %s: %v", ErrOutputWrite, name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrOutputWrite, name, err)
	}
	w.entries = append(w.entries, name)
	return nil
}

// commit finishes the archive and moves it into place.
func (w *archiveWriter) commit() error {
	tmpPath := w.tmp.Name()
	if err := w.zw.Close(); err != nil {
		w.abort()
		return fmt.Errorf("%w: finishing archive: %v", ErrOutputWrite, err)
	}
	if err := w.tmp.Sync(); err != nil {
		w.abort()
		return fmt.Errorf("%w: syncing temp file: %v", ErrOutputWrite, err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing temp file: %v", ErrOutputWrite, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: setting permissions: %v", ErrOutputWrite, err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming temp file: %v", ErrOutputWrite, err)
	}
	return nil
}

// abort discards the temp file. It is safe to call after commit failed.
func (w *archiveWriter) abort() {
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}

func (w *archiveWriter) sum() string {
	return hex.EncodeToString(w.digest.Sum(nil))
}

// counter counts the bytes written through it.
type counter int64

func (c *counter) Write(p []byte) (int, error) {
	*c += counter(len(p))
	return len(p), nil
}
