// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shade defines the public interface for go-shade, a builder of
// minimized, repackaged ("shaded") JAR archives.
package shade

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/petar-djukic/go-shade/internal/assembler"
	"github.com/petar-djukic/go-shade/internal/classfile"
	"github.com/petar-djukic/go-shade/pkg/types"
)

// Error types for the Shader API.
var (
	ErrInvalidConfig = errors.New("invalid config")

	// ErrMalformedClassFile is returned when an input class is not a
	// well-formed class file of a supported version. The run is aborted.
	ErrMalformedClassFile = classfile.ErrMalformed

	// ErrOutputWrite is returned when the archive cannot be written. No
	// partial archive is left behind.
	ErrOutputWrite = assembler.ErrOutputWrite
)

// S3Config addresses an S3-compatible bucket that receives a copy of the
// archive and report.
type S3Config struct {
	Endpoint  string
	Region    string // Default us-east-1
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Config configures a Shader instance.
type Config struct {
	// Rename policy. PolicyFile, when set, is a YAML policy that the
	// fields below extend.
	PolicyFile       string
	ShadowPackage    string   // Package shadowed classes move under (required unless NoRelocate)
	KeepPackages     []string // Entry point roots, never renamed
	UnshadedPackages []string // Never renamed; java is always included
	IgnoredPackages  []string // Never entry points
	DropIgnored      bool     // Drop ignored classes instead of letting reachability keep them
	NoRelocate       bool     // Minify only; every class keeps its original name

	WorkDir  string // Root of intermediate directories (default "build/go-shade")
	Format   string // Intermediate encoding, "json" or "cbor" (default "json")
	Workers  int    // Parallel analyses (default runtime.NumCPU())
	MaxCache int    // Classifier cache entries (default 4096)

	Output      string // Archive path (required to assemble)
	ReceiptFile string // Build receipt file (required to assemble)
	ReceiptPath string // Archive path of the receipt (default "build-receipt.properties")
	ReportDir   string // Report directory (empty = no report files)

	PublishDirs []string  // Directories that receive a copy of the archive and report
	S3          *S3Config // Object storage that receives a copy

	Logger  *slog.Logger // Default slog.Default()
	Summary io.Writer    // Human-readable summary (nil = none)
}

// Result holds the outcome of an assembly.
type Result struct {
	Archive          string               `json:"archive"`
	Digest           string               `json:"digest"`
	Size             int64                `json:"size"`
	Included         []string             `json:"included"`
	Missing          []types.MissingEntry `json:"missing"`
	Provided         []string             `json:"provided"`
	Duplicates       []string             `json:"duplicates,omitempty"`
	IntermediateDirs []string             `json:"intermediateDirs"`
}

// Shader builds shaded archives.
type Shader interface {
	// Analyze reads each input artifact (JAR or class directory), renames
	// its classes under the policy and stores one intermediate directory
	// per input. It returns the directories in input order.
	Analyze(ctx context.Context, inputs []string) ([]string, error)

	// Assemble merges intermediate directories, computes the classes
	// reachable from their entry points and writes the archive. Reachable
	// classes without bytes are reported in Result.Missing, not as errors.
	Assemble(ctx context.Context, dirs []string) (*Result, error)

	// Run performs Analyze followed by Assemble.
	Run(ctx context.Context, inputs []string) (*Result, error)
}
