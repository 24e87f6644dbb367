// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package shade

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/petar-djukic/go-shade/internal/policy"
	"github.com/petar-djukic/go-shade/internal/publish"
	"github.com/petar-djukic/go-shade/internal/shader"
	"github.com/petar-djukic/go-shade/internal/store"
)

const (
	defaultWorkDir     = "build/go-shade"
	defaultFormat      = "json"
	defaultReceiptPath = "build-receipt.properties"
)

// New validates the config and returns a ready-to-use Shader. It reads
// the policy file, when one is set, but no input artifacts.
func New(cfg Config) (Shader, error) {
	applyDefaults(&cfg)

	p, err := buildPolicy(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	format, _ := store.ParseFormat(cfg.Format)

	publisher, err := buildPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	runner, err := shader.NewRunner(shader.Deps{
		Policy:      p,
		CacheSize:   cfg.MaxCache,
		WorkDir:     cfg.WorkDir,
		Format:      format,
		Workers:     cfg.Workers,
		Output:      cfg.Output,
		ReceiptFile: cfg.ReceiptFile,
		ReceiptPath: cfg.ReceiptPath,
		ReportDir:   cfg.ReportDir,
		Publisher:   publisher,
		Summary:     cfg.Summary,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &shaderAdapter{runner: runner, cfg: cfg}, nil
}

// shaderAdapter adapts internal/shader.Runner to the public Shader
// interface.
type shaderAdapter struct {
	runner *shader.Runner
	cfg    Config
}

func (a *shaderAdapter) Analyze(ctx context.Context, inputs []string) ([]string, error) {
	return a.runner.Analyze(ctx, inputs)
}

func (a *shaderAdapter) Assemble(ctx context.Context, dirs []string) (*Result, error) {
	if err := validateAssembly(a.cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return convert(a.runner.Assemble(ctx, dirs))
}

func (a *shaderAdapter) Run(ctx context.Context, inputs []string) (*Result, error) {
	if err := validateAssembly(a.cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return convert(a.runner.Run(ctx, inputs))
}

func convert(ir *shader.RunResult, err error) (*Result, error) {
	if ir == nil {
		return nil, err
	}
	return &Result{
		Archive:          ir.Archive,
		Digest:           ir.Digest,
		Size:             ir.Size,
		Included:         ir.Included,
		Missing:          ir.Missing,
		Provided:         ir.Provided,
		Duplicates:       ir.Duplicates,
		IntermediateDirs: ir.IntermediateDirs,
	}, err
}

// buildPolicy loads the policy file, if any, and extends it with the
// config fields.
func buildPolicy(cfg Config) (policy.RenamePolicy, error) {
	var p policy.RenamePolicy
	if cfg.PolicyFile != "" {
		loaded, err := policy.LoadFile(cfg.PolicyFile)
		if err != nil {
			return p, err
		}
		p = loaded
	}
	if cfg.ShadowPackage != "" {
		p.ShadowPackage = cfg.ShadowPackage
	}
	p.KeepPackages = append(p.KeepPackages, cfg.KeepPackages...)
	p.UnshadedPackages = append(p.UnshadedPackages, cfg.UnshadedPackages...)
	p.IgnoredPackages = append(p.IgnoredPackages, cfg.IgnoredPackages...)
	p.DropIgnored = p.DropIgnored || cfg.DropIgnored
	if cfg.NoRelocate {
		// A shadow package from the policy file does not apply.
		p.NoRelocate = true
		p.ShadowPackage = cfg.ShadowPackage
	}
	return p, p.Validate()
}

func buildPublisher(cfg Config) (publish.Publisher, error) {
	var multi publish.Multi
	for _, d := range cfg.PublishDirs {
		multi = append(multi, publish.DirPublisher{Dir: d})
	}
	if cfg.S3 != nil {
		s3, err := publish.NewS3Publisher(publish.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		multi = append(multi, s3)
	}
	if len(multi) == 0 {
		return nil, nil
	}
	return multi, nil
}

// validateConfig checks the fields every operation needs.
func validateConfig(cfg Config) error {
	if _, err := store.ParseFormat(cfg.Format); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("Workers must not be negative")
	}
	if cfg.MaxCache < 0 {
		return fmt.Errorf("MaxCache must not be negative")
	}
	return nil
}

// validateAssembly checks the fields writing an archive needs.
func validateAssembly(cfg Config) error {
	if cfg.Output == "" {
		return fmt.Errorf("Output is required")
	}
	if cfg.ReceiptFile == "" {
		return fmt.Errorf("ReceiptFile is required")
	}
	if info, err := os.Stat(cfg.ReceiptFile); err != nil || info.IsDir() {
		return fmt.Errorf("ReceiptFile %q does not exist or is a directory", cfg.ReceiptFile)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.WorkDir == "" {
		cfg.WorkDir = defaultWorkDir
	}
	if cfg.Format == "" {
		cfg.Format = defaultFormat
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxCache == 0 {
		cfg.MaxCache = policy.DefaultCacheSize
	}
	if cfg.ReceiptPath == "" {
		cfg.ReceiptPath = defaultReceiptPath
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}
