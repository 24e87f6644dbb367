// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package policy decides, per class name, whether a class keeps its name,
// is renamed into the shadow namespace, or is ignored.
package policy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/go-shade/pkg/types"
)

// ErrInvalidPolicy is returned when a RenamePolicy fails validation.
var ErrInvalidPolicy = errors.New("invalid rename policy")

// BootstrapPackages are the runtime platform roots that are never renamed.
// They are always part of the unshaded set.
var BootstrapPackages = []string{"java"}

// RenamePolicy configures the classifier. Entries are package roots or
// single classes, dotted or slashed.
type RenamePolicy struct {
	ShadowPackage    string   `yaml:"shadowPackage"`
	KeepPackages     []string `yaml:"keepPackages"`
	UnshadedPackages []string `yaml:"unshadedPackages"`
	IgnoredPackages  []string `yaml:"ignoredPackages"`

	// DropIgnored removes ignored classes at analysis time. When false,
	// ignored classes are analyzed and reachability may still pull them
	// into the archive.
	DropIgnored bool `yaml:"dropIgnored"`

	// NoRelocate leaves every class in its original namespace. The artifact
	// is only minified to the classes reachable from the keep roots, and
	// ShadowPackage must be empty.
	NoRelocate bool `yaml:"noRelocate"`
}

// Validate checks that every entry names valid package segments and that
// the keep, unshaded and ignored sets are disjoint.
func (p RenamePolicy) Validate() error {
	shadow := types.InternalName(p.ShadowPackage)
	shadow = strings.TrimSuffix(shadow, "/")
	switch {
	case p.NoRelocate && shadow != "":
		return fmt.Errorf("%w: shadow package %q set without relocation", ErrInvalidPolicy, p.ShadowPackage)
	case p.NoRelocate:
	case shadow == "":
		return fmt.Errorf("%w: shadow package is required", ErrInvalidPolicy)
	case !types.ValidClassName(shadow):
		return fmt.Errorf("%w: shadow package %q", ErrInvalidPolicy, p.ShadowPackage)
	}

	owner := make(map[string]string)
	sets := []struct {
		name    string
		entries []string
	}{
		{"keep", p.KeepPackages},
		{"unshaded", p.UnshadedPackages},
		{"ignored", p.IgnoredPackages},
	}
	for _, set := range sets {
		for _, e := range set.entries {
			root := normalize(e)
			if !types.ValidClassName(root) {
				return fmt.Errorf("%w: %s entry %q", ErrInvalidPolicy, set.name, e)
			}
			if prev, ok := owner[root]; ok && prev != set.name {
				return fmt.Errorf("%w: %q is listed as both %s and %s", ErrInvalidPolicy, e, prev, set.name)
			}
			owner[root] = set.name
		}
	}
	return nil
}

// shadowPrefix returns the slash-terminated rename prefix, or "" when
// classes are not relocated.
func (p RenamePolicy) shadowPrefix() string {
	if p.NoRelocate {
		return ""
	}
	return strings.TrimSuffix(types.InternalName(p.ShadowPackage), "/") + "/"
}

// LoadFile reads a YAML policy file and validates it.
func LoadFile(path string) (RenamePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RenamePolicy{}, fmt.Errorf("reading policy: %w", err)
	}
	var p RenamePolicy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return RenamePolicy{}, fmt.Errorf("%w: parsing %s: %v", ErrInvalidPolicy, path, err)
	}
	if err := p.Validate(); err != nil {
		return RenamePolicy{}, err
	}
	return p, nil
}

// IsBootstrap reports whether name belongs to the runtime platform.
func IsBootstrap(name string) bool {
	for _, root := range BootstrapPackages {
		if under(name, root) {
			return true
		}
	}
	return false
}

func normalize(entry string) string {
	return strings.Trim(types.InternalName(entry), "/")
}

// under reports whether name equals root or lies beneath it.
func under(name, root string) bool {
	return name == root || strings.HasPrefix(name, root+"/")
}
