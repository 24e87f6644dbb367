// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "fmt"

// MissingKind classifies a closure member whose bytes were not found.
type MissingKind int

const (
	MissingBytes MissingKind = iota // Some artifact declared the class but no bytes were found
	Unresolved                      // No artifact declared the class at all
	Provided                        // The class belongs to the runtime platform
)

func (k MissingKind) String() string {
	switch k {
	case MissingBytes:
		return "missing"
	case Unresolved:
		return "unresolved"
	case Provided:
		return "provided"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k MissingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MissingEntry describes a reachable class that is absent from the archive.
type MissingEntry struct {
	Name       string      `json:"name"`
	Kind       MissingKind `json:"kind"`
	EntryPoint bool        `json:"entryPoint,omitempty"` // The class is itself an entry point
	Via        string      `json:"via,omitempty"`        // Class it was first reached from
}

func (m MissingEntry) String() string {
	switch {
	case m.EntryPoint:
		return fmt.Sprintf("%s (%s; entry point)", m.Name, m.Kind)
	case m.Via != "":
		return fmt.Sprintf("%s (%s; reachable from %s)", m.Name, m.Kind, m.Via)
	default:
		return fmt.Sprintf("%s (%s)", m.Name, m.Kind)
	}
}
