// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across go-shade packages.
package types

import "strings"

// ClassSuffix is the file extension of compiled class entries.
const ClassSuffix = ".class"

// InternalName converts a dotted (com.acme.Api) or slashed (com/acme/Api)
// class or package name to its slash-separated internal form.
func InternalName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), ".", "/")
}

// DottedName converts an internal name to the dotted form used in reports.
func DottedName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// EntryPath returns the archive path of the class with the given internal name.
func EntryPath(name string) string {
	return name + ClassSuffix
}

// ClassNameFromPath returns the internal class name for an archive path
// ending in .class, or false for any other path.
func ClassNameFromPath(path string) (string, bool) {
	if !strings.HasSuffix(path, ClassSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(path, ClassSuffix)
	if !ValidClassName(name) {
		return "", false
	}
	return name, true
}

// ValidClassName reports whether name is a syntactically valid internal
// class name: non-empty slash-separated segments that contain none of the
// characters the class file format reserves.
func ValidClassName(name string) bool {
	if name == "" {
		return false
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "" {
			return false
		}
		if strings.ContainsAny(segment, ".;[<>") {
			return false
		}
	}
	return true
}
