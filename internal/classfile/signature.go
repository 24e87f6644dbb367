// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package classfile

import (
	"fmt"
	"strings"
)

// remapSignature passes every class name in a field descriptor, method
// descriptor or generic signature (JVMS §4.3, §4.7.9.1) through mapping and
// returns the rewritten text. Descriptors are a subset of the signature
// grammar, so one walker serves both.
func remapSignature(sig string, mapping func(string) string) (string, error) {
	w := &sigWalker{in: sig, mapping: mapping}
	if err := w.walk(); err != nil {
		return "", err
	}
	return w.out.String(), nil
}

// remapInternalName maps the operand of a CONSTANT_Class, which is either a
// plain internal name or an array descriptor.
func remapInternalName(name string, mapping func(string) string) (string, error) {
	if strings.HasPrefix(name, "[") {
		return remapSignature(name, mapping)
	}
	if name == "" {
		return "", malformedf("empty class name")
	}
	return mapping(name), nil
}

type sigWalker struct {
	in      string
	pos     int
	out     strings.Builder
	mapping func(string) string
}

func (w *sigWalker) eof() bool { return w.pos >= len(w.in) }

func (w *sigWalker) peek() byte {
	if w.eof() {
		return 0
	}
	return w.in[w.pos]
}

// copyByte emits the current byte unchanged.
func (w *sigWalker) copyByte() {
	w.out.WriteByte(w.in[w.pos])
	w.pos++
}

func (w *sigWalker) expect(c byte) error {
	if w.peek() != c {
		return w.errorf("expected %q", c)
	}
	w.copyByte()
	return nil
}

func (w *sigWalker) errorf(format string, args ...any) error {
	return malformedf("signature %q at %d: %s", w.in, w.pos, fmt.Sprintf(format, args...))
}

func (w *sigWalker) walk() error {
	if w.eof() {
		return w.errorf("empty")
	}
	if w.peek() == '<' {
		if err := w.typeParameters(); err != nil {
			return err
		}
	}
	if w.peek() == '(' {
		return w.method()
	}
	if w.eof() {
		return w.errorf("missing type after type parameters")
	}
	for !w.eof() {
		if err := w.javaType(); err != nil {
			return err
		}
	}
	return nil
}

func (w *sigWalker) method() error {
	w.copyByte() // '('
	for w.peek() != ')' {
		if w.eof() {
			return w.errorf("unterminated parameter list")
		}
		if err := w.javaType(); err != nil {
			return err
		}
	}
	w.copyByte() // ')'
	if err := w.javaType(); err != nil {
		return err
	}
	for w.peek() == '^' {
		w.copyByte()
		if err := w.referenceType(); err != nil {
			return err
		}
	}
	if !w.eof() {
		return w.errorf("trailing characters")
	}
	return nil
}

func (w *sigWalker) typeParameters() error {
	w.copyByte() // '<'
	for w.peek() != '>' {
		if w.eof() {
			return w.errorf("unterminated type parameters")
		}
		start := w.pos
		for !w.eof() && w.peek() != ':' {
			if strings.IndexByte(".;[/<>", w.peek()) >= 0 {
				return w.errorf("invalid type parameter name")
			}
			w.pos++
		}
		if w.pos == start {
			return w.errorf("empty type parameter name")
		}
		w.out.WriteString(w.in[start:w.pos])
		if err := w.expect(':'); err != nil {
			return err
		}
		if c := w.peek(); c == 'L' || c == 'T' || c == '[' {
			if err := w.referenceType(); err != nil {
				return err
			}
		}
		for w.peek() == ':' {
			w.copyByte()
			if err := w.referenceType(); err != nil {
				return err
			}
		}
	}
	w.copyByte() // '>'
	return nil
}

func (w *sigWalker) javaType() error {
	switch c := w.peek(); c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
		w.copyByte()
		return nil
	case 'L', 'T', '[':
		return w.referenceType()
	default:
		return w.errorf("unexpected type %q", c)
	}
}

func (w *sigWalker) referenceType() error {
	switch w.peek() {
	case 'L':
		return w.classType()
	case 'T':
		end := strings.IndexByte(w.in[w.pos:], ';')
		if end < 2 {
			return w.errorf("invalid type variable")
		}
		w.out.WriteString(w.in[w.pos : w.pos+end+1])
		w.pos += end + 1
		return nil
	case '[':
		w.copyByte()
		return w.javaType()
	default:
		return w.errorf("expected reference type")
	}
}

// identifier reads up to the next '<', '.' or ';'.
func (w *sigWalker) identifier() (string, error) {
	start := w.pos
	for !w.eof() && strings.IndexByte("<.;", w.peek()) < 0 {
		w.pos++
	}
	if w.eof() {
		return "", w.errorf("unterminated class type")
	}
	if w.pos == start {
		return "", w.errorf("empty class name")
	}
	return w.in[start:w.pos], nil
}

func (w *sigWalker) classType() error {
	w.copyByte() // 'L'
	name, err := w.identifier()
	if err != nil {
		return err
	}
	w.out.WriteString(w.mapping(name))
	for {
		switch w.peek() {
		case '<':
			if err := w.typeArguments(); err != nil {
				return err
			}
		case '.':
			w.copyByte()
			simple, err := w.identifier()
			if err != nil {
				return err
			}
			inner := name + "$" + simple
			w.out.WriteString(innerSimpleName(w.mapping(name), w.mapping(inner)))
			name = inner
		case ';':
			w.copyByte()
			return nil
		default:
			return w.errorf("unterminated class type")
		}
	}
}

// innerSimpleName recovers the simple name of a remapped inner class from its
// remapped binary name, given the remapped outer class.
func innerSimpleName(mappedOuter, mappedInner string) string {
	if prefix := mappedOuter + "$"; strings.HasPrefix(mappedInner, prefix) {
		return mappedInner[len(prefix):]
	}
	return mappedInner[strings.LastIndexByte(mappedInner, '$')+1:]
}

func (w *sigWalker) typeArguments() error {
	w.copyByte() // '<'
	for w.peek() != '>' {
		switch w.peek() {
		case 0:
			return w.errorf("unterminated type arguments")
		case '*':
			w.copyByte()
		case '+', '-':
			w.copyByte()
			if err := w.referenceType(); err != nil {
				return err
			}
		default:
			if err := w.referenceType(); err != nil {
				return err
			}
		}
	}
	w.copyByte() // '>'
	return nil
}
