// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package classfiletest assembles small but well-formed class files for
// tests.
package classfiletest

import (
	"encoding/binary"
)

const (
	accPublic = 0x0001
	accSuper  = 0x0020
)

// Builder accumulates the parts of a class file. Constant pool entries are
// deduplicated, so a string literal equal to a class name shares its UTF-8
// constant exactly as javac output does.
type Builder struct {
	name       string
	super      string
	interfaces []string
	major      uint16

	pool    [][]byte
	indexes map[string]uint16

	fields     [][]byte
	methods    [][]byte
	attributes [][]byte
}

// New starts a public class with the given internal name extending
// java/lang/Object, at class file version 52 (Java 8).
func New(name string) *Builder {
	return &Builder{
		name:    name,
		super:   "java/lang/Object",
		major:   52,
		pool:    [][]byte{nil},
		indexes: make(map[string]uint16),
	}
}

// Super sets the superclass; an empty name omits it.
func (b *Builder) Super(name string) *Builder {
	b.super = name
	return b
}

// Implements adds implemented interfaces.
func (b *Builder) Implements(names ...string) *Builder {
	b.interfaces = append(b.interfaces, names...)
	return b
}

// Version sets the class file major version.
func (b *Builder) Version(major uint16) *Builder {
	b.major = major
	return b
}

// Field adds a field with the given descriptor.
func (b *Builder) Field(name, desc string) *Builder {
	b.fields = append(b.fields, b.member(accPublic, name, desc, nil))
	return b
}

// GenericField adds a field with a Signature attribute.
func (b *Builder) GenericField(name, desc, signature string) *Builder {
	attr := b.attribute("Signature", u2(b.utf8(signature)))
	b.fields = append(b.fields, b.member(accPublic, name, desc, [][]byte{attr}))
	return b
}

// Method adds a method whose body is a single return instruction and whose
// local variable table types "this" as the declared class.
func (b *Builder) Method(name, desc string) *Builder {
	lvt := u2(1)
	lvt = append(lvt, u2(0)...)
	lvt = append(lvt, u2(1)...)
	lvt = append(lvt, u2(b.utf8("this"))...)
	lvt = append(lvt, u2(b.utf8("L"+b.name+";"))...)
	lvt = append(lvt, u2(0)...)

	code := u2(1)                          // max_stack
	code = append(code, u2(1)...)          // max_locals
	code = append(code, u4(1)...)          // code_length
	code = append(code, 0xb1)              // return
	code = append(code, u2(0)...)          // exception table
	code = append(code, u2(1)...)          // attributes
	code = append(code, b.attribute("LocalVariableTable", lvt)...)

	b.methods = append(b.methods, b.member(accPublic, name, desc, [][]byte{b.attribute("Code", code)}))
	return b
}

// Invoke adds a Methodref constant to owner.name:desc, as a call site would.
func (b *Builder) Invoke(owner, name, desc string) *Builder {
	b.constant("M:"+owner+"."+name+desc, func() []byte {
		e := []byte{10}
		e = append(e, u2(b.class(owner))...)
		return append(e, u2(b.nameAndType(name, desc))...)
	})
	return b
}

// StringConstant adds a CONSTANT_String.
func (b *Builder) StringConstant(s string) *Builder {
	b.constant("S:"+s, func() []byte {
		return append([]byte{8}, u2(b.utf8(s))...)
	})
	return b
}

// LongConstant adds a CONSTANT_Long, which occupies two pool slots.
func (b *Builder) LongConstant(v uint64) *Builder {
	key := "J:" + string(binary.BigEndian.AppendUint64(nil, v))
	if _, ok := b.indexes[key]; ok {
		return b
	}
	e := append([]byte{5}, binary.BigEndian.AppendUint64(nil, v)...)
	b.pool = append(b.pool, e, nil)
	b.indexes[key] = uint16(len(b.pool) - 2)
	return b
}

// Signature adds a class Signature attribute.
func (b *Builder) Signature(sig string) *Builder {
	b.attributes = append(b.attributes, b.attribute("Signature", u2(b.utf8(sig))))
	return b
}

// Annotate adds a runtime-visible class annotation. When classValue is not
// empty the annotation carries one element "value" whose class literal is
// the given return descriptor.
func (b *Builder) Annotate(desc, classValue string) *Builder {
	ann := u2(1)
	ann = append(ann, u2(b.utf8(desc))...)
	if classValue == "" {
		ann = append(ann, u2(0)...)
	} else {
		ann = append(ann, u2(1)...)
		ann = append(ann, u2(b.utf8("value"))...)
		ann = append(ann, 'c')
		ann = append(ann, u2(b.utf8(classValue))...)
	}
	b.attributes = append(b.attributes, b.attribute("RuntimeVisibleAnnotations", ann))
	return b
}

// UTF8 adds a CONSTANT_Utf8 and returns its pool index.
func (b *Builder) UTF8(s string) uint16 {
	return b.utf8(s)
}

// RawAttribute adds an attribute with arbitrary contents.
func (b *Builder) RawAttribute(name string, data []byte) *Builder {
	b.attributes = append(b.attributes, b.attribute(name, data))
	return b
}

// Bytes serializes the class file.
func (b *Builder) Bytes() []byte {
	body := u2(accPublic | accSuper)
	body = append(body, u2(b.class(b.name))...)
	if b.super == "" {
		body = append(body, u2(0)...)
	} else {
		body = append(body, u2(b.class(b.super))...)
	}
	body = append(body, u2(uint16(len(b.interfaces)))...)
	for _, i := range b.interfaces {
		body = append(body, u2(b.class(i))...)
	}
	body = appendTable(body, b.fields)
	body = appendTable(body, b.methods)
	body = appendTable(body, b.attributes)

	out := u4(0xCAFEBABE)
	out = append(out, u2(0)...)
	out = append(out, u2(b.major)...)
	out = append(out, u2(uint16(len(b.pool)))...)
	for _, e := range b.pool {
		out = append(out, e...)
	}
	return append(out, body...)
}

func (b *Builder) constant(key string, encode func() []byte) uint16 {
	if idx, ok := b.indexes[key]; ok {
		return idx
	}
	e := encode()
	b.pool = append(b.pool, e)
	idx := uint16(len(b.pool) - 1)
	b.indexes[key] = idx
	return idx
}

func (b *Builder) utf8(s string) uint16 {
	return b.constant("U:"+s, func() []byte {
		e := append([]byte{1}, u2(uint16(len(s)))...)
		return append(e, s...)
	})
}

func (b *Builder) class(name string) uint16 {
	return b.constant("C:"+name, func() []byte {
		return append([]byte{7}, u2(b.utf8(name))...)
	})
}

func (b *Builder) nameAndType(name, desc string) uint16 {
	return b.constant("N:"+name+":"+desc, func() []byte {
		e := append([]byte{12}, u2(b.utf8(name))...)
		return append(e, u2(b.utf8(desc))...)
	})
}

func (b *Builder) member(access uint16, name, desc string, attrs [][]byte) []byte {
	m := u2(access)
	m = append(m, u2(b.utf8(name))...)
	m = append(m, u2(b.utf8(desc))...)
	return appendTable(m, attrs)
}

func (b *Builder) attribute(name string, data []byte) []byte {
	a := u2(b.utf8(name))
	a = append(a, u4(uint32(len(data)))...)
	return append(a, data...)
}

func appendTable(buf []byte, items [][]byte) []byte {
	buf = append(buf, u2(uint16(len(items)))...)
	for _, it := range items {
		buf = append(buf, it...)
	}
	return buf
}

func u2(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }

func u4(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
