// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package classfile reads compiled JVM class files into a structural model,
// discovers every class referenced by the file, and rewrites those
// references to a new namespace.
package classfile

import (
	"sort"
)

const (
	magic = 0xCAFEBABE

	// MinMajorVersion and MaxMajorVersion bound the supported class file
	// versions: Java 1.1 through Java 25.
	MinMajorVersion = 45
	MaxMajorVersion = 69
)

// slotKind says how the UTF-8 constant behind a slot is interpreted.
type slotKind uint8

const (
	slotPlain      slotKind = iota // names, string literals, attribute names
	slotClassName                  // operand of CONSTANT_Class
	slotDescriptor                 // field or method descriptor
	slotSignature                  // generic signature
)

// slot is a place in the class file that holds the index of a UTF-8 constant.
type slot struct {
	kind   slotKind
	index  uint16
	offset int  // byte offset of the u2 after the constant pool, -1 for pool operands
	entry  int  // owning constant when offset is -1
	second bool // the slot is the owning constant's b operand
}

// ClassFile is the structural model of one parsed class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16

	data       []byte
	pool       []constant
	poolEnd    int
	thisClass  uint16
	superClass uint16
	interfaces []uint16
	slots      []slot
	references []string

	// opaque is set when the file carries an attribute whose layout is
	// unknown. Such an attribute may index UTF-8 constants directly.
	opaque bool
}

// Parse reads a class file. It fails with ErrMalformed when data is not a
// well-formed class file of a supported version, including when any
// descriptor or signature it carries cannot be parsed.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}
	if m := r.u4(); r.err != nil || m != magic {
		return nil, malformedf("bad magic")
	}
	cf := &ClassFile{data: data}
	cf.MinorVersion = r.u2()
	cf.MajorVersion = r.u2()
	if r.err != nil {
		return nil, r.err
	}
	if cf.MajorVersion < MinMajorVersion || cf.MajorVersion > MaxMajorVersion {
		return nil, malformedf("unsupported class file version %d.%d", cf.MajorVersion, cf.MinorVersion)
	}

	pool, err := readPool(r)
	if err != nil {
		return nil, err
	}
	if err := checkPool(pool); err != nil {
		return nil, err
	}
	cf.pool = pool
	cf.poolEnd = r.pos
	cf.poolSlots()

	p := &parser{cf: cf, r: r}
	if err := p.body(); err != nil {
		return nil, err
	}
	if err := cf.collectReferences(); err != nil {
		return nil, err
	}
	return cf, nil
}

// poolSlots records the UTF-8 uses of pool entries.
func (c *ClassFile) poolSlots() {
	for i, k := range c.pool {
		switch k.tag {
		case tagClass:
			c.slots = append(c.slots, slot{kind: slotClassName, index: k.a, offset: -1, entry: i})
		case tagNameAndType:
			c.slots = append(c.slots,
				slot{kind: slotPlain, index: k.a, offset: -1, entry: i},
				slot{kind: slotDescriptor, index: k.b, offset: -1, entry: i, second: true})
		case tagMethodType:
			c.slots = append(c.slots, slot{kind: slotDescriptor, index: k.a, offset: -1, entry: i})
		case tagString, tagModule, tagPackage:
			c.slots = append(c.slots, slot{kind: slotPlain, index: k.a, offset: -1, entry: i})
		}
	}
}

func (c *ClassFile) collectReferences() error {
	seen := make(map[string]struct{})
	record := func(name string) string {
		seen[name] = struct{}{}
		return name
	}
	for _, s := range c.slots {
		var err error
		value := c.pool[s.index].utf8
		switch s.kind {
		case slotClassName:
			_, err = remapInternalName(value, record)
		case slotDescriptor, slotSignature:
			_, err = remapSignature(value, record)
		}
		if err != nil {
			return err
		}
	}
	c.references = make([]string, 0, len(seen))
	for name := range seen {
		c.references = append(c.references, name)
	}
	sort.Strings(c.references)
	return nil
}

func (c *ClassFile) className(index uint16) string {
	if index == 0 {
		return ""
	}
	return c.pool[c.pool[index].a].utf8
}

// Name returns the internal name of the declared class.
func (c *ClassFile) Name() string {
	return c.className(c.thisClass)
}

// SuperName returns the internal name of the superclass, or "" for
// java/lang/Object and module descriptors.
func (c *ClassFile) SuperName() string {
	return c.className(c.superClass)
}

// InterfaceNames returns the directly implemented interfaces in declaration
// order.
func (c *ClassFile) InterfaceNames() []string {
	out := make([]string, len(c.interfaces))
	for i, idx := range c.interfaces {
		out[i] = c.className(idx)
	}
	return out
}

// References returns every class name the file refers to, the declared
// class included, in lexical order. Array types contribute their element
// class.
func (c *ClassFile) References() []string {
	out := make([]string, len(c.references))
	copy(out, c.references)
	return out
}

// StringConstants returns the values of the CONSTANT_String entries in pool
// order.
func (c *ClassFile) StringConstants() []string {
	var out []string
	for _, k := range c.pool {
		if k.tag == tagString {
			out = append(out, c.pool[k.a].utf8)
		}
	}
	return out
}
