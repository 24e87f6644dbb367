// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package classfile

// parser walks everything after the constant pool, recording the offset of
// every slot that names a UTF-8 constant.
type parser struct {
	cf *ClassFile
	r  *reader
}

// utf8Ref reads a u2 UTF-8 index and records it as a slot. A zero index is
// accepted when optional is set.
func (p *parser) utf8Ref(kind slotKind, optional bool) error {
	offset := p.r.pos
	idx := p.r.u2()
	if p.r.err != nil {
		return p.r.err
	}
	if idx == 0 && optional {
		return nil
	}
	if err := expectTag(p.cf.pool, idx, tagUtf8); err != nil {
		return malformedf("at offset %d: %v", offset, err)
	}
	p.cf.slots = append(p.cf.slots, slot{kind: kind, index: idx, offset: offset})
	return nil
}

// classRef reads a u2 CONSTANT_Class index.
func (p *parser) classRef(optional bool) (uint16, error) {
	offset := p.r.pos
	idx := p.r.u2()
	if p.r.err != nil {
		return 0, p.r.err
	}
	if idx == 0 && optional {
		return 0, nil
	}
	if err := expectTag(p.cf.pool, idx, tagClass); err != nil {
		return 0, malformedf("at offset %d: %v", offset, err)
	}
	return idx, nil
}

func (p *parser) body() error {
	var err error
	p.cf.AccessFlags = p.r.u2()
	if p.cf.thisClass, err = p.classRef(false); err != nil {
		return err
	}
	if p.cf.superClass, err = p.classRef(true); err != nil {
		return err
	}
	n := int(p.r.u2())
	for i := 0; i < n; i++ {
		idx, err := p.classRef(false)
		if err != nil {
			return err
		}
		p.cf.interfaces = append(p.cf.interfaces, idx)
	}
	for _, what := range []string{"field", "method"} {
		count := int(p.r.u2())
		for i := 0; i < count; i++ {
			p.r.skip(2) // access flags
			if err := p.utf8Ref(slotPlain, false); err != nil {
				return malformedf("%s %d name: %v", what, i, err)
			}
			if err := p.utf8Ref(slotDescriptor, false); err != nil {
				return malformedf("%s %d descriptor: %v", what, i, err)
			}
			if err := p.attributes(); err != nil {
				return err
			}
		}
	}
	if err := p.attributes(); err != nil {
		return err
	}
	if p.r.err != nil {
		return p.r.err
	}
	if !p.r.eof() {
		return malformedf("%d trailing bytes", len(p.r.data)-p.r.pos)
	}
	return nil
}

// attributes walks an attribute table. Known attributes are parsed within
// their declared length; anything else is skipped verbatim.
func (p *parser) attributes() error {
	count := int(p.r.u2())
	for i := 0; i < count; i++ {
		nameOffset := p.r.pos
		if err := p.utf8Ref(slotPlain, false); err != nil {
			return err
		}
		name := p.cf.pool[p.cf.slots[len(p.cf.slots)-1].index].utf8
		length := int(p.r.u4())
		if !p.r.need(length) {
			return p.r.err
		}
		end := p.r.pos + length
		outer := p.r
		p.r = &reader{data: outer.data[:end], pos: outer.pos}
		err := p.attribute(name)
		if err == nil && p.r.err != nil {
			err = p.r.err
		}
		if err == nil && p.r.pos != end {
			err = malformedf("attribute %s at offset %d: length mismatch", name, nameOffset)
		}
		p.r = outer
		if err != nil {
			return err
		}
		p.r.pos = end
	}
	return p.r.err
}

func (p *parser) attribute(name string) error {
	switch name {
	case "Code":
		p.r.skip(4) // max_stack, max_locals
		p.r.skip(int(p.r.u4()))
		p.r.skip(8 * int(p.r.u2())) // exception table
		return p.attributes()
	case "Signature":
		return p.utf8Ref(slotSignature, false)
	case "SourceFile":
		return p.utf8Ref(slotPlain, false)
	case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
		return p.annotations()
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		params := int(p.r.u1())
		for i := 0; i < params; i++ {
			if err := p.annotations(); err != nil {
				return err
			}
		}
	case "RuntimeVisibleTypeAnnotations", "RuntimeInvisibleTypeAnnotations":
		count := int(p.r.u2())
		for i := 0; i < count; i++ {
			if err := p.typeAnnotation(); err != nil {
				return err
			}
		}
	case "AnnotationDefault":
		return p.elementValue()
	case "LocalVariableTable", "LocalVariableTypeTable":
		kind := slotDescriptor
		if name == "LocalVariableTypeTable" {
			kind = slotSignature
		}
		count := int(p.r.u2())
		for i := 0; i < count; i++ {
			p.r.skip(4) // start_pc, length
			if err := p.utf8Ref(slotPlain, false); err != nil {
				return err
			}
			if err := p.utf8Ref(kind, false); err != nil {
				return err
			}
			p.r.skip(2) // index
		}
	case "InnerClasses":
		count := int(p.r.u2())
		for i := 0; i < count; i++ {
			if _, err := p.classRef(false); err != nil {
				return err
			}
			if _, err := p.classRef(true); err != nil {
				return err
			}
			if err := p.utf8Ref(slotPlain, true); err != nil {
				return err
			}
			p.r.skip(2) // flags
		}
	case "MethodParameters":
		count := int(p.r.u1())
		for i := 0; i < count; i++ {
			if err := p.utf8Ref(slotPlain, true); err != nil {
				return err
			}
			p.r.skip(2) // flags
		}
	case "Record":
		count := int(p.r.u2())
		for i := 0; i < count; i++ {
			if err := p.utf8Ref(slotPlain, false); err != nil {
				return err
			}
			if err := p.utf8Ref(slotDescriptor, false); err != nil {
				return err
			}
			if err := p.attributes(); err != nil {
				return err
			}
		}
	default:
		// Standard attributes listed in noUtf8Refs point only at
		// CONSTANT_Class or other pool entries, which the pool walk covers.
		// Anything else is skipped verbatim and marks the file opaque.
		if !noUtf8Refs[name] {
			p.cf.opaque = true
		}
		p.r.pos = len(p.r.data)
	}
	return nil
}

// noUtf8Refs lists the standard attributes that hold no direct UTF-8
// constant indexes.
var noUtf8Refs = map[string]bool{
	"ConstantValue":        true,
	"StackMapTable":        true,
	"Exceptions":           true,
	"EnclosingMethod":      true,
	"Synthetic":            true,
	"Deprecated":           true,
	"SourceDebugExtension": true,
	"LineNumberTable":      true,
	"BootstrapMethods":     true,
	"NestHost":             true,
	"NestMembers":          true,
	"PermittedSubclasses":  true,
	"ModulePackages":       true,
	"ModuleMainClass":      true,
}

func (p *parser) annotations() error {
	count := int(p.r.u2())
	for i := 0; i < count; i++ {
		if err := p.annotation(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) annotation() error {
	if err := p.utf8Ref(slotDescriptor, false); err != nil {
		return err
	}
	pairs := int(p.r.u2())
	for i := 0; i < pairs; i++ {
		if err := p.utf8Ref(slotPlain, false); err != nil {
			return err
		}
		if err := p.elementValue(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) elementValue() error {
	switch tag := p.r.u1(); tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		p.r.skip(2) // numeric constant
	case 's':
		return p.utf8Ref(slotPlain, false)
	case 'e':
		if err := p.utf8Ref(slotDescriptor, false); err != nil {
			return err
		}
		return p.utf8Ref(slotPlain, false)
	case 'c':
		return p.utf8Ref(slotDescriptor, false)
	case '@':
		return p.annotation()
	case '[':
		count := int(p.r.u2())
		for i := 0; i < count; i++ {
			if err := p.elementValue(); err != nil {
				return err
			}
		}
	default:
		if p.r.err != nil {
			return p.r.err
		}
		return malformedf("unknown element value tag %q at offset %d", tag, p.r.pos-1)
	}
	return nil
}

func (p *parser) typeAnnotation() error {
	switch target := p.r.u1(); target {
	case 0x00, 0x01, 0x16: // type parameter, formal parameter
		p.r.skip(1)
	case 0x10, 0x17, 0x42, 0x43, 0x44, 0x45, 0x46: // supertype, throws, catch, offsets
		p.r.skip(2)
	case 0x11, 0x12: // type parameter bound
		p.r.skip(2)
	case 0x13, 0x14, 0x15: // empty target
	case 0x40, 0x41: // local variable
		p.r.skip(6 * int(p.r.u2()))
	case 0x47, 0x48, 0x49, 0x4A, 0x4B: // type argument
		p.r.skip(3)
	default:
		if p.r.err != nil {
			return p.r.err
		}
		return malformedf("unknown type annotation target 0x%02x at offset %d", target, p.r.pos-1)
	}
	p.r.skip(2 * int(p.r.u1())) // type_path
	return p.annotation()
}
