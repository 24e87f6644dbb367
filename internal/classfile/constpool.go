// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package classfile

import "encoding/binary"

// Constant pool tags (JVMS §4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// constant is one constant pool entry. UTF-8 values are kept as the raw
// modified UTF-8 bytes; class names only ever gain an ASCII prefix, so the
// encoding never needs decoding.
type constant struct {
	tag  uint8
	utf8 string
	a, b uint16 // index operands, meaning depends on tag
	raw  []byte // numeric payload, or the reference kind of a method handle
}

// readPool reads the constant pool. Slot 0 and the slot following a long or
// double are left with tag 0.
func readPool(r *reader) ([]constant, error) {
	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	if count == 0 {
		return nil, malformedf("empty constant pool")
	}
	pool := make([]constant, count)
	for i := 1; i < count; i++ {
		c := constant{tag: r.u1()}
		switch c.tag {
		case tagUtf8:
			n := int(r.u2())
			c.utf8 = string(r.bytes(n))
		case tagInteger, tagFloat:
			c.raw = r.bytes(4)
		case tagLong, tagDouble:
			c.raw = r.bytes(8)
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			c.a = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			c.a = r.u2()
			c.b = r.u2()
		case tagMethodHandle:
			c.raw = r.bytes(1)
			c.a = r.u2()
		default:
			if r.err == nil {
				return nil, malformedf("unknown constant tag %d at index %d", c.tag, i)
			}
		}
		if r.err != nil {
			return nil, r.err
		}
		pool[i] = c
		if c.tag == tagLong || c.tag == tagDouble {
			i++
			if i >= count {
				return nil, malformedf("wide constant at index %d overruns pool", i-1)
			}
		}
	}
	return pool, nil
}

// checkPool validates cross references between constants.
func checkPool(pool []constant) error {
	for i, c := range pool {
		var err error
		switch c.tag {
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			err = expectTag(pool, c.a, tagUtf8)
		case tagNameAndType:
			if err = expectTag(pool, c.a, tagUtf8); err == nil {
				err = expectTag(pool, c.b, tagUtf8)
			}
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			if err = expectTag(pool, c.a, tagClass); err == nil {
				err = expectTag(pool, c.b, tagNameAndType)
			}
		case tagDynamic, tagInvokeDynamic:
			err = expectTag(pool, c.b, tagNameAndType)
		case tagMethodHandle:
			if c.a == 0 || int(c.a) >= len(pool) {
				err = malformedf("method handle reference %d out of range", c.a)
			}
		}
		if err != nil {
			return malformedf("constant %d: %v", i, err)
		}
	}
	return nil
}

func expectTag(pool []constant, index uint16, tag uint8) error {
	if index == 0 || int(index) >= len(pool) {
		return malformedf("constant index %d out of range", index)
	}
	if pool[index].tag != tag {
		return malformedf("constant %d has tag %d, want %d", index, pool[index].tag, tag)
	}
	return nil
}

// appendPool serializes the pool, count included.
func appendPool(buf []byte, pool []constant) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(pool)))
	for _, c := range pool {
		if c.tag == 0 {
			continue
		}
		buf = append(buf, c.tag)
		switch c.tag {
		case tagUtf8:
			buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.utf8)))
			buf = append(buf, c.utf8...)
		case tagInteger, tagFloat, tagLong, tagDouble:
			buf = append(buf, c.raw...)
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			buf = binary.BigEndian.AppendUint16(buf, c.a)
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			buf = binary.BigEndian.AppendUint16(buf, c.a)
			buf = binary.BigEndian.AppendUint16(buf, c.b)
		case tagMethodHandle:
			buf = append(buf, c.raw...)
			buf = binary.BigEndian.AppendUint16(buf, c.a)
		}
	}
	return buf
}
