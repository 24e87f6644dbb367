// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package classfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Remap returns the class file with every class reference passed through
// mapping. UTF-8 constants used only as class names, descriptors or
// signatures are rewritten in place. A constant that is also used as a
// plain string (a literal, a member name) keeps its value, and the class
// uses are pointed at appended constants instead. The same applies to every
// constant when the file carries an attribute of unknown layout. Everything
// after the constant pool is copied verbatim apart from those index updates.
func (c *ClassFile) Remap(mapping func(string) string) ([]byte, error) {
	values := make([]string, len(c.slots))
	plain := make(map[uint16]bool)
	for i, s := range c.slots {
		orig := c.pool[s.index].utf8
		var err error
		switch s.kind {
		case slotPlain:
			plain[s.index] = true
			values[i] = orig
		case slotClassName:
			values[i], err = remapInternalName(orig, mapping)
		default:
			values[i], err = remapSignature(orig, mapping)
		}
		if err != nil {
			return nil, err
		}
		if len(values[i]) > math.MaxUint16 {
			return nil, fmt.Errorf("remapping %s: constant %q exceeds 65535 bytes", c.Name(), values[i])
		}
	}

	// A constant may be rewritten in place only when every use agrees on
	// the new value and no unparsed attribute could be another use.
	agreed := make(map[uint16]string)
	conflict := make(map[uint16]bool)
	for i, s := range c.slots {
		if s.kind == slotPlain {
			continue
		}
		if v, ok := agreed[s.index]; c.opaque || (ok && v != values[i]) {
			conflict[s.index] = true
		}
		agreed[s.index] = values[i]
	}

	pool := make([]constant, len(c.pool))
	copy(pool, c.pool)
	for idx, v := range agreed {
		if !plain[idx] && !conflict[idx] {
			pool[idx].utf8 = v
		}
	}

	rest := make([]byte, len(c.data)-c.poolEnd)
	copy(rest, c.data[c.poolEnd:])
	added := make(map[string]uint16)
	for i, s := range c.slots {
		if s.kind == slotPlain || values[i] == c.pool[s.index].utf8 {
			continue
		}
		if !plain[s.index] && !conflict[s.index] {
			continue
		}
		idx, ok := added[values[i]]
		if !ok {
			if len(pool) >= math.MaxUint16 {
				return nil, fmt.Errorf("remapping %s: constant pool overflow", c.Name())
			}
			idx = uint16(len(pool))
			pool = append(pool, constant{tag: tagUtf8, utf8: values[i]})
			added[values[i]] = idx
		}
		switch {
		case s.offset >= 0:
			binary.BigEndian.PutUint16(rest[s.offset-c.poolEnd:], idx)
		case s.second:
			pool[s.entry].b = idx
		default:
			pool[s.entry].a = idx
		}
	}

	out := make([]byte, 0, len(c.data)+64*len(added))
	out = append(out, c.data[:8]...) // magic and version
	out = appendPool(out, pool)
	out = append(out, rest...)
	return out, nil
}
