// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package classfile

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-shade/internal/classfile/classfiletest"
)

func shadowDep(name string) string {
	if strings.HasPrefix(name, "com/dep/") {
		return "shadow/" + name
	}
	return name
}

func sampleClass() []byte {
	return classfiletest.New("com/acme/Api").
		Implements("com/dep/Service").
		Field("helper", "Lcom/dep/Helper;").
		Method("run", "(Lcom/dep/Arg;)Lcom/dep/Result;").
		Invoke("com/dep/Util", "call", "(Lcom/dep/Arg;)V").
		Annotate("Lcom/dep/Marker;", "Lcom/dep/Value;").
		Signature("Ljava/lang/Object;Lcom/dep/Service<Lcom/dep/Elem;>;").
		Bytes()
}

func TestRemap_IdentityIsByteIdentical(t *testing.T) {
	data := sampleClass()
	cf, err := Parse(data)
	require.NoError(t, err)

	out, err := cf.Remap(func(name string) string { return name })
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestRemap_RenamesEveryReference(t *testing.T) {
	cf, err := Parse(sampleClass())
	require.NoError(t, err)

	out, err := cf.Remap(shadowDep)
	require.NoError(t, err)

	renamed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "com/acme/Api", renamed.Name())
	assert.Equal(t, []string{"shadow/com/dep/Service"}, renamed.InterfaceNames())

	refs := renamed.References()
	for _, r := range refs {
		assert.False(t, strings.HasPrefix(r, "com/dep/"), "reference %s was not renamed", r)
	}
	for _, want := range []string{
		"shadow/com/dep/Arg",
		"shadow/com/dep/Elem",
		"shadow/com/dep/Helper",
		"shadow/com/dep/Marker",
		"shadow/com/dep/Result",
		"shadow/com/dep/Service",
		"shadow/com/dep/Util",
		"shadow/com/dep/Value",
	} {
		assert.Contains(t, refs, want)
	}
}

func TestRemap_SharedStringConstantKeepsValue(t *testing.T) {
	data := classfiletest.New("com/acme/Api").
		Implements("com/dep/Helper").
		StringConstant("com/dep/Helper").
		Bytes()
	cf, err := Parse(data)
	require.NoError(t, err)

	out, err := cf.Remap(shadowDep)
	require.NoError(t, err)

	renamed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"shadow/com/dep/Helper"}, renamed.InterfaceNames())
	assert.Equal(t, []string{"com/dep/Helper"}, renamed.StringConstants())
}

func TestRemap_DeclaredClassSharingAttributeName(t *testing.T) {
	// The class name "Code" shares its UTF-8 constant with the Code
	// attribute name, which must survive the rename.
	data := classfiletest.New("Code").Method("run", "()V").Bytes()
	cf, err := Parse(data)
	require.NoError(t, err)

	out, err := cf.Remap(func(name string) string {
		if name == "Code" {
			return "shadow/Code"
		}
		return name
	})
	require.NoError(t, err)

	renamed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "shadow/Code", renamed.Name())
	assert.Contains(t, renamed.References(), "shadow/Code")
	assert.NotContains(t, renamed.References(), "Code")
}

func TestRemap_UnknownAttributeKeepsConstants(t *testing.T) {
	build := func(vendor bool) (*ClassFile, uint16) {
		b := classfiletest.New("com/acme/Api").Implements("com/dep/Thing")
		idx := b.UTF8("com/dep/Thing")
		if vendor {
			b.RawAttribute("com.vendor.Meta", binary.BigEndian.AppendUint16(nil, idx))
		} else {
			b.RawAttribute("Deprecated", nil)
		}
		cf, err := Parse(b.Bytes())
		require.NoError(t, err)
		return cf, idx
	}

	remapped := func(cf *ClassFile) *ClassFile {
		out, err := cf.Remap(shadowDep)
		require.NoError(t, err)
		rc, err := Parse(out)
		require.NoError(t, err)
		return rc
	}

	cf, idx := build(false)
	assert.False(t, cf.opaque)
	rc := remapped(cf)
	assert.Equal(t, []string{"shadow/com/dep/Thing"}, rc.InterfaceNames())
	assert.Equal(t, "shadow/com/dep/Thing", rc.pool[idx].utf8, "rewritten in place")

	cf, idx = build(true)
	assert.True(t, cf.opaque)
	rc = remapped(cf)
	assert.Equal(t, []string{"shadow/com/dep/Thing"}, rc.InterfaceNames())
	assert.Equal(t, "com/dep/Thing", rc.pool[idx].utf8, "the vendor attribute still sees its value")

	out, err := cf.Remap(func(name string) string { return name })
	require.NoError(t, err)
	assert.Equal(t, cf.data, out, "identity stays byte-identical")
}

func TestRemap_InnerClassSignature(t *testing.T) {
	data := classfiletest.New("com/acme/Api").
		GenericField("f", "Lcom/dep/Outer$Inner;", "Lcom/dep/Outer<Ljava/lang/String;>.Inner;").
		Bytes()
	cf, err := Parse(data)
	require.NoError(t, err)

	out, err := cf.Remap(shadowDep)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Lshadow/com/dep/Outer<Ljava/lang/String;>.Inner;")

	renamed, err := Parse(out)
	require.NoError(t, err)
	assert.Contains(t, renamed.References(), "shadow/com/dep/Outer$Inner")
}

func TestRemap_Deterministic(t *testing.T) {
	cf, err := Parse(sampleClass())
	require.NoError(t, err)

	first, err := cf.Remap(shadowDep)
	require.NoError(t, err)
	second, err := cf.Remap(shadowDep)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
