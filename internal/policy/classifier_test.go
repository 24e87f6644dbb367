// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package policy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassifier(t *testing.T, p RenamePolicy) *Classifier {
	t.Helper()
	c, err := NewClassifier(p, 0)
	require.NoError(t, err)
	return c
}

func TestClassify_KeepRootIsUnrenamedEntryPoint(t *testing.T) {
	c := newClassifier(t, RenamePolicy{ShadowPackage: "shadow", KeepPackages: []string{"com.acme"}})

	for _, name := range []string{"com/acme/Api", "com/acme/impl/Helper"} {
		d := c.Classify(name)
		assert.Equal(t, Keep, d.Classification, name)
		assert.Equal(t, name, d.Name)
		assert.True(t, d.EntryPoint)
	}
}

func TestClassify_ShadowAndUnshaded(t *testing.T) {
	c := newClassifier(t, RenamePolicy{
		ShadowPackage:    "com.acme.shaded",
		KeepPackages:     []string{"com/acme/E"},
		UnshadedPackages: []string{"lib"},
	})

	tests := []struct {
		name  string
		class Classification
		want  string
		entry bool
	}{
		{"com/acme/E", Keep, "com/acme/E", true},
		{"Shadowed", Shadow, "com/acme/shaded/Shadowed", false},
		{"org/dep/Util", Shadow, "com/acme/shaded/org/dep/Util", false},
		{"lib/X", Unshaded, "lib/X", false},
		{"java/lang/String", Unshaded, "java/lang/String", false},
		{"javax/inject/Inject", Shadow, "com/acme/shaded/javax/inject/Inject", false},
		{"com/acme/Other", Shadow, "com/acme/shaded/com/acme/Other", false},
		{"library/Y", Shadow, "com/acme/shaded/library/Y", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.Classify(tt.name)
			assert.Equal(t, tt.class, d.Classification)
			assert.Equal(t, tt.want, d.Name)
			assert.Equal(t, tt.entry, d.EntryPoint)
		})
	}
}

func TestClassify_LongestRuleWins(t *testing.T) {
	c := newClassifier(t, RenamePolicy{
		ShadowPackage:    "shadow",
		KeepPackages:     []string{"com/acme"},
		UnshadedPackages: []string{"com/acme/api/spi"},
		IgnoredPackages:  []string{"com/acme/internal", "org/dep/test"},
	})

	assert.Equal(t, Keep, c.Classify("com/acme/api/Client").Classification)
	assert.Equal(t, Unshaded, c.Classify("com/acme/api/spi/Plugin").Classification)

	// Ignored under a keep root keeps its name but is not an entry point.
	d := c.Classify("com/acme/internal/Cache")
	assert.Equal(t, Ignored, d.Classification)
	assert.Equal(t, "com/acme/internal/Cache", d.Name)
	assert.False(t, d.EntryPoint)
	assert.False(t, d.Droppable)

	// Ignored outside any keep or unshaded root is renamed.
	d = c.Classify("org/dep/test/Fixture")
	assert.Equal(t, Ignored, d.Classification)
	assert.Equal(t, "shadow/org/dep/test/Fixture", d.Name)
	assert.True(t, d.Droppable)
}

func TestClassify_DroppableNeedsNoKeepRoot(t *testing.T) {
	c := newClassifier(t, RenamePolicy{
		ShadowPackage:    "shadow",
		KeepPackages:     []string{"com.acme.api"},
		UnshadedPackages: []string{"org.lib"},
		IgnoredPackages:  []string{"com.acme.api.debug", "org.lib.debug"},
	})

	d := c.Classify("org/lib/debug/Dump")
	assert.Equal(t, "org/lib/debug/Dump", d.Name, "unshaded root keeps the name")
	assert.True(t, d.Droppable, "only a keep root protects an ignored class")

	assert.False(t, c.Classify("com/acme/api/debug/Trace").Droppable)
	assert.False(t, c.Classify("com/acme/api/Client").Droppable)
	assert.False(t, c.Classify("net/other/Thing").Droppable)
}

func TestClassify_NoRelocate(t *testing.T) {
	c := newClassifier(t, RenamePolicy{
		NoRelocate:      true,
		KeepPackages:    []string{"com.acme"},
		IgnoredPackages: []string{"org.dep.testing"},
	})

	d := c.Classify("org/dep/Util")
	assert.Equal(t, Shadow, d.Classification)
	assert.Equal(t, "org/dep/Util", d.Name)
	assert.Equal(t, "org/dep/testing/Fixture", c.Rename("org/dep/testing/Fixture"))
	assert.True(t, c.Classify("com/acme/Api").EntryPoint)
}

func TestClassify_SingleClassRule(t *testing.T) {
	c := newClassifier(t, RenamePolicy{
		ShadowPackage: "shadow",
		KeepPackages:  []string{"com.acme.Api"},
	})

	assert.Equal(t, Keep, c.Classify("com/acme/Api").Classification)
	assert.Equal(t, Shadow, c.Classify("com/acme/Api$Builder").Classification, "nested class is a distinct name")
	assert.Equal(t, Shadow, c.Classify("com/acme/ApiImpl").Classification)
}

func TestClassify_Idempotent(t *testing.T) {
	p := RenamePolicy{ShadowPackage: "shadow", KeepPackages: []string{"com/acme"}}
	c := newClassifier(t, p)
	fresh := newClassifier(t, p)

	for _, name := range []string{"com/acme/Api", "org/dep/A", "java/util/List"} {
		first := c.Classify(name)
		second := c.Classify(name)
		assert.Equal(t, first, second)
		assert.Equal(t, first, fresh.Classify(name))
		assert.Equal(t, first.Name, c.Rename(name))
	}
}

func TestClassify_ConcurrentUse(t *testing.T) {
	c, err := NewClassifier(RenamePolicy{ShadowPackage: "shadow"}, 8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range []string{"a/A", "b/B", "c/C", "d/D", "e/E", "f/F", "g/G", "h/H", "i/I"} {
				assert.Equal(t, "shadow/"+n, c.Rename(n))
			}
		}()
	}
	wg.Wait()
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "shadow", Shadow.String())
	assert.Equal(t, "keep", Keep.String())
	assert.Equal(t, "unshaded", Unshaded.String())
	assert.Equal(t, "ignored", Ignored.String())
}
