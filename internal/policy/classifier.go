// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package policy

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoized decisions.
const DefaultCacheSize = 4096

// Classification is the outcome of classifying one class name.
type Classification int

const (
	Shadow   Classification = iota // Renamed under the shadow prefix
	Keep                           // Unchanged, and an entry point
	Unshaded                       // Unchanged
	Ignored                        // Not an entry point; see Decision.Name
)

func (c Classification) String() string {
	switch c {
	case Shadow:
		return "shadow"
	case Keep:
		return "keep"
	case Unshaded:
		return "unshaded"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

// Decision is the classifier's verdict for a class name.
type Decision struct {
	Classification Classification
	Name           string // Renamed internal name
	EntryPoint     bool

	// Droppable is set for ignored classes with no keep root above them.
	// Only these are removed when the policy drops ignored classes.
	Droppable bool
}

type rule struct {
	root  string
	class Classification
}

// Classifier applies a RenamePolicy. It is safe for concurrent use.
type Classifier struct {
	policy RenamePolicy
	prefix string
	rules  []rule
	cache  *lru.Cache[string, Decision]
}

// NewClassifier validates p and returns a classifier with a decision cache
// of the given size; size <= 0 selects DefaultCacheSize.
func NewClassifier(p RenamePolicy, size int) (*Classifier, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, Decision](size)
	if err != nil {
		return nil, fmt.Errorf("creating decision cache: %w", err)
	}

	c := &Classifier{policy: p, prefix: p.shadowPrefix(), cache: cache}
	// Rule order is the tie-break order for equally long roots.
	add := func(entries []string, class Classification) {
		for _, e := range entries {
			c.rules = append(c.rules, rule{root: normalize(e), class: class})
		}
	}
	add(p.KeepPackages, Keep)
	add(p.UnshadedPackages, Unshaded)
	add(BootstrapPackages, Unshaded)
	add(p.IgnoredPackages, Ignored)
	return c, nil
}

// Policy returns the policy the classifier applies.
func (c *Classifier) Policy() RenamePolicy {
	return c.policy
}

// Classify returns the decision for an internal class name.
func (c *Classifier) Classify(name string) Decision {
	if d, ok := c.cache.Get(name); ok {
		return d
	}
	d := c.decide(name)
	c.cache.Add(name, d)
	return d
}

// Rename returns the renamed form of name. It has the signature the class
// file remapper expects.
func (c *Classifier) Rename(name string) string {
	return c.Classify(name).Name
}

func (c *Classifier) decide(name string) Decision {
	class, ok := c.match(name, nil)
	if !ok {
		return Decision{Classification: Shadow, Name: c.prefix + name}
	}
	switch class {
	case Keep:
		return Decision{Classification: Keep, Name: name, EntryPoint: true}
	case Unshaded:
		return Decision{Classification: Unshaded, Name: name}
	}

	// An ignored class nested under a keep or unshaded root keeps its
	// position; otherwise it is renamed like a shadowed class.
	d := Decision{Classification: Ignored, Name: c.prefix + name}
	if _, kept := c.match(name, func(r rule) bool { return r.class != Ignored }); kept {
		d.Name = name
	}
	_, keepRoot := c.match(name, func(r rule) bool { return r.class == Keep })
	d.Droppable = !keepRoot
	return d
}

// match returns the classification of the longest rule covering name,
// considering only rules accepted by filter when it is set.
func (c *Classifier) match(name string, filter func(rule) bool) (Classification, bool) {
	best := -1
	var class Classification
	for _, r := range c.rules {
		if filter != nil && !filter(r) {
			continue
		}
		if len(r.root) > best && under(name, r.root) {
			best = len(r.root)
			class = r.class
		}
	}
	return class, best >= 0
}
