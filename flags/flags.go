/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package flags maps processor-specific boolean options onto an integer
// config vector.
package flags

import (
	"fmt"
	"strings"
)

// MaxFlags is the number of options a vector can carry.
const MaxFlags = 63

// FlagDef is one named boolean option of a processor.
type FlagDef struct {
	Name    string `yaml:"name"`
	Default bool   `yaml:"default"`
}

// Catalog lists, per normalised processor name, its ordered options.
// Bit i of a config vector is option i.
type Catalog map[string][]FlagDef

// NormaliseProcessor strips the variant suffix of a processor name, so that
// "video/h264" and "video" share options.
func NormaliseProcessor(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}

// For returns the options of processor; unknown processors have none.
func (c Catalog) For(processor string) []FlagDef {
	return c[NormaliseProcessor(processor)]
}

// Names returns the ordered option names of processor.
func (c Catalog) Names(processor string) []string {
	defs := c.For(processor)
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// Defaults returns the config vector with every option at its default.
func (c Catalog) Defaults(processor string) int64 {
	var vec int64
	for i, d := range c.For(processor) {
		if d.Default {
			vec |= 1 << i
		}
	}
	return vec
}

// Validate rejects catalogs with empty, duplicate or too many options.
func (c Catalog) Validate() error {
	for processor, defs := range c {
		if NormaliseProcessor(processor) != processor {
			return fmt.Errorf("processor %q must be normalised as %q", processor, NormaliseProcessor(processor))
		}
		if len(defs) > MaxFlags {
			return fmt.Errorf("processor %q declares %d flags, at most %d allowed", processor, len(defs), MaxFlags)
		}
		seen := make(map[string]bool, len(defs))
		for _, d := range defs {
			if d.Name == "" {
				return fmt.Errorf("processor %q has a flag without name", processor)
			}
			if seen[d.Name] {
				return fmt.Errorf("processor %q declares flag %q twice", processor, d.Name)
			}
			seen[d.Name] = true
		}
	}
	return nil
}

// BitVector interprets an integer as named booleans.
type BitVector struct {
	names []string
	index map[string]int
	vec   int64
}

// NewBitVector reinterprets vec against the ordered names. Bits without a
// name are preserved.
func NewBitVector(names []string, vec int64) *BitVector {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return &BitVector{names: append([]string(nil), names...), index: index, vec: vec}
}

// Get returns the named bit and whether the name is known.
func (b *BitVector) Get(name string) (value, ok bool) {
	i, ok := b.index[name]
	if !ok {
		return false, false
	}
	return b.vec&(1<<i) != 0, true
}

// Set changes the named bit.
func (b *BitVector) Set(name string, value bool) error {
	i, ok := b.index[name]
	if !ok {
		return fmt.Errorf("unknown flag %q", name)
	}
	if value {
		b.vec |= 1 << i
	} else {
		b.vec &^= 1 << i
	}
	return nil
}

// Value returns the integer form.
func (b *BitVector) Value() int64 {
	return b.vec
}

// Names returns the ordered option names.
func (b *BitVector) Names() []string {
	return append([]string(nil), b.names...)
}

// Map returns every named bit.
func (b *BitVector) Map() map[string]bool {
	out := make(map[string]bool, len(b.names))
	for i, n := range b.names {
		out[n] = b.vec&(1<<i) != 0
	}
	return out
}
