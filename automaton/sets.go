package automaton

import (
	"github.com/bits-and-blooms/bitset"
)

// Sets stored in contexts and guards are never modified, nil means empty set.

func union(a, b *bitset.BitSet) *bitset.BitSet {
	if a == nil || a.None() {
		return b
	}
	if b == nil || b.None() {
		return a
	}
	return a.Union(b)
}

func minus(a, b *bitset.BitSet) *bitset.BitSet {
	if a == nil || b == nil || b.None() {
		return a
	}
	return a.Difference(b)
}

func contains(s *bitset.BitSet, i int) bool {
	return s != nil && s.Test(uint(i))
}

func setKey(s *bitset.BitSet) string {
	if s == nil || s.None() {
		return ""
	}
	return s.String()
}

func setOf(size int, items ...int) *bitset.BitSet {
	res := bitset.New(uint(size))
	for _, i := range items {
		res.Set(uint(i))
	}
	return res
}
