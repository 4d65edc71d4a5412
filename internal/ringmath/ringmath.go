// Package ringmath holds the small generic integer helpers the alignment
// arithmetic in package spscring's DefaultAllocator is built from.
package ringmath

import "golang.org/x/exp/constraints"

// Clamp returns v restricted to [lo, hi]. It panics if lo > hi.
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if lo > hi {
		panic("ringmath: clamp: lo > hi")
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NextPow2 returns the smallest power of 2 that is >= v, for v > 0. It
// panics if v <= 0 or if the result would overflow T.
func NextPow2[T constraints.Unsigned](v T) T {
	if v == 0 {
		panic("ringmath: nextPow2: v must be > 0")
	}
	n := T(1)
	for n < v {
		next := n << 1
		if next <= n {
			panic("ringmath: nextPow2: overflow")
		}
		n = next
	}
	return n
}
