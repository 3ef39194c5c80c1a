// Package dv manages temporary double-precision digit vectors.
//
// A digit vector has enough capacity to hold a raw (unreduced) multiplication
// result in any of the library's finite fields. Vectors are pooled; callers
// must release every vector they acquire, on every exit path.
package dv

import (
	"fmt"
	"sync"

	"github.com/pellcurve/pell"
)

// MaxDigits is the capacity of a digit vector, in 64-bit digits. It is twice
// the largest field element size plus slack for shifted additions.
const MaxDigits = 16

// Vector is a temporary double-precision digit vector, little-endian.
type Vector []uint64

var pool = sync.Pool{
	New: func() interface{} {
		v := make(Vector, MaxDigits)
		return &v
	},
}

// New acquires a zeroed vector of n digits from the pool.
func New(n int) (Vector, error) {
	if n > MaxDigits {
		return nil, fmt.Errorf("dv: %d digits requested: %w", n, pell.ErrPrecision)
	}
	v := *(pool.Get().(*Vector))
	v = v[:n]
	Zero(v)
	return v, nil
}

// Release returns a vector acquired with New to the pool.
func Release(v Vector) {
	v = v[:cap(v)]
	pool.Put(&v)
}

// Zero clears all digits of v.
func Zero(v Vector) {
	for i := range v {
		v[i] = 0
	}
}

// Copy copies n digits from src into dst.
func Copy(dst, src Vector, n int) {
	copy(dst[:n], src[:n])
}

// Cmp compares two n-digit vectors, most-significant digit first.
// It returns -1, 0 or 1.
func Cmp(a, b Vector, n int) int {
	for i := n - 1; i >= 0; i-- {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
