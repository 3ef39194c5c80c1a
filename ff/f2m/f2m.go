// Package f2m implements arithmetic over the binary field GF(2^163) with
// reduction polynomial f(z) = z^163 + z^7 + z^6 + z^3 + 1.
//
// An Element is a polynomial over GF(2) of degree below 163, stored
// little-endian on 3 uint64 words. All exported operations return reduced
// elements; the *D variants operate on raw double-precision digit vectors
// and are reserved for callers that batch several carryless operations
// before a single reduction.
package f2m

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/pellcurve/pell"
)

const (
	// Bits is the extension degree m of the field.
	Bits = 163
	// Limbs is the number of 64-bit words of an Element.
	Limbs = 3
	// DLimbs is the number of words of a raw double-precision product.
	DLimbs = 2 * Limbs
)

// topMask masks the valid bits of the most significant word.
const topMask = (uint64(1) << (Bits - 128)) - 1

// Element is a binary-field element, little-endian on Limbs words.
type Element [Limbs]uint64

// poly is the reduction polynomial f(z) = z^163 + z^7 + z^6 + z^3 + 1.
// Bit 163 lives in word 2, bit 35.
var poly = Element{0xC9, 0, 1 << 35}

// sqrtZ is sqrt(z) = z^(2^162), computed once at package init.
var sqrtZ Element

// traceMask has bit j set iff Tr(z^j) = 1; the trace of an element is the
// parity of the popcount of (a AND traceMask).
var traceMask Element

func init() {
	// sqrt(z): square z until the Frobenius cycle closes.
	z := Element{2, 0, 0}
	sqrtZ = z
	for i := 0; i < Bits-1; i++ {
		sqrtZ.Square(&sqrtZ)
	}

	// Trace of each polynomial basis element.
	for j := 0; j < Bits; j++ {
		var s Element
		s[j>>6] = 1 << (j & 63)
		acc := s
		for i := 0; i < Bits-1; i++ {
			s.Square(&s)
			acc.Add(&acc, &s)
		}
		traceMask[j>>6] |= (acc[0] & 1) << (j & 63)
	}
}

// Poly returns the reduction polynomial, including its degree-163 term.
func Poly() Element {
	return poly
}

// Set z = x and returns z.
func (z *Element) Set(x *Element) *Element {
	z[0] = x[0]
	z[1] = x[1]
	z[2] = x[2]
	return z
}

// SetZero sets z = 0.
func (z *Element) SetZero() *Element {
	z[0], z[1], z[2] = 0, 0, 0
	return z
}

// SetOne sets z = 1.
func (z *Element) SetOne() *Element {
	z[0], z[1], z[2] = 1, 0, 0
	return z
}

// SetRandom sets z to a uniformly random reduced element.
func (z *Element) SetRandom() (*Element, error) {
	var buf [Limbs * 8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}
	for i := 0; i < Limbs; i++ {
		z[i] = 0
		for j := 0; j < 8; j++ {
			z[i] |= uint64(buf[i*8+j]) << (8 * j)
		}
	}
	z[Limbs-1] &= topMask
	return z, nil
}

// SetString sets z from a big-endian hexadecimal string. It errors when the
// string does not parse or encodes a polynomial of degree 163 or more.
func (z *Element) SetString(s string) (*Element, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok || v.Sign() < 0 || v.BitLen() > Bits {
		return nil, fmt.Errorf("f2m: bad element %q: %w", s, pell.ErrInvalidInput)
	}
	z.SetZero()
	for i, w := range v.Bits() {
		z[i] = uint64(w)
	}
	return z, nil
}

// Equal returns z == x.
func (z *Element) Equal(x *Element) bool {
	return (z[0]^x[0])|(z[1]^x[1])|(z[2]^x[2]) == 0
}

// IsZero returns z == 0.
func (z *Element) IsZero() bool {
	return z[0]|z[1]|z[2] == 0
}

// IsOne returns z == 1.
func (z *Element) IsOne() bool {
	return (z[0]^1)|z[1]|z[2] == 0
}

// Bit returns the coefficient of z^i.
func (z *Element) Bit(i int) uint64 {
	return (z[i>>6] >> (i & 63)) & 1
}

// SetBit sets the coefficient of z^i to one.
func (z *Element) SetBit(i int) *Element {
	z[i>>6] |= 1 << (i & 63)
	return z
}

// BitLen returns the number of bits needed to represent z; the degree of z
// is BitLen()-1. It returns 0 for the zero element.
func (z *Element) BitLen() int {
	for i := Limbs - 1; i >= 0; i-- {
		if z[i] != 0 {
			return 64*i + bits.Len64(z[i])
		}
	}
	return 0
}

// Add sets z = x + y. Addition is carry-free in characteristic two and
// never requires reduction.
func (z *Element) Add(x, y *Element) *Element {
	z[0] = x[0] ^ y[0]
	z[1] = x[1] ^ y[1]
	z[2] = x[2] ^ y[2]
	return z
}

// Sub is identical to Add in characteristic two.
func (z *Element) Sub(x, y *Element) *Element {
	return z.Add(x, y)
}

// Trace returns Tr(z), 0 or 1.
func (z *Element) Trace() uint64 {
	t := bits.OnesCount64(z[0]&traceMask[0]) +
		bits.OnesCount64(z[1]&traceMask[1]) +
		bits.OnesCount64(z[2]&traceMask[2])
	return uint64(t) & 1
}

// String returns z as a hexadecimal polynomial, most significant word first.
func (z *Element) String() string {
	return fmt.Sprintf("%016x%016x%016x", z[2], z[1], z[0])
}
