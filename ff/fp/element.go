// Package fp implements arithmetic modulo the 381-bit prime
//
//	q = 0x1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaaab
//
// Elements are stored on 6 uint64 words in Montgomery form; all methods
// assume reduced inputs and produce reduced outputs.
package fp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/pellcurve/pell"
)

// Element represents a field element stored on 6 words (uint64).
//
// Elements are assumed to be in Montgomery form in all methods.
type Element [6]uint64

const (
	Limbs = 6         // number of 64 bits words needed to represent an Element
	Bits  = 381       // number of bits needed to represent an Element
	Bytes = Limbs * 8 // number of bytes needed to represent an Element
)

// Field modulus q
const (
	q0 uint64 = 13402431016077863595
	q1 uint64 = 2210141511517208575
	q2 uint64 = 7435674573564081700
	q3 uint64 = 7239337960414712511
	q4 uint64 = 5412103778470702295
	q5 uint64 = 1873798617647539866
)

var qElement = Element{q0, q1, q2, q3, q4, q5}

// q + r'.r = 1, i.e., qInvNeg = - q⁻¹ mod r
// used for Montgomery reduction
const qInvNeg uint64 = 9940570264628428797

// rSquare = r² mod q, with r = 2^384
var rSquare = Element{
	17644856173732828998,
	754043588434789617,
	10224657059481499349,
	7488229067341005760,
	11130996698012816685,
	1267921511277847466,
}

var (
	_modulus big.Int // q as a big.Int
	_sqrtExp big.Int // (q+1)/4, valid because q = 3 mod 4
	_invExp  big.Int // q-2
	_legExp  big.Int // (q-1)/2
)

func init() {
	_modulus.SetString("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaaab", 16)
	one := big.NewInt(1)
	_sqrtExp.Add(&_modulus, one)
	_sqrtExp.Rsh(&_sqrtExp, 2)
	_invExp.Sub(&_modulus, big.NewInt(2))
	_legExp.Sub(&_modulus, one)
	_legExp.Rsh(&_legExp, 1)
}

// Modulus returns q as a big.Int.
func Modulus() *big.Int {
	return new(big.Int).Set(&_modulus)
}

// SetUint64 sets z to v and returns z
func (z *Element) SetUint64(v uint64) *Element {
	// sets z LSB to v (non-Montgomery form) and convert z to Montgomery form
	*z = Element{v}
	return z.Mul(z, &rSquare) // z.toMont()
}

// SetInt64 sets z to v and returns z
func (z *Element) SetInt64(v int64) *Element {
	// absolute value of v
	m := v >> 63
	z.SetUint64(uint64((v ^ m) - m))
	if m != 0 {
		// v is negative
		z.Neg(z)
	}
	return z
}

// Set z = x and returns z
func (z *Element) Set(x *Element) *Element {
	z[0] = x[0]
	z[1] = x[1]
	z[2] = x[2]
	z[3] = x[3]
	z[4] = x[4]
	z[5] = x[5]
	return z
}

// SetZero z = 0
func (z *Element) SetZero() *Element {
	z[0] = 0
	z[1] = 0
	z[2] = 0
	z[3] = 0
	z[4] = 0
	z[5] = 0
	return z
}

// SetOne z = 1 (in Montgomery form)
func (z *Element) SetOne() *Element {
	z[0] = 8505329371266088957
	z[1] = 17002214543764226050
	z[2] = 6865905132761471162
	z[3] = 8632934651105793861
	z[4] = 6631298214892334189
	z[5] = 1582556514881692819
	return z
}

// One returns 1
func One() Element {
	var one Element
	one.SetOne()
	return one
}

// Equal returns z == x; constant-time
func (z *Element) Equal(x *Element) bool {
	return z.NotEqual(x) == 0
}

// NotEqual returns 0 if and only if z == x; constant-time
func (z *Element) NotEqual(x *Element) uint64 {
	return (z[5] ^ x[5]) | (z[4] ^ x[4]) | (z[3] ^ x[3]) | (z[2] ^ x[2]) | (z[1] ^ x[1]) | (z[0] ^ x[0])
}

// IsZero returns z == 0
func (z *Element) IsZero() bool {
	return (z[5] | z[4] | z[3] | z[2] | z[1] | z[0]) == 0
}

// IsOne returns z == 1
func (z *Element) IsOne() bool {
	return (z[5]^1582556514881692819 | z[4]^6631298214892334189 | z[3]^8632934651105793861 | z[2]^6865905132761471162 | z[1]^17002214543764226050 | z[0]^8505329371266088957) == 0
}

// smallerThanModulus returns true if z < q
// This is not constant time
func (z *Element) smallerThanModulus() bool {
	return (z[5] < q5 || (z[5] == q5 && (z[4] < q4 || (z[4] == q4 && (z[3] < q3 || (z[3] == q3 && (z[2] < q2 || (z[2] == q2 && (z[1] < q1 || (z[1] == q1 && (z[0] < q0)))))))))))
}

// Mul z = x * y (mod q)
//
// x and y must be strictly inferior to q
func (z *Element) Mul(x, y *Element) *Element {
	// Implements CIOS multiplication -- section 2.3.2 of Tolga Acar's thesis
	// https://www.microsoft.com/en-us/research/wp-content/uploads/1998/06/97Acar.pdf
	mul(z, x, y)
	return z
}

// Square z = x * x (mod q)
//
// x must be strictly inferior to q
func (z *Element) Square(x *Element) *Element {
	mul(z, x, x)
	return z
}

// Add z = x + y (mod q)
func (z *Element) Add(x, y *Element) *Element {
	var carry uint64
	z[0], carry = bits.Add64(x[0], y[0], 0)
	z[1], carry = bits.Add64(x[1], y[1], carry)
	z[2], carry = bits.Add64(x[2], y[2], carry)
	z[3], carry = bits.Add64(x[3], y[3], carry)
	z[4], carry = bits.Add64(x[4], y[4], carry)
	z[5], _ = bits.Add64(x[5], y[5], carry)

	// if z ≥ q → z -= q
	if !z.smallerThanModulus() {
		var b uint64
		z[0], b = bits.Sub64(z[0], q0, 0)
		z[1], b = bits.Sub64(z[1], q1, b)
		z[2], b = bits.Sub64(z[2], q2, b)
		z[3], b = bits.Sub64(z[3], q3, b)
		z[4], b = bits.Sub64(z[4], q4, b)
		z[5], _ = bits.Sub64(z[5], q5, b)
	}
	return z
}

// Double z = x + x (mod q), aka Lsh 1
func (z *Element) Double(x *Element) *Element {
	return z.Add(x, x)
}

// Sub z = x - y (mod q)
func (z *Element) Sub(x, y *Element) *Element {
	var b uint64
	z[0], b = bits.Sub64(x[0], y[0], 0)
	z[1], b = bits.Sub64(x[1], y[1], b)
	z[2], b = bits.Sub64(x[2], y[2], b)
	z[3], b = bits.Sub64(x[3], y[3], b)
	z[4], b = bits.Sub64(x[4], y[4], b)
	z[5], b = bits.Sub64(x[5], y[5], b)
	if b != 0 {
		var c uint64
		z[0], c = bits.Add64(z[0], q0, 0)
		z[1], c = bits.Add64(z[1], q1, c)
		z[2], c = bits.Add64(z[2], q2, c)
		z[3], c = bits.Add64(z[3], q3, c)
		z[4], c = bits.Add64(z[4], q4, c)
		z[5], _ = bits.Add64(z[5], q5, c)
	}
	return z
}

// Neg z = q - x
func (z *Element) Neg(x *Element) *Element {
	if x.IsZero() {
		z.SetZero()
		return z
	}
	var borrow uint64
	z[0], borrow = bits.Sub64(q0, x[0], 0)
	z[1], borrow = bits.Sub64(q1, x[1], borrow)
	z[2], borrow = bits.Sub64(q2, x[2], borrow)
	z[3], borrow = bits.Sub64(q3, x[3], borrow)
	z[4], borrow = bits.Sub64(q4, x[4], borrow)
	z[5], _ = bits.Sub64(q5, x[5], borrow)
	return z
}

// Halve sets z = z / 2 (mod q)
func (z *Element) Halve() {
	var carry uint64
	if z[0]&1 == 1 {
		// z = z + q
		z[0], carry = bits.Add64(z[0], q0, 0)
		z[1], carry = bits.Add64(z[1], q1, carry)
		z[2], carry = bits.Add64(z[2], q2, carry)
		z[3], carry = bits.Add64(z[3], q3, carry)
		z[4], carry = bits.Add64(z[4], q4, carry)
		z[5], carry = bits.Add64(z[5], q5, carry)
	}
	// z = z >> 1
	z[0] = z[0]>>1 | z[1]<<63
	z[1] = z[1]>>1 | z[2]<<63
	z[2] = z[2]>>1 | z[3]<<63
	z[3] = z[3]>>1 | z[4]<<63
	z[4] = z[4]>>1 | z[5]<<63
	z[5] = z[5]>>1 | carry<<63
}

func mul(z, x, y *Element) {
	var t [6]uint64
	var c [3]uint64
	{
		// round 0
		v := x[0]
		c[1], c[0] = bits.Mul64(v, y[0])
		m := c[0] * qInvNeg
		c[2] = madd0(m, q0, c[0])
		c[1], c[0] = madd1(v, y[1], c[1])
		c[2], t[0] = madd2(m, q1, c[2], c[0])
		c[1], c[0] = madd1(v, y[2], c[1])
		c[2], t[1] = madd2(m, q2, c[2], c[0])
		c[1], c[0] = madd1(v, y[3], c[1])
		c[2], t[2] = madd2(m, q3, c[2], c[0])
		c[1], c[0] = madd1(v, y[4], c[1])
		c[2], t[3] = madd2(m, q4, c[2], c[0])
		c[1], c[0] = madd1(v, y[5], c[1])
		t[5], t[4] = madd3(m, q5, c[0], c[2], c[1])
	}
	for i := 1; i < 6; i++ {
		v := x[i]
		c[1], c[0] = madd1(v, y[0], t[0])
		m := c[0] * qInvNeg
		c[2] = madd0(m, q0, c[0])
		c[1], c[0] = madd2(v, y[1], c[1], t[1])
		c[2], t[0] = madd2(m, q1, c[2], c[0])
		c[1], c[0] = madd2(v, y[2], c[1], t[2])
		c[2], t[1] = madd2(m, q2, c[2], c[0])
		c[1], c[0] = madd2(v, y[3], c[1], t[3])
		c[2], t[2] = madd2(m, q3, c[2], c[0])
		c[1], c[0] = madd2(v, y[4], c[1], t[4])
		c[2], t[3] = madd2(m, q4, c[2], c[0])
		c[1], c[0] = madd2(v, y[5], c[1], t[5])
		t[5], t[4] = madd3(m, q5, c[0], c[2], c[1])
	}
	z[0], z[1], z[2], z[3], z[4], z[5] = t[0], t[1], t[2], t[3], t[4], t[5]

	// if z ≥ q → z -= q
	if !z.smallerThanModulus() {
		var b uint64
		z[0], b = bits.Sub64(z[0], q0, 0)
		z[1], b = bits.Sub64(z[1], q1, b)
		z[2], b = bits.Sub64(z[2], q2, b)
		z[3], b = bits.Sub64(z[3], q3, b)
		z[4], b = bits.Sub64(z[4], q4, b)
		z[5], _ = bits.Sub64(z[5], q5, b)
	}
}

// fromMont converts z in place from Montgomery to regular representation
// with a modified CIOS multiplication by 1.
func (z *Element) fromMont() *Element {
	for i := 0; i < 6; i++ {
		m := z[0] * qInvNeg
		c := madd0(m, q0, z[0])
		c, z[0] = madd2(m, q1, z[1], c)
		c, z[1] = madd2(m, q2, z[2], c)
		c, z[2] = madd2(m, q3, z[3], c)
		c, z[3] = madd2(m, q4, z[4], c)
		c, z[4] = madd2(m, q5, z[5], c)
		z[5] = c
	}
	if !z.smallerThanModulus() {
		var b uint64
		z[0], b = bits.Sub64(z[0], q0, 0)
		z[1], b = bits.Sub64(z[1], q1, b)
		z[2], b = bits.Sub64(z[2], q2, b)
		z[3], b = bits.Sub64(z[3], q3, b)
		z[4], b = bits.Sub64(z[4], q4, b)
		z[5], _ = bits.Sub64(z[5], q5, b)
	}
	return z
}

// BitLen returns the minimum number of bits needed to represent z
// returns 0 if z == 0
func (z *Element) BitLen() int {
	t := *z
	t.fromMont()
	for i := Limbs - 1; i >= 0; i-- {
		if t[i] != 0 {
			return 64*i + bits.Len64(t[i])
		}
	}
	return 0
}

// Bytes returns the regular (non-Montgomery) value of z as a big-endian byte array.
func (z *Element) Bytes() (res [Bytes]byte) {
	t := *z
	t.fromMont()
	for i := 0; i < Limbs; i++ {
		binary.BigEndian.PutUint64(res[8*(Limbs-1-i):8*(Limbs-i)], t[i])
	}
	return
}

// SetBytes interprets e as a big-endian integer, reduces it mod q and sets z
// to the result.
func (z *Element) SetBytes(e []byte) *Element {
	var v big.Int
	v.SetBytes(e)
	return z.SetBigInt(&v)
}

// SetBigInt sets z to v mod q and returns z.
func (z *Element) SetBigInt(v *big.Int) *Element {
	var t big.Int
	t.Mod(v, &_modulus)
	words := t.Bits()
	z.SetZero()
	for i, w := range words {
		z[i] = uint64(w)
	}
	return z.Mul(z, &rSquare)
}

// BigInt writes the regular value of z into res and returns res.
func (z *Element) BigInt(res *big.Int) *big.Int {
	b := z.Bytes()
	return res.SetBytes(b[:])
}

// SetRandom sets z to a uniform random value in [0, q) by rejection sampling.
func (z *Element) SetRandom() (*Element, error) {
	var buf [Bytes]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, err
		}
		for i := 0; i < Limbs; i++ {
			z[i] = binary.LittleEndian.Uint64(buf[8*i : 8*i+8])
		}
		z[5] &= (uint64(1) << (Bits - 320)) - 1
		if z.smallerThanModulus() {
			return z, nil
		}
	}
}

// String returns the decimal representation of z.
func (z *Element) String() string {
	var v big.Int
	return z.BigInt(&v).String()
}

// Exp sets z = xᵏ (mod q)
func (z *Element) Exp(x Element, k *big.Int) *Element {
	if k.IsUint64() && k.Uint64() == 0 {
		return z.SetOne()
	}
	e := k
	if k.Sign() == -1 {
		// negative k, invert the base and use -k
		var err error
		if _, err = x.Inverse(&x); err != nil {
			// x == 0 and k < 0 has no meaning; keep z unchanged
			return z
		}
		e = new(big.Int).Neg(k)
	}
	z.Set(&x)
	for i := e.BitLen() - 2; i >= 0; i-- {
		z.Square(z)
		if e.Bit(i) == 1 {
			z.Mul(z, &x)
		}
	}
	return z
}

// Inverse sets z = 1/x (mod q) by Fermat exponentiation. It errors when x is
// zero.
func (z *Element) Inverse(x *Element) (*Element, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("fp: inverse of zero: %w", pell.ErrInvalidInput)
	}
	z.Exp(*x, &_invExp)
	return z, nil
}

// Legendre returns the Legendre symbol of z: 1 for a nonzero square, -1 for a
// non-square, 0 for zero.
func (z *Element) Legendre() int {
	var l Element
	l.Exp(*z, &_legExp)
	if l.IsZero() {
		return 0
	}
	if l.IsOne() {
		return 1
	}
	return -1
}

// Sqrt sets z to a square root of x and returns z, or an error when x is not
// a square. The exponentiation by (q+1)/4 is a square root candidate because
// q = 3 mod 4; the result is checked by squaring.
func (z *Element) Sqrt(x *Element) (*Element, error) {
	var r, s Element
	r.Exp(*x, &_sqrtExp)
	s.Square(&r)
	if !s.Equal(x) {
		return nil, fmt.Errorf("fp: not a square: %w", pell.ErrInvalidInput)
	}
	return z.Set(&r), nil
}

// BatchInvert sets res[i] = 1/a[i] for all i with a single inversion. It
// errors when any input is zero.
func BatchInvert(res, a []Element) error {
	n := len(a)
	if n == 0 || len(res) != n {
		return fmt.Errorf("fp: batch size mismatch: %w", pell.ErrInvalidInput)
	}
	t := make([]Element, n)
	t[0] = a[0]
	res[0] = a[0]
	for i := 1; i < n; i++ {
		t[i] = a[i]
		res[i].Mul(&res[i-1], &a[i])
	}
	var u Element
	if _, err := u.Inverse(&res[n-1]); err != nil {
		return err
	}
	for i := n - 1; i > 0; i-- {
		res[i].Mul(&u, &res[i-1])
		u.Mul(&u, &t[i])
	}
	res[0] = u
	return nil
}
