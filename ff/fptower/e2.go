// Package fptower implements the tower of extensions
//
//	Fp2  = Fp[u]/(u² + 1)
//	Fp6  = Fp2[v]/(v³ - (1 + u))
//	Fp12 = Fp6[w]/(w² - v)
//
// over the 381-bit base field of package fp.
package fptower

import (
	"fmt"
	"math/big"

	"github.com/pellcurve/pell"
	"github.com/pellcurve/pell/ff/fp"
)

// E2 is a degree two finite field extension of fp.Element.
type E2 struct {
	A0, A1 fp.Element
}

// Equal returns true if z equals x; constant-time
func (z *E2) Equal(x *E2) bool {
	return z.A0.Equal(&x.A0) && z.A1.Equal(&x.A1)
}

// SetZero sets z to 0
func (z *E2) SetZero() *E2 {
	z.A0.SetZero()
	z.A1.SetZero()
	return z
}

// SetOne sets z to 1 in Montgomery form and returns z
func (z *E2) SetOne() *E2 {
	z.A0.SetOne()
	z.A1.SetZero()
	return z
}

// Set sets z to x and returns z
func (z *E2) Set(x *E2) *E2 {
	z.A0 = x.A0
	z.A1 = x.A1
	return z
}

// SetRandom sets z to a uniform random value
func (z *E2) SetRandom() (*E2, error) {
	if _, err := z.A0.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := z.A1.SetRandom(); err != nil {
		return nil, err
	}
	return z, nil
}

// IsZero returns true if z is zero
func (z *E2) IsZero() bool {
	return z.A0.IsZero() && z.A1.IsZero()
}

// IsOne returns true if z is one
func (z *E2) IsOne() bool {
	return z.A0.IsOne() && z.A1.IsZero()
}

// Add sets z = x + y
func (z *E2) Add(x, y *E2) *E2 {
	z.A0.Add(&x.A0, &y.A0)
	z.A1.Add(&x.A1, &y.A1)
	return z
}

// Sub sets z = x - y
func (z *E2) Sub(x, y *E2) *E2 {
	z.A0.Sub(&x.A0, &y.A0)
	z.A1.Sub(&x.A1, &y.A1)
	return z
}

// Double sets z = 2x
func (z *E2) Double(x *E2) *E2 {
	z.A0.Double(&x.A0)
	z.A1.Double(&x.A1)
	return z
}

// Neg sets z = -x
func (z *E2) Neg(x *E2) *E2 {
	z.A0.Neg(&x.A0)
	z.A1.Neg(&x.A1)
	return z
}

// Conjugate sets z = x̄, the conjugate a0 - a1 u
func (z *E2) Conjugate(x *E2) *E2 {
	z.A0 = x.A0
	z.A1.Neg(&x.A1)
	return z
}

// Mul sets z = x * y using Karatsuba over the quadratic extension
func (z *E2) Mul(x, y *E2) *E2 {
	var a, b, c fp.Element
	a.Add(&x.A0, &x.A1)
	b.Add(&y.A0, &y.A1)
	a.Mul(&a, &b)
	b.Mul(&x.A0, &y.A0)
	c.Mul(&x.A1, &y.A1)
	z.A1.Sub(&a, &b).Sub(&z.A1, &c)
	z.A0.Sub(&b, &c)
	return z
}

// Square sets z = x² using the complex squaring identity
// (a0 + a1 u)² = (a0+a1)(a0-a1) + 2 a0 a1 u
func (z *E2) Square(x *E2) *E2 {
	var a, b fp.Element
	a.Add(&x.A0, &x.A1)
	b.Sub(&x.A0, &x.A1)
	a.Mul(&a, &b)
	b.Mul(&x.A0, &x.A1).Double(&b)
	z.A0 = a
	z.A1 = b
	return z
}

// MulByElement sets z = x * (y, 0)
func (z *E2) MulByElement(x *E2, y *fp.Element) *E2 {
	z.A0.Mul(&x.A0, y)
	z.A1.Mul(&x.A1, y)
	return z
}

// MulByNonResidue sets z = x * (1 + u), the cubic non-residue of the tower
func (z *E2) MulByNonResidue(x *E2) *E2 {
	var a fp.Element
	a.Sub(&x.A0, &x.A1)
	z.A1.Add(&x.A0, &x.A1)
	z.A0 = a
	return z
}

// Inverse sets z = 1/x. It errors when x is zero.
//
// 1/(a0 + a1 u) = (a0 - a1 u) / (a0² + a1²)
func (z *E2) Inverse(x *E2) (*E2, error) {
	var t0, t1 fp.Element
	t0.Square(&x.A0)
	t1.Square(&x.A1)
	t0.Add(&t0, &t1)
	if _, err := t1.Inverse(&t0); err != nil {
		return nil, fmt.Errorf("fptower: inverse of zero: %w", pell.ErrInvalidInput)
	}
	z.A0.Mul(&x.A0, &t1)
	z.A1.Mul(&x.A1, &t1).Neg(&z.A1)
	return z, nil
}

// Exp sets z = xᵏ for a non-negative k
func (z *E2) Exp(x E2, k *big.Int) *E2 {
	z.SetOne()
	for i := k.BitLen() - 1; i >= 0; i-- {
		z.Square(z)
		if k.Bit(i) == 1 {
			z.Mul(z, &x)
		}
	}
	return z
}

// String implements fmt.Stringer
func (z *E2) String() string {
	return z.A0.String() + "+" + z.A1.String() + "*u"
}
