package fptower

import (
	"fmt"

	"github.com/pellcurve/pell"
)

// E6 is a direct extension of E2 by the cube root v of 1 + u.
type E6 struct {
	B0, B1, B2 E2
}

// Equal returns true if z equals x; constant-time
func (z *E6) Equal(x *E6) bool {
	return z.B0.Equal(&x.B0) && z.B1.Equal(&x.B1) && z.B2.Equal(&x.B2)
}

// SetZero sets z to 0
func (z *E6) SetZero() *E6 {
	z.B0.SetZero()
	z.B1.SetZero()
	z.B2.SetZero()
	return z
}

// SetOne sets z to 1
func (z *E6) SetOne() *E6 {
	z.SetZero()
	z.B0.A0.SetOne()
	return z
}

// Set sets z to x and returns z
func (z *E6) Set(x *E6) *E6 {
	z.B0 = x.B0
	z.B1 = x.B1
	z.B2 = x.B2
	return z
}

// SetRandom sets z to a uniform random value
func (z *E6) SetRandom() (*E6, error) {
	if _, err := z.B0.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := z.B1.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := z.B2.SetRandom(); err != nil {
		return nil, err
	}
	return z, nil
}

// IsZero returns true if z is zero
func (z *E6) IsZero() bool {
	return z.B0.IsZero() && z.B1.IsZero() && z.B2.IsZero()
}

// IsOne returns true if z is one
func (z *E6) IsOne() bool {
	return z.B0.IsOne() && z.B1.IsZero() && z.B2.IsZero()
}

// Add sets z = x + y
func (z *E6) Add(x, y *E6) *E6 {
	z.B0.Add(&x.B0, &y.B0)
	z.B1.Add(&x.B1, &y.B1)
	z.B2.Add(&x.B2, &y.B2)
	return z
}

// Sub sets z = x - y
func (z *E6) Sub(x, y *E6) *E6 {
	z.B0.Sub(&x.B0, &y.B0)
	z.B1.Sub(&x.B1, &y.B1)
	z.B2.Sub(&x.B2, &y.B2)
	return z
}

// Double sets z = 2x
func (z *E6) Double(x *E6) *E6 {
	z.B0.Double(&x.B0)
	z.B1.Double(&x.B1)
	z.B2.Double(&x.B2)
	return z
}

// Neg sets z = -x
func (z *E6) Neg(x *E6) *E6 {
	z.B0.Neg(&x.B0)
	z.B1.Neg(&x.B1)
	z.B2.Neg(&x.B2)
	return z
}

// Mul sets z = x * y using Karatsuba over the cubic extension
func (z *E6) Mul(x, y *E6) *E6 {
	var t0, t1, t2, c0, c1, c2, tmp E2
	t0.Mul(&x.B0, &y.B0)
	t1.Mul(&x.B1, &y.B1)
	t2.Mul(&x.B2, &y.B2)

	c0.Add(&x.B1, &x.B2)
	tmp.Add(&y.B1, &y.B2)
	c0.Mul(&c0, &tmp).Sub(&c0, &t1).Sub(&c0, &t2).MulByNonResidue(&c0).Add(&c0, &t0)

	c1.Add(&x.B0, &x.B1)
	tmp.Add(&y.B0, &y.B1)
	c1.Mul(&c1, &tmp).Sub(&c1, &t0).Sub(&c1, &t1)
	tmp.MulByNonResidue(&t2)
	c1.Add(&c1, &tmp)

	tmp.Add(&x.B0, &x.B2)
	c2.Add(&y.B0, &y.B2).Mul(&c2, &tmp).Sub(&c2, &t0).Sub(&c2, &t2).Add(&c2, &t1)

	z.B0 = c0
	z.B1 = c1
	z.B2 = c2
	return z
}

// Square sets z = x², algorithm 16 of https://eprint.iacr.org/2010/354.pdf
func (z *E6) Square(x *E6) *E6 {
	var c4, c5, c1, c2, c3, c0 E2
	c4.Mul(&x.B0, &x.B1).Double(&c4)
	c5.Square(&x.B2)
	c1.MulByNonResidue(&c5).Add(&c1, &c4)
	c2.Sub(&c4, &c5)
	c3.Square(&x.B0)
	c4.Sub(&x.B0, &x.B1).Add(&c4, &x.B2)
	c5.Mul(&x.B1, &x.B2).Double(&c5)
	c4.Square(&c4)
	c0.MulByNonResidue(&c5).Add(&c0, &c3)
	z.B2.Add(&c2, &c4).Add(&z.B2, &c5).Sub(&z.B2, &c3)
	z.B0 = c0
	z.B1 = c1
	return z
}

// MulByNonResidue sets z = x * v
func (z *E6) MulByNonResidue(x *E6) *E6 {
	z.B2, z.B1, z.B0 = x.B1, x.B0, x.B2
	z.B0.MulByNonResidue(&z.B0)
	return z
}

// MulByE2 sets z = x * (y, 0, 0)
func (z *E6) MulByE2(x *E6, y *E2) *E6 {
	z.B0.Mul(&x.B0, y)
	z.B1.Mul(&x.B1, y)
	z.B2.Mul(&x.B2, y)
	return z
}

// MulBy1 sets z = z * (0, c1, 0)
func (z *E6) MulBy1(c1 *E2) *E6 {
	var b, tmp, t0, t1 E2
	b.Mul(&z.B1, c1)
	tmp.Add(&z.B1, &z.B2)
	t0.Mul(c1, &tmp).Sub(&t0, &b).MulByNonResidue(&t0)
	tmp.Add(&z.B0, &z.B1)
	t1.Mul(c1, &tmp).Sub(&t1, &b)
	z.B0 = t0
	z.B1 = t1
	z.B2 = b
	return z
}

// MulBy01 sets z = z * (c0, c1, 0)
func (z *E6) MulBy01(c0, c1 *E2) *E6 {
	var a, b, tmp, t0, t1, t2 E2
	a.Mul(&z.B0, c0)
	b.Mul(&z.B1, c1)
	tmp.Add(&z.B1, &z.B2)
	t0.Mul(c1, &tmp).Sub(&t0, &b).MulByNonResidue(&t0).Add(&t0, &a)
	tmp.Add(&z.B0, &z.B2)
	t2.Mul(c0, &tmp).Sub(&t2, &a).Add(&t2, &b)
	t1.Add(c0, c1)
	tmp.Add(&z.B0, &z.B1)
	t1.Mul(&t1, &tmp).Sub(&t1, &a).Sub(&t1, &b)
	z.B0 = t0
	z.B1 = t1
	z.B2 = t2
	return z
}

// Inverse sets z = 1/x, algorithm 17 of https://eprint.iacr.org/2010/354.pdf.
// It errors when x is zero.
func (z *E6) Inverse(x *E6) (*E6, error) {
	var t0, t1, t2, t3, t4, t5, t6, c0, c1, c2, d1, d2 E2
	t0.Square(&x.B0)
	t1.Square(&x.B1)
	t2.Square(&x.B2)
	t3.Mul(&x.B0, &x.B1)
	t4.Mul(&x.B0, &x.B2)
	t5.Mul(&x.B1, &x.B2)
	c0.MulByNonResidue(&t5).Neg(&c0).Add(&c0, &t0)
	c1.MulByNonResidue(&t2).Sub(&c1, &t3)
	c2.Sub(&t1, &t4)
	t6.Mul(&x.B0, &c0)
	d1.Mul(&x.B2, &c1)
	d2.Mul(&x.B1, &c2)
	d1.Add(&d1, &d2).MulByNonResidue(&d1)
	t6.Add(&t6, &d1)
	if _, err := t6.Inverse(&t6); err != nil {
		return nil, fmt.Errorf("fptower: inverse of zero: %w", pell.ErrInvalidInput)
	}
	z.B0.Mul(&c0, &t6)
	z.B1.Mul(&c1, &t6)
	z.B2.Mul(&c2, &t6)
	return z, nil
}

// String implements fmt.Stringer
func (z *E6) String() string {
	return "(" + z.B0.String() + "," + z.B1.String() + "," + z.B2.String() + ")"
}
