package fptower

import (
	"fmt"
	"math/big"

	"github.com/pellcurve/pell"
)

// E12 is a direct extension of E6 by the square root w of v.
type E12 struct {
	C0, C1 E6
}

// Equal returns true if z equals x; constant-time
func (z *E12) Equal(x *E12) bool {
	return z.C0.Equal(&x.C0) && z.C1.Equal(&x.C1)
}

// SetZero sets z to 0
func (z *E12) SetZero() *E12 {
	z.C0.SetZero()
	z.C1.SetZero()
	return z
}

// SetOne sets z to 1
func (z *E12) SetOne() *E12 {
	z.C0.SetOne()
	z.C1.SetZero()
	return z
}

// Set sets z to x and returns z
func (z *E12) Set(x *E12) *E12 {
	z.C0 = x.C0
	z.C1 = x.C1
	return z
}

// SetRandom sets z to a uniform random value
func (z *E12) SetRandom() (*E12, error) {
	if _, err := z.C0.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := z.C1.SetRandom(); err != nil {
		return nil, err
	}
	return z, nil
}

// IsZero returns true if z is zero
func (z *E12) IsZero() bool {
	return z.C0.IsZero() && z.C1.IsZero()
}

// IsOne returns true if z is one
func (z *E12) IsOne() bool {
	return z.C0.IsOne() && z.C1.IsZero()
}

// Add sets z = x + y
func (z *E12) Add(x, y *E12) *E12 {
	z.C0.Add(&x.C0, &y.C0)
	z.C1.Add(&x.C1, &y.C1)
	return z
}

// Sub sets z = x - y
func (z *E12) Sub(x, y *E12) *E12 {
	z.C0.Sub(&x.C0, &y.C0)
	z.C1.Sub(&x.C1, &y.C1)
	return z
}

// Neg sets z = -x
func (z *E12) Neg(x *E12) *E12 {
	z.C0.Neg(&x.C0)
	z.C1.Neg(&x.C1)
	return z
}

// Conjugate sets z = x̄, negating the odd part. For a unitary element the
// conjugate is the inverse.
func (z *E12) Conjugate(x *E12) *E12 {
	z.C0 = x.C0
	z.C1.Neg(&x.C1)
	return z
}

// Mul sets z = x * y using Karatsuba over the quadratic extension
func (z *E12) Mul(x, y *E12) *E12 {
	var a, b, c E6
	a.Add(&x.C0, &x.C1)
	b.Add(&y.C0, &y.C1)
	a.Mul(&a, &b)
	b.Mul(&x.C0, &y.C0)
	c.Mul(&x.C1, &y.C1)
	z.C1.Sub(&a, &b).Sub(&z.C1, &c)
	z.C0.MulByNonResidue(&c).Add(&z.C0, &b)
	return z
}

// Square sets z = x², algorithm 22 of https://eprint.iacr.org/2010/354.pdf
func (z *E12) Square(x *E12) *E12 {
	var c0, c2, c3 E6
	c0.Sub(&x.C0, &x.C1)
	c3.MulByNonResidue(&x.C1)
	c3.Sub(&x.C0, &c3)
	c2.Mul(&x.C0, &x.C1)
	c0.Mul(&c0, &c3).Add(&c0, &c2)
	z.C1.Double(&c2)
	c2.MulByNonResidue(&c2)
	z.C0.Add(&c0, &c2)
	return z
}

// CyclotomicSquare sets z = x² for x in the cyclotomic subgroup,
// https://eprint.iacr.org/2009/565.pdf section 3.1.
func (z *E12) CyclotomicSquare(x *E12) *E12 {
	// x = (x0, x1, x2, x3, x4, x5) over E2, with
	// sq(x) = (3*x4²*u + 3*x0² - 2*x0,
	//          3*x2²*u + 3*x3² - 2*x1,
	//          3*x5²*u + 3*x1² - 2*x2,
	//          6*x1*x5*u + 2*x3,
	//          6*x0*x4 + 2*x4,
	//          6*x2*x3 + 2*x5)
	var t [9]E2

	t[0].Square(&x.C1.B1)
	t[1].Square(&x.C0.B0)
	t[6].Add(&x.C1.B1, &x.C0.B0).Square(&t[6]).Sub(&t[6], &t[0]).Sub(&t[6], &t[1]) // 2*x4*x0
	t[2].Square(&x.C0.B2)
	t[3].Square(&x.C1.B0)
	t[7].Add(&x.C0.B2, &x.C1.B0).Square(&t[7]).Sub(&t[7], &t[2]).Sub(&t[7], &t[3]) // 2*x2*x3
	t[8].Add(&x.C1.B2, &x.C0.B1).Square(&t[8])
	t[4].Square(&x.C1.B2)
	t[5].Square(&x.C0.B1)
	t[8].Sub(&t[8], &t[4]).Sub(&t[8], &t[5]).MulByNonResidue(&t[8]) // 2*x5*x1*u

	t[0].MulByNonResidue(&t[0]).Add(&t[0], &t[1]) // x4²*u + x0²
	t[2].MulByNonResidue(&t[2]).Add(&t[2], &t[3]) // x2²*u + x3²
	t[4].MulByNonResidue(&t[4]).Add(&t[4], &t[5]) // x5²*u + x1²

	z.C0.B0.Sub(&t[0], &x.C0.B0).Double(&z.C0.B0).Add(&z.C0.B0, &t[0])
	z.C0.B1.Sub(&t[2], &x.C0.B1).Double(&z.C0.B1).Add(&z.C0.B1, &t[2])
	z.C0.B2.Sub(&t[4], &x.C0.B2).Double(&z.C0.B2).Add(&z.C0.B2, &t[4])

	z.C1.B0.Add(&t[8], &x.C1.B0).Double(&z.C1.B0).Add(&z.C1.B0, &t[8])
	z.C1.B1.Add(&t[6], &x.C1.B1).Double(&z.C1.B1).Add(&z.C1.B1, &t[6])
	z.C1.B2.Add(&t[7], &x.C1.B2).Double(&z.C1.B2).Add(&z.C1.B2, &t[7])
	return z
}

// Inverse sets z = 1/x, algorithm 23 of https://eprint.iacr.org/2010/354.pdf.
// It errors when x is zero.
func (z *E12) Inverse(x *E12) (*E12, error) {
	var t0, t1, tmp E6
	t0.Square(&x.C0)
	t1.Square(&x.C1)
	tmp.MulByNonResidue(&t1)
	t0.Sub(&t0, &tmp)
	if _, err := t1.Inverse(&t0); err != nil {
		return nil, fmt.Errorf("fptower: inverse of zero: %w", pell.ErrInvalidInput)
	}
	z.C0.Mul(&x.C0, &t1)
	z.C1.Mul(&x.C1, &t1).Neg(&z.C1)
	return z, nil
}

// InverseUnitary sets z = 1/x assuming x is unitary (its norm over E6 is
// one); the inverse is then the conjugate, with no field inversion.
func (z *E12) InverseUnitary(x *E12) *E12 {
	return z.Conjugate(x)
}

// IsUnitary returns true when x * x̄ == 1.
func (z *E12) IsUnitary() bool {
	var c, p E12
	c.Conjugate(z)
	p.Mul(z, &c)
	return p.IsOne()
}

// MulBy014 sets z = z * (c0, c1, 0, 0, c4, 0), the sparse shape produced by
// line evaluations.
func (z *E12) MulBy014(c0, c1, c4 *E2) *E12 {
	var a, b E6
	var d E2
	a.Set(&z.C0)
	a.MulBy01(c0, c1)
	b.Set(&z.C1)
	b.MulBy1(c4)
	d.Add(c1, c4)
	z.C1.Add(&z.C1, &z.C0)
	z.C1.MulBy01(c0, &d)
	z.C1.Sub(&z.C1, &a)
	z.C1.Sub(&z.C1, &b)
	z.C0.MulByNonResidue(&b)
	z.C0.Add(&z.C0, &a)
	return z
}

// Exp sets z = xᵏ (mod the field relations) for any signed k; a negative
// exponent inverts the base first.
func (z *E12) Exp(x E12, k *big.Int) (*E12, error) {
	if k.Sign() == 0 {
		return z.SetOne(), nil
	}
	e := k
	if k.Sign() == -1 {
		if _, err := x.Inverse(&x); err != nil {
			return nil, err
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
	return z, nil
}

// ExpUnitary sets z = xᵏ for a unitary x, squaring in the cyclotomic
// subgroup and taking conjugates for negative exponents.
func (z *E12) ExpUnitary(x E12, k *big.Int) *E12 {
	if k.Sign() == 0 {
		return z.SetOne()
	}
	e := k
	if k.Sign() == -1 {
		x.Conjugate(&x)
		e = new(big.Int).Neg(k)
	}
	z.Set(&x)
	for i := e.BitLen() - 2; i >= 0; i-- {
		z.CyclotomicSquare(z)
		if e.Bit(i) == 1 {
			z.Mul(z, &x)
		}
	}
	return z
}

// String implements fmt.Stringer
func (z *E12) String() string {
	return "(" + z.C0.String() + "," + z.C1.String() + ")"
}
