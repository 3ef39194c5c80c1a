package ecb

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/pellcurve/pell"
	"github.com/pellcurve/pell/ff/f2m"
	"github.com/pellcurve/pell/internal/recode"
)

// Mul sets r = kP using the configured strategy.
func (c *Curve) Mul(r, p *Point, k *big.Int) error {
	switch mulAlg {
	case MulAlgBasic:
		return c.MulBasic(r, p, k)
	case MulAlgLwnaf:
		return c.MulLwnaf(r, p, k)
	case MulAlgRwnaf:
		return c.MulRwnaf(r, p, k)
	case MulAlgHalve:
		return c.MulHalve(r, p, k)
	default:
		return c.MulLodah(r, p, k)
	}
}

// mulTrivial handles the degenerate scalars shared by every strategy. It
// returns the absolute scalar, whether the result must be negated, and
// whether r was already written.
func mulTrivial(r, p *Point, k *big.Int) (*big.Int, bool, bool) {
	if p.IsInfinity() || k.Sign() == 0 {
		r.SetInfinity()
		return nil, false, true
	}
	if k.Sign() < 0 {
		return new(big.Int).Neg(k), true, false
	}
	return k, false, false
}

// MulBasic sets r = kP by double-and-add.
func (c *Curve) MulBasic(r, p *Point, k *big.Int) error {
	k, neg, done := mulTrivial(r, p, k)
	if done {
		return nil
	}
	var pa, acc Point
	c.Norm(&pa, p)
	acc.SetInfinity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		c.Dbl(&acc, &acc)
		if k.Bit(i) == 1 {
			c.Add(&acc, &acc, &pa)
		}
	}
	c.Norm(r, &acc)
	if neg {
		c.Neg(r, r)
	}
	return nil
}

// MulDig sets r = dP for a single-word scalar.
func (c *Curve) MulDig(r, p *Point, d uint64) {
	if p.IsInfinity() || d == 0 {
		r.SetInfinity()
		return
	}
	var pa, acc Point
	c.Norm(&pa, p)
	acc.SetInfinity()
	for i := bits.Len64(d) - 1; i >= 0; i-- {
		c.Dbl(&acc, &acc)
		if (d>>uint(i))&1 == 1 {
			c.Add(&acc, &acc, &pa)
		}
	}
	c.Norm(r, &acc)
}

// MulLwnaf sets r = kP processing a left-to-right signed window expansion:
// τ-adic NAF with Frobenius steps on Koblitz curves, plain NAF with
// doublings otherwise.
func (c *Curve) MulLwnaf(r, p *Point, k *big.Int) error {
	k, neg, done := mulTrivial(r, p, k)
	if done {
		return nil
	}
	var t []Point
	if c.Family == FamilyKoblitz {
		t = c.tabTnaf(p, mulWidth)
	} else {
		t = c.Tab(p, mulWidth)
	}
	if err := c.mulLeft(r, t, k, mulWidth); err != nil {
		return err
	}
	if neg {
		c.Neg(r, r)
	}
	return nil
}

// mulSigned sets r = dP for a small signed single-word scalar.
func (c *Curve) mulSigned(r, p *Point, d int64) {
	if d < 0 {
		c.MulDig(r, p, uint64(-d))
		c.Neg(r, r)
		return
	}
	c.MulDig(r, p, uint64(d))
}

// tabTnaf returns the width-w τ-NAF digit table of a Koblitz curve,
// normalized: entry j holds β_j P + γ_j τP, the point the digit 2j+1
// stands for.
func (c *Curve) tabTnaf(p *Point, w uint) []Point {
	beta, gama := recode.TnafAlpha(c.Tau.Mu, w)
	t := make([]Point, len(beta))
	var a, f, u, v Point
	c.Norm(&a, p)
	c.Frb(&f, &a)
	t[0] = a // β = 1, γ = 0
	for j := 1; j < len(t); j++ {
		c.mulSigned(&u, &a, beta[j])
		c.mulSigned(&v, &f, gama[j])
		c.Add(&t[j], &u, &v)
	}
	c.NormSim(t)
	return t
}

// mulLeft runs the left-to-right loop over a precomputed table: odd
// multiples on ordinary curves, τ-NAF digit representatives on Koblitz
// curves.
func (c *Curve) mulLeft(r *Point, t []Point, k *big.Int, w uint) error {
	var digits []int8
	var err error
	koblitz := c.Family == FamilyKoblitz
	if koblitz {
		digits, err = recode.Tnaf(k, w, c.Tau)
	} else {
		digits, err = recode.Naf(k, w)
	}
	if err != nil {
		return err
	}
	var acc Point
	acc.SetInfinity()
	for i := len(digits) - 1; i >= 0; i-- {
		if koblitz {
			c.Frb(&acc, &acc)
		} else {
			c.Dbl(&acc, &acc)
		}
		if d := digits[i]; d > 0 {
			c.Add(&acc, &acc, &t[d>>1])
		} else if d < 0 {
			c.Sub(&acc, &acc, &t[(-d)>>1])
		}
	}
	c.Norm(r, &acc)
	return nil
}

// mulSmallOdd sets r = dP for the odd digit values of the right-to-left
// recombination; each width gets its fixed addition chain.
func (c *Curve) mulSmallOdd(r, p *Point, d uint64) {
	var t Point
	switch d {
	case 1:
		c.Norm(r, p)
	case 3:
		c.Dbl(&t, p)
		c.Add(r, &t, p)
	case 5:
		c.Dbl(&t, p)
		c.Dbl(&t, &t)
		c.Add(r, &t, p)
	case 7:
		c.Dbl(&t, p)
		c.Add(&t, &t, p)
		c.Dbl(&t, &t)
		c.Add(r, &t, p)
	case 9:
		c.Dbl(&t, p)
		c.Dbl(&t, &t)
		c.Dbl(&t, &t)
		c.Add(r, &t, p)
	case 11:
		c.Dbl(&t, p)
		c.Dbl(&t, &t)
		c.Add(&t, &t, p)
		c.Dbl(&t, &t)
		c.Add(r, &t, p)
	case 13:
		c.Dbl(&t, p)
		c.Add(&t, &t, p)
		c.Dbl(&t, &t)
		c.Dbl(&t, &t)
		c.Add(r, &t, p)
	case 15:
		c.MulDig(&t, p, 16)
		c.Sub(r, &t, p)
	case 31:
		c.MulDig(&t, p, 32)
		c.Sub(r, &t, p)
	default:
		c.MulDig(r, p, d)
	}
}

// MulRwnaf sets r = kP processing digits right-to-left into buckets, one per
// odd digit value. The recombination multiplies each bucket by what its
// digit stands for: the plain odd value on ordinary curves, via the
// per-width chains, and the β + γτ representative on Koblitz curves. On
// ordinary curves the running point grows through doublings, so the
// mixed-only projective configuration cannot serve the bucket additions.
func (c *Curve) MulRwnaf(r, p *Point, k *big.Int) error {
	if c.Family != FamilyKoblitz && coord == CoordProjc {
		return fmt.Errorf("ecb: right-to-left windows need affine additions on %s: %w", c.Name, pell.ErrNoConfig)
	}
	k, neg, done := mulTrivial(r, p, k)
	if done {
		return nil
	}
	w := mulWidth
	var digits []int8
	var err error
	koblitz := c.Family == FamilyKoblitz
	if koblitz {
		digits, err = recode.Tnaf(k, w, c.Tau)
	} else {
		digits, err = recode.Naf(k, w)
	}
	if err != nil {
		return err
	}

	nb := 1 << (w - 2)
	buckets := make([]Point, nb)
	for i := range buckets {
		buckets[i].SetInfinity()
	}
	var q Point
	c.Norm(&q, p)
	for _, d := range digits {
		if d > 0 {
			c.Add(&buckets[d>>1], &buckets[d>>1], &q)
		} else if d < 0 {
			c.Sub(&buckets[(-d)>>1], &buckets[(-d)>>1], &q)
		}
		if koblitz {
			c.Frb(&q, &q)
		} else {
			c.Dbl(&q, &q)
		}
	}

	if err := c.NormSim(buckets); err != nil {
		return err
	}
	var acc, t Point
	acc.SetInfinity()
	if koblitz {
		beta, gama := recode.TnafAlpha(c.Tau.Mu, w)
		var f, u, v Point
		for j := 0; j < nb; j++ {
			if buckets[j].IsInfinity() {
				continue
			}
			c.Frb(&f, &buckets[j])
			c.mulSigned(&u, &buckets[j], beta[j])
			c.mulSigned(&v, &f, gama[j])
			c.Add(&t, &u, &v)
			c.Add(&acc, &acc, &t)
		}
	} else {
		for j := 0; j < nb; j++ {
			if buckets[j].IsInfinity() {
				continue
			}
			c.mulSmallOdd(&t, &buckets[j], uint64(2*j+1))
			c.Add(&acc, &acc, &t)
		}
	}
	c.Norm(r, &acc)
	if neg {
		c.Neg(r, r)
	}
	return nil
}

// MulHalve sets r = kP by the halve-and-add method: the scalar is rewritten
// against powers of 1/2 and the running point is halved instead of doubled.
// Only points of the odd-order subgroup can be halved consistently.
func (c *Curve) MulHalve(r, p *Point, k *big.Int) error {
	if c.Family == FamilySupersingular {
		return fmt.Errorf("ecb: no halving on %s: %w", c.Name, pell.ErrInvalidInput)
	}
	k, neg, done := mulTrivial(r, p, k)
	if done {
		return nil
	}
	w := mulWidth
	t := c.N.BitLen()

	// k' = k 2^(t-1) mod n, so that kP = sum d_i P/2^(t-1-i)
	kp := new(big.Int).Mod(k, c.N)
	kp.Lsh(kp, uint(t-1))
	kp.Mod(kp, c.N)
	naf, err := recode.Naf(kp, w)
	if err != nil {
		return err
	}

	nb := 1 << (w - 2)
	buckets := make([]Point, nb)
	for i := range buckets {
		buckets[i].SetInfinity()
	}
	var q Point
	c.Norm(&q, p)
	if len(naf) > t {
		// the top digit sees P scaled by 2, and can only be one
		var d2 Point
		c.Dbl(&d2, &q)
		c.Norm(&d2, &d2)
		buckets[0].Set(&d2)
	}
	for i := t - 1; i >= 0; i-- {
		if i < len(naf) && naf[i] != 0 {
			var qa Point
			c.Norm(&qa, &q)
			if d := naf[i]; d > 0 {
				c.Add(&buckets[d>>1], &buckets[d>>1], &qa)
			} else {
				c.Sub(&buckets[(-d)>>1], &buckets[(-d)>>1], &qa)
			}
		}
		c.Hlv(&q, &q)
	}

	if err := c.NormSim(buckets); err != nil {
		return err
	}
	// sum (2j+1) buckets[j] via suffix sums: s0 + 2(s1 + s2 + ...)
	for j := nb - 2; j >= 0; j-- {
		c.Add(&buckets[j], &buckets[j], &buckets[j+1])
	}
	var acc Point
	acc.SetInfinity()
	for j := 1; j < nb; j++ {
		c.Add(&acc, &acc, &buckets[j])
	}
	c.Dbl(&acc, &acc)
	c.Add(&acc, &acc, &buckets[0])
	c.Norm(r, &acc)
	if neg {
		c.Neg(r, r)
	}
	return nil
}

// MulLodah sets r = kP with the Lopez-Dahab x-coordinate ladder: two x/z
// pairs, one field inversion at the end, y recovered from the pair. The
// ladder needs the ordinary curve shape and rejects supersingular curves.
func (c *Curve) MulLodah(r, p *Point, k *big.Int) error {
	if c.Family == FamilySupersingular {
		return fmt.Errorf("ecb: ladder needs y² + xy = x³ + ax² + b, not %s: %w", c.Name, pell.ErrInvalidInput)
	}
	k, neg, done := mulTrivial(r, p, k)
	if done {
		return nil
	}
	var pa Point
	c.Norm(&pa, p)
	if pa.X.IsZero() {
		// 2-torsion point: kP alternates between P and infinity
		if k.Bit(0) == 1 {
			r.Set(&pa)
		} else {
			r.SetInfinity()
		}
		return nil
	}

	x, y := pa.X, pa.Y
	var x1, z1, x2, z2 f2m.Element
	x1 = x
	z1.SetOne()
	z2.Square(&x)
	x2.Square(&z2)
	x2.Add(&x2, &c.B) // x⁴ + b

	mdbl := func(xd, zd *f2m.Element) {
		var t0, t1 f2m.Element
		t0.Square(xd)
		t1.Square(zd)
		zd.Mul(&t0, &t1)
		t0.Square(&t0)
		t1.Square(&t1)
		switch c.OptB {
		case CoeffOne:
		case CoeffDigit:
			t1.MulWord(&t1, c.B[0])
		default:
			t1.Mul(&t1, &c.B)
		}
		xd.Add(&t0, &t1)
	}
	madd := func(xa, za, xb, zb *f2m.Element) {
		var t0, t1 f2m.Element
		t0.Mul(xa, zb)
		t1.Mul(xb, za)
		za.Add(&t0, &t1)
		za.Square(za)
		t0.Mul(&t0, &t1)
		xa.Mul(&x, za)
		xa.Add(xa, &t0)
	}

	for i := k.BitLen() - 2; i >= 0; i-- {
		if k.Bit(i) == 1 {
			madd(&x1, &z1, &x2, &z2)
			mdbl(&x2, &z2)
		} else {
			madd(&x2, &z2, &x1, &z1)
			mdbl(&x1, &z1)
		}
	}

	if z1.IsZero() {
		r.SetInfinity()
		if neg {
			c.Neg(r, r)
		}
		return nil
	}
	if z2.IsZero() {
		// (k+1)P is infinity, so kP = -P
		c.Neg(r, &pa)
		if neg {
			c.Neg(r, r)
		}
		return nil
	}

	// one shared inversion for X1/Z1, X2/Z2 and 1/x
	inv := make([]f2m.Element, 3)
	if err := f2m.BatchInvert(inv, []f2m.Element{z1, z2, x}); err != nil {
		return err
	}
	var x1a, x2a, t, y1 f2m.Element
	x1a.Mul(&x1, &inv[0])
	x2a.Mul(&x2, &inv[1])

	// y recovery: y1 = (x1+x)[(x1+x)(x2+x) + x² + y]/x + y
	var u, v f2m.Element
	u.Add(&x1a, &x)
	v.Add(&x2a, &x)
	t.Mul(&u, &v)
	v.Square(&x)
	t.Add(&t, &v).Add(&t, &y)
	y1.Mul(&u, &t)
	y1.Mul(&y1, &inv[2])
	y1.Add(&y1, &y)

	r.X = x1a
	r.Y = y1
	r.Z.SetOne()
	r.Norm = normAffine
	if neg {
		c.Neg(r, r)
	}
	return nil
}

// MulGen sets r = k G using the cached generator table.
func (c *Curve) MulGen(r *Point, k *big.Int) error {
	k, neg, done := mulTrivial(r, &c.G, k)
	if done {
		return nil
	}
	if err := c.mulLeft(r, c.genTable, k, genWidth); err != nil {
		return err
	}
	if neg {
		c.Neg(r, r)
	}
	return nil
}
