package ecb

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/pellcurve/pell/ff/f2m"
)

// Normalization levels of a Point.
const (
	normProjc  uint8 = 0 // Lopez-Dahab projective: x = X/Z, y = Y/Z²
	normAffine uint8 = 1
	normLambda uint8 = 2 // lambda representation: Y holds x + y/x
)

// Point is a point on a binary curve. The point at infinity has Z = 0.
type Point struct {
	X, Y, Z f2m.Element
	Norm    uint8
}

// Set r = p.
func (r *Point) Set(p *Point) *Point {
	r.X = p.X
	r.Y = p.Y
	r.Z = p.Z
	r.Norm = p.Norm
	return r
}

// SetInfinity sets r to the point at infinity.
func (r *Point) SetInfinity() *Point {
	r.X.SetOne()
	r.Y.SetOne()
	r.Z.SetZero()
	r.Norm = normAffine
	return r
}

// IsInfinity reports whether r is the point at infinity.
func (r *Point) IsInfinity() bool {
	return r.Z.IsZero()
}

// Norm sets r to the affine form of p.
func (c *Curve) Norm(r, p *Point) {
	if p.IsInfinity() {
		r.SetInfinity()
		return
	}
	switch p.Norm {
	case normAffine:
		r.Set(p)
	case normLambda:
		// y = x*lambda + x²
		var y, t f2m.Element
		y.Mul(&p.X, &p.Y)
		t.Square(&p.X)
		y.Add(&y, &t)
		r.X = p.X
		r.Y = y
		r.Z.SetOne()
		r.Norm = normAffine
	default:
		var zi, zi2 f2m.Element
		zi.Inverse(&p.Z)
		zi2.Square(&zi)
		r.X.Mul(&p.X, &zi)
		r.Y.Mul(&p.Y, &zi2)
		r.Z.SetOne()
		r.Norm = normAffine
	}
}

// NormSim normalizes all points in ps in place, sharing one field inversion
// across every projective entry.
func (c *Curve) NormSim(ps []Point) error {
	var zs []f2m.Element
	var idx []int
	for i := range ps {
		if ps[i].Norm == normProjc && !ps[i].IsInfinity() {
			zs = append(zs, ps[i].Z)
			idx = append(idx, i)
		}
	}
	if len(zs) > 0 {
		inv := make([]f2m.Element, len(zs))
		if err := f2m.BatchInvert(inv, zs); err != nil {
			return err
		}
		for j, i := range idx {
			var zi2 f2m.Element
			zi2.Square(&inv[j])
			ps[i].X.Mul(&ps[i].X, &inv[j])
			ps[i].Y.Mul(&ps[i].Y, &zi2)
			ps[i].Z.SetOne()
			ps[i].Norm = normAffine
		}
	}
	for i := range ps {
		if ps[i].Norm != normAffine {
			c.Norm(&ps[i], &ps[i])
		}
	}
	return nil
}

// Neg sets r = -p.
func (c *Curve) Neg(r, p *Point) {
	if p.IsInfinity() {
		r.SetInfinity()
		return
	}
	r.Set(p)
	switch {
	case c.Family == FamilySupersingular:
		r.Y.Add(&p.Y, &c.C)
	case p.Norm == normAffine:
		r.Y.Add(&p.X, &p.Y)
	case p.Norm == normLambda:
		// -(x, lambda) = (x, lambda + 1)
		var one f2m.Element
		one.SetOne()
		r.Y.Add(&p.Y, &one)
	default:
		// x + y = (XZ + Y)/Z²
		var t f2m.Element
		t.Mul(&p.X, &p.Z)
		r.Y.Add(&t, &p.Y)
	}
}

// Equal reports whether p and q are the same point.
func (c *Curve) Equal(p, q *Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	var a, b Point
	c.Norm(&a, p)
	c.Norm(&b, q)
	return a.X.Equal(&b.X) && a.Y.Equal(&b.Y)
}

// IsOnCurve reports whether the affine form of p satisfies the curve
// equation.
func (c *Curve) IsOnCurve(p *Point) bool {
	if p.IsInfinity() {
		return true
	}
	var a Point
	c.Norm(&a, p)
	var l, r, t f2m.Element
	if c.Family == FamilySupersingular {
		// y² + cy = x³ + ax + b
		l.Square(&a.Y)
		t.Mul(&c.C, &a.Y)
		l.Add(&l, &t)
		r.Square(&a.X).Mul(&r, &a.X)
		t.Mul(&c.A, &a.X)
		r.Add(&r, &t).Add(&r, &c.B)
		return l.Equal(&r)
	}
	// y² + xy = x³ + ax² + b
	l.Square(&a.Y)
	t.Mul(&a.X, &a.Y)
	l.Add(&l, &t)
	t.Square(&a.X)
	r.Mul(&t, &a.X)
	t.Mul(&t, &c.A)
	r.Add(&r, &t).Add(&r, &c.B)
	return l.Equal(&r)
}

// dblAffine sets r = 2p in affine coordinates; p must be normalized.
func (c *Curve) dblAffine(r, p *Point) {
	if p.IsInfinity() {
		r.SetInfinity()
		return
	}
	var l, x3, y3, t f2m.Element
	if c.Family == FamilySupersingular {
		if c.C.IsZero() {
			r.SetInfinity()
			return
		}
		// lambda = (x² + a)/c
		l.Square(&p.X)
		l.Add(&l, &c.A)
		t.Inverse(&c.C)
		l.Mul(&l, &t)
		x3.Square(&l)
		y3.Add(&p.X, &x3).Mul(&y3, &l).Add(&y3, &p.Y).Add(&y3, &c.C)
	} else {
		if p.X.IsZero() {
			// 2-torsion
			r.SetInfinity()
			return
		}
		// lambda = x + y/x
		t.Inverse(&p.X)
		l.Mul(&p.Y, &t)
		l.Add(&l, &p.X)
		x3.Square(&l)
		x3.Add(&x3, &l).Add(&x3, &c.A)
		y3.Square(&p.X)
		t.Mul(&l, &x3)
		y3.Add(&y3, &t).Add(&y3, &x3)
	}
	r.X = x3
	r.Y = y3
	r.Z.SetOne()
	r.Norm = normAffine
}

// addAffine sets r = p + q in affine coordinates; p and q must be
// normalized.
func (c *Curve) addAffine(r, p, q *Point) {
	if p.IsInfinity() {
		r.Set(q)
		return
	}
	if q.IsInfinity() {
		r.Set(p)
		return
	}
	if p.X.Equal(&q.X) {
		if p.Y.Equal(&q.Y) {
			c.dblAffine(r, p)
		} else {
			r.SetInfinity()
		}
		return
	}
	var l, x3, y3, t f2m.Element
	t.Add(&p.X, &q.X)
	l.Inverse(&t)
	t.Add(&p.Y, &q.Y)
	l.Mul(&l, &t)
	if c.Family == FamilySupersingular {
		x3.Square(&l)
		x3.Add(&x3, &p.X).Add(&x3, &q.X)
		t.Add(&p.X, &x3)
		y3.Mul(&l, &t).Add(&y3, &p.Y).Add(&y3, &c.C)
	} else {
		x3.Square(&l)
		x3.Add(&x3, &l).Add(&x3, &p.X).Add(&x3, &q.X).Add(&x3, &c.A)
		t.Add(&p.X, &x3)
		y3.Mul(&l, &t).Add(&y3, &x3).Add(&y3, &p.Y)
	}
	r.X = x3
	r.Y = y3
	r.Z.SetOne()
	r.Norm = normAffine
}

// dblProjc sets r = 2p in Lopez-Dahab coordinates.
func (c *Curve) dblProjc(r, p *Point) {
	if p.IsInfinity() {
		r.SetInfinity()
		return
	}
	var x1, z1, z2, x2, t0, t1 f2m.Element
	x1.Square(&p.X) // X1²
	z1.Square(&p.Z) // Z1²
	if p.Norm == normAffine {
		z1.SetOne()
	}
	z2.Square(&z1) // Z1⁴
	x2.Square(&x1) // X1⁴

	var z3, x3, y3 f2m.Element
	z3.Mul(&x1, &z1) // Z3 = X1² Z1²
	switch c.OptB {
	case CoeffOne:
		t0 = z2
	case CoeffDigit:
		t0.MulWord(&z2, c.B[0])
	default:
		t0.Mul(&c.B, &z2)
	}
	x3.Add(&x2, &t0) // X3 = X1⁴ + b Z1⁴

	t1.Square(&p.Y) // Y1²
	if c.OptA == CoeffOne {
		t1.Add(&t1, &z3)
	} else if !c.A.IsZero() {
		var az f2m.Element
		az.Mul(&c.A, &z3)
		t1.Add(&t1, &az)
	}
	t1.Add(&t1, &t0)  // a Z3 + Y1² + b Z1⁴
	t1.Mul(&t1, &x3)  // X3 (a Z3 + Y1² + b Z1⁴)
	y3.Mul(&t0, &z3)  // b Z1⁴ Z3
	y3.Add(&y3, &t1)

	r.X = x3
	r.Y = y3
	r.Z = z3
	r.Norm = normProjc
}

// addProjcMix sets r = p + q with p projective and q affine.
func (c *Curve) addProjcMix(r, p, q *Point) {
	if p.IsInfinity() {
		r.Set(q)
		return
	}
	if q.IsInfinity() {
		r.Set(p)
		return
	}
	var z1, z12, a0, b0 f2m.Element
	z1 = p.Z
	if p.Norm == normAffine {
		z1.SetOne()
	}
	z12.Square(&z1)

	a0.Mul(&q.Y, &z12)
	a0.Add(&a0, &p.Y) // A = Y2 Z1² + Y1
	b0.Mul(&q.X, &z1)
	b0.Add(&b0, &p.X) // B = X2 Z1 + X1

	if b0.IsZero() {
		if a0.IsZero() {
			var qa Point
			c.Norm(&qa, q)
			c.dblProjc(r, &qa)
		} else {
			r.SetInfinity()
		}
		return
	}

	var cc, d0, z3, e0, x3, f0, g0, y3, t f2m.Element
	cc.Mul(&z1, &b0) // C = Z1 B
	d0.Square(&b0)
	t = cc
	if c.OptA == CoeffOne {
		t.Add(&t, &z12)
	} else if !c.A.IsZero() {
		var az f2m.Element
		az.Mul(&c.A, &z12)
		t.Add(&t, &az)
	}
	d0.Mul(&d0, &t)  // D = B² (C + a Z1²)
	z3.Square(&cc)   // Z3 = C²
	e0.Mul(&a0, &cc) // E = A C
	x3.Square(&a0)
	x3.Add(&x3, &d0).Add(&x3, &e0) // X3 = A² + D + E
	f0.Mul(&q.X, &z3)
	f0.Add(&f0, &x3) // F = X3 + X2 Z3
	t.Square(&z3)
	g0.Add(&q.X, &q.Y)
	g0.Mul(&g0, &t) // G = (X2 + Y2) Z3²
	y3.Add(&e0, &z3)
	y3.Mul(&y3, &f0)
	y3.Add(&y3, &g0) // Y3 = (E + Z3) F + G

	r.X = x3
	r.Y = y3
	r.Z = z3
	r.Norm = normProjc
}

// Dbl sets r = 2p using the configured coordinate system.
func (c *Curve) Dbl(r, p *Point) {
	if c.Family == FamilySupersingular || coord == CoordBasic {
		var a Point
		c.Norm(&a, p)
		c.dblAffine(r, &a)
		return
	}
	if p.Norm == normLambda {
		var a Point
		c.Norm(&a, p)
		c.dblProjc(r, &a)
		return
	}
	c.dblProjc(r, p)
}

// Add sets r = p + q using the configured coordinate system. Under the
// projective configuration the second operand is brought to affine form
// first, since only mixed addition is carried.
func (c *Curve) Add(r, p, q *Point) {
	if c.Family == FamilySupersingular || coord == CoordBasic {
		var a, b Point
		c.Norm(&a, p)
		c.Norm(&b, q)
		c.addAffine(r, &a, &b)
		return
	}
	if p.Norm == normLambda {
		var a Point
		c.Norm(&a, p)
		p = &a
	}
	if q.Norm != normAffine {
		var b Point
		c.Norm(&b, q)
		c.addProjcMix(r, p, &b)
		return
	}
	c.addProjcMix(r, p, q)
}

// Sub sets r = p - q.
func (c *Curve) Sub(r, p, q *Point) {
	var n Point
	c.Neg(&n, q)
	c.Add(r, p, &n)
}

// Frb applies the Frobenius endomorphism, squaring every coordinate. On a
// Koblitz curve this is the τ map.
func (c *Curve) Frb(r, p *Point) {
	r.X.Square(&p.X)
	r.Y.Square(&p.Y)
	r.Z.Square(&p.Z)
	r.Norm = p.Norm
}

// Hlv sets r to the half of p in the main subgroup, in lambda
// representation. p must be a normalized or lambda point of odd order.
func (c *Curve) Hlv(r, p *Point) {
	if p.IsInfinity() {
		r.SetInfinity()
		return
	}
	var x, y, t f2m.Element
	x = p.X
	if p.Norm == normLambda {
		y.Mul(&p.X, &p.Y)
		t.Square(&p.X)
		y.Add(&y, &t)
	} else {
		y = p.Y
	}
	// lambda from lambda² + lambda = a + x
	var l f2m.Element
	t.Add(&c.A, &x)
	l.HalfTrace(&t)
	// candidate x of the half: t = y + x lambda + x
	t.Mul(&x, &l)
	t.Add(&t, &y).Add(&t, &x)
	if t.Trace() != c.trA {
		// wrong root, switch to lambda + 1
		var one f2m.Element
		one.SetOne()
		l.Add(&l, &one)
		t.Add(&t, &x)
	}
	r.X.Sqrt(&t)
	r.Y = l
	r.Z.SetOne()
	r.Norm = normLambda
}

// Tab returns the odd multiples P, 3P, ..., (2^(w-1)-1)P, normalized.
func (c *Curve) Tab(p *Point, w uint) []Point {
	n := 1 << (w - 2)
	t := make([]Point, n)
	var a Point
	c.Norm(&a, p)
	t[0] = a
	if n > 1 {
		var d Point
		c.Dbl(&d, &a)
		c.Norm(&d, &d)
		for i := 1; i < n; i++ {
			c.Add(&t[i], &t[i-1], &d)
		}
		c.NormSim(t)
	}
	return t
}

// Rand returns a random point of the main subgroup and its discrete log
// against the generator.
func (c *Curve) Rand() (Point, *big.Int, error) {
	k, err := rand.Int(rand.Reader, c.N)
	if err != nil {
		return Point{}, nil, fmt.Errorf("ecb: %w", err)
	}
	var p Point
	if err := c.MulBasic(&p, &c.G, k); err != nil {
		return Point{}, nil, err
	}
	return p, k, nil
}
