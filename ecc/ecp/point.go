package ecp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/pellcurve/pell/ff/fp"
)

// Point is a curve point in Jacobian coordinates: x = X/Z², y = Y/Z³. The
// point at infinity has Z = 0.
type Point struct {
	X, Y, Z fp.Element
}

// Set r = p.
func (r *Point) Set(p *Point) *Point {
	r.X = p.X
	r.Y = p.Y
	r.Z = p.Z
	return r
}

// SetInfinity sets r to the point at infinity.
func (r *Point) SetInfinity() *Point {
	r.X.SetOne()
	r.Y.SetOne()
	r.Z.SetZero()
	return r
}

// IsInfinity reports whether r is the point at infinity.
func (r *Point) IsInfinity() bool {
	return r.Z.IsZero()
}

// Neg sets r = -p.
func (r *Point) Neg(p *Point) *Point {
	r.X = p.X
	r.Y.Neg(&p.Y)
	r.Z = p.Z
	return r
}

// Dbl sets r = 2p, specialized for a curve coefficient a = 0.
func (r *Point) Dbl(p *Point) *Point {
	if p.IsInfinity() {
		return r.SetInfinity()
	}
	var a, b, c, d, e, f, t fp.Element
	a.Square(&p.X)
	b.Square(&p.Y)
	c.Square(&b)
	d.Add(&p.X, &b).Square(&d).Sub(&d, &a).Sub(&d, &c).Double(&d)
	e.Double(&a).Add(&e, &a)
	f.Square(&e)

	var z3 fp.Element
	z3.Mul(&p.Y, &p.Z).Double(&z3)

	r.X.Sub(&f, &d).Sub(&r.X, &d)
	t.Sub(&d, &r.X)
	r.Y.Mul(&e, &t)
	c.Double(&c).Double(&c).Double(&c)
	r.Y.Sub(&r.Y, &c)
	r.Z = z3
	return r
}

// Add sets r = p + q.
func (r *Point) Add(p, q *Point) *Point {
	if p.IsInfinity() {
		return r.Set(q)
	}
	if q.IsInfinity() {
		return r.Set(p)
	}
	var z1z1, z2z2, u1, u2, s1, s2 fp.Element
	z1z1.Square(&p.Z)
	z2z2.Square(&q.Z)
	u1.Mul(&p.X, &z2z2)
	u2.Mul(&q.X, &z1z1)
	s1.Mul(&p.Y, &z2z2).Mul(&s1, &q.Z)
	s2.Mul(&q.Y, &z1z1).Mul(&s2, &p.Z)

	var h, i, j, rr, v fp.Element
	h.Sub(&u2, &u1)
	rr.Sub(&s2, &s1).Double(&rr)
	if h.IsZero() {
		if rr.IsZero() {
			return r.Dbl(p)
		}
		return r.SetInfinity()
	}
	i.Double(&h).Square(&i)
	j.Mul(&h, &i)
	v.Mul(&u1, &i)

	var t fp.Element
	r.X.Square(&rr).Sub(&r.X, &j)
	t.Double(&v)
	r.X.Sub(&r.X, &t)
	t.Sub(&v, &r.X)
	r.Y.Mul(&rr, &t)
	s1.Mul(&s1, &j).Double(&s1)
	r.Y.Sub(&r.Y, &s1)
	r.Z.Add(&p.Z, &q.Z).Square(&r.Z).Sub(&r.Z, &z1z1).Sub(&r.Z, &z2z2).Mul(&r.Z, &h)
	return r
}

// Sub sets r = p - q.
func (r *Point) Sub(p, q *Point) *Point {
	var n Point
	n.Neg(q)
	return r.Add(p, &n)
}

// Norm sets r to the affine form of p (Z = 1).
func (r *Point) Norm(p *Point) *Point {
	if p.IsInfinity() {
		return r.SetInfinity()
	}
	var zi, zi2, zi3 fp.Element
	zi.Inverse(&p.Z)
	zi2.Square(&zi)
	zi3.Mul(&zi2, &zi)
	r.X.Mul(&p.X, &zi2)
	r.Y.Mul(&p.Y, &zi3)
	r.Z.SetOne()
	return r
}

// NormSim normalizes all points in ps in place, sharing one field inversion.
func NormSim(ps []Point) error {
	var zs []fp.Element
	var idx []int
	for i := range ps {
		if !ps[i].IsInfinity() && !ps[i].Z.IsOne() {
			zs = append(zs, ps[i].Z)
			idx = append(idx, i)
		}
	}
	if len(zs) == 0 {
		return nil
	}
	inv := make([]fp.Element, len(zs))
	if err := fp.BatchInvert(inv, zs); err != nil {
		return err
	}
	for j, i := range idx {
		var zi2, zi3 fp.Element
		zi2.Square(&inv[j])
		zi3.Mul(&zi2, &inv[j])
		ps[i].X.Mul(&ps[i].X, &zi2)
		ps[i].Y.Mul(&ps[i].Y, &zi3)
		ps[i].Z.SetOne()
	}
	return nil
}

// Equal reports whether p and q are the same point.
func (p *Point) Equal(q *Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	// X1 Z2² == X2 Z1² and Y1 Z2³ == Y2 Z1³
	var z1z1, z2z2, l, r fp.Element
	z1z1.Square(&p.Z)
	z2z2.Square(&q.Z)
	l.Mul(&p.X, &z2z2)
	r.Mul(&q.X, &z1z1)
	if !l.Equal(&r) {
		return false
	}
	l.Mul(&p.Y, &z2z2).Mul(&l, &q.Z)
	r.Mul(&q.Y, &z1z1).Mul(&r, &p.Z)
	return l.Equal(&r)
}

// IsOnCurve reports whether p satisfies y² = x³ + 4.
func (p *Point) IsOnCurve() bool {
	if p.IsInfinity() {
		return true
	}
	var a Point
	a.Norm(p)
	var l, r fp.Element
	l.Square(&a.Y)
	r.Square(&a.X).Mul(&r, &a.X).Add(&r, &bCurve)
	return l.Equal(&r)
}

// Tab returns the odd multiples P, 3P, ..., (2^(w-1)-1)P, normalized.
func Tab(p *Point, w uint) []Point {
	n := 1 << (w - 2)
	t := make([]Point, n)
	var a Point
	a.Norm(p)
	t[0] = a
	if n > 1 {
		var d Point
		d.Dbl(&a)
		for i := 1; i < n; i++ {
			t[i].Add(&t[i-1], &d)
		}
		NormSim(t)
	}
	return t
}

// Rand returns a random multiple of the generator and its scalar.
func Rand() (Point, *big.Int, error) {
	k, err := rand.Int(rand.Reader, Order)
	if err != nil {
		return Point{}, nil, fmt.Errorf("ecp: %w", err)
	}
	var p Point
	if err := p.Mul(&Gen, k); err != nil {
		return Point{}, nil, err
	}
	return p, k, nil
}
