package ecp

import (
	"math/big"

	"github.com/pellcurve/pell/internal/recode"
)

// mulTrivial handles degenerate scalars. It returns the absolute scalar,
// whether the result must be negated, and whether r was already written.
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

// Mul sets r = kP by left-to-right wNAF over a table of odd multiples.
func (r *Point) Mul(p *Point, k *big.Int) error {
	k, neg, done := mulTrivial(r, p, k)
	if done {
		return nil
	}
	if err := r.MulTable(Tab(p, mulWidth), k, mulWidth); err != nil {
		return err
	}
	if neg {
		r.Neg(r)
	}
	return nil
}

// MulTable sets r = k times the point behind the odd-multiple table t.
func (r *Point) MulTable(t []Point, k *big.Int, w uint) error {
	naf, err := recode.Naf(k, w)
	if err != nil {
		return err
	}
	var acc Point
	acc.SetInfinity()
	for i := len(naf) - 1; i >= 0; i-- {
		acc.Dbl(&acc)
		if d := naf[i]; d > 0 {
			acc.Add(&acc, &t[d>>1])
		} else if d < 0 {
			acc.Sub(&acc, &t[(-d)>>1])
		}
	}
	r.Norm(&acc)
	return nil
}

// MulGen sets r = k Gen using the cached generator table.
func (r *Point) MulGen(k *big.Int) error {
	k, neg, done := mulTrivial(r, &Gen, k)
	if done {
		return nil
	}
	if err := r.MulTable(genTable, k, genWidth); err != nil {
		return err
	}
	if neg {
		r.Neg(r)
	}
	return nil
}

// MulSim sets r = kP + lQ using the configured strategy.
func (r *Point) MulSim(p *Point, k *big.Int, q *Point, l *big.Int) error {
	switch simAlg {
	case SimAlgBasic:
		return r.SimBasic(p, k, q, l)
	case SimAlgTrick:
		return r.SimTrick(p, k, q, l)
	case SimAlgInter:
		return r.SimInter(p, k, q, l)
	default:
		return r.SimJoint(p, k, q, l)
	}
}

// SimBasic computes the two multiplications separately and adds.
func (r *Point) SimBasic(p *Point, k *big.Int, q *Point, l *big.Int) error {
	var a, b Point
	if err := a.Mul(p, k); err != nil {
		return err
	}
	if err := b.Mul(q, l); err != nil {
		return err
	}
	r.Add(&a, &b)
	r.Norm(r)
	return nil
}

// SimTrick uses Shamir's trick: one joint table indexed by a digit pair,
// half the configured window per scalar.
func (r *Point) SimTrick(p *Point, k *big.Int, q *Point, l *big.Int) error {
	if k.Sign() == 0 || p.IsInfinity() {
		return r.Mul(q, l)
	}
	if l.Sign() == 0 || q.IsInfinity() {
		return r.Mul(p, k)
	}
	w := mulWidth / 2
	if w < 2 {
		w = 2
	}
	d0, err := recode.Win(absScalar(k), w)
	if err != nil {
		return err
	}
	d1, err := recode.Win(absScalar(l), w)
	if err != nil {
		return err
	}

	// joint table t[(i << w) | j] = iP + jQ
	side := 1 << w
	t0 := smallMultiples(p, side, k.Sign() < 0)
	t1 := smallMultiples(q, side, l.Sign() < 0)
	t := make([]Point, side*side)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			t[(i<<w)|j].Add(&t0[i], &t1[j])
		}
	}
	if err := NormSim(t); err != nil {
		return err
	}

	n := len(d0)
	if len(d1) > n {
		n = len(d1)
	}
	digit := func(d []uint8, i int) int {
		if i < len(d) {
			return int(d[i])
		}
		return 0
	}
	var acc Point
	acc.SetInfinity()
	for i := n - 1; i >= 0; i-- {
		for s := uint(0); s < w; s++ {
			acc.Dbl(&acc)
		}
		idx := (digit(d0, i) << w) | digit(d1, i)
		if idx != 0 {
			acc.Add(&acc, &t[idx])
		}
	}
	r.Norm(&acc)
	return nil
}

// smallMultiples returns 0, P, 2P, ..., (n-1)P, negated when neg is set.
func smallMultiples(p *Point, n int, neg bool) []Point {
	t := make([]Point, n)
	t[0].SetInfinity()
	var b Point
	b.Set(p)
	if neg {
		b.Neg(&b)
	}
	for i := 1; i < n; i++ {
		t[i].Add(&t[i-1], &b)
	}
	return t
}

// SimInter interleaves two independent wNAF expansions in one
// double-and-add pass; a generator operand uses its wider cached table.
func (r *Point) SimInter(p *Point, k *big.Int, q *Point, l *big.Int) error {
	if k.Sign() == 0 || p.IsInfinity() {
		return r.Mul(q, l)
	}
	if l.Sign() == 0 || q.IsInfinity() {
		return r.Mul(p, k)
	}
	w0, t0 := tableFor(p)
	w1, t1 := tableFor(q)
	n0, err := recode.Naf(absScalar(k), w0)
	if err != nil {
		return err
	}
	n1, err := recode.Naf(absScalar(l), w1)
	if err != nil {
		return err
	}
	s0 := int8(1)
	if k.Sign() < 0 {
		s0 = -1
	}
	s1 := int8(1)
	if l.Sign() < 0 {
		s1 = -1
	}

	n := len(n0)
	if len(n1) > n {
		n = len(n1)
	}
	var acc Point
	acc.SetInfinity()
	for i := n - 1; i >= 0; i-- {
		acc.Dbl(&acc)
		if i < len(n0) {
			if d := n0[i] * s0; d > 0 {
				acc.Add(&acc, &t0[d>>1])
			} else if d < 0 {
				acc.Sub(&acc, &t0[(-d)>>1])
			}
		}
		if i < len(n1) {
			if d := n1[i] * s1; d > 0 {
				acc.Add(&acc, &t1[d>>1])
			} else if d < 0 {
				acc.Sub(&acc, &t1[(-d)>>1])
			}
		}
	}
	r.Norm(&acc)
	return nil
}

func tableFor(p *Point) (uint, []Point) {
	if p.Equal(&Gen) {
		return genWidth, genTable
	}
	return mulWidth, Tab(p, mulWidth)
}

// SimGen sets r = k Gen + lQ.
func (r *Point) SimGen(k *big.Int, q *Point, l *big.Int) error {
	return r.SimInter(&Gen, k, q, l)
}

// SimJoint uses the joint sparse form with the five-entry table
// {∞, Q, P, P+Q, P-Q}; digit pairs that are additive inverses hit the
// difference entry.
func (r *Point) SimJoint(p *Point, k *big.Int, q *Point, l *big.Int) error {
	if k.Sign() == 0 || p.IsInfinity() {
		return r.Mul(q, l)
	}
	if l.Sign() == 0 || q.IsInfinity() {
		return r.Mul(p, k)
	}
	var pp, qq Point
	pp.Set(p)
	if k.Sign() < 0 {
		pp.Neg(&pp)
	}
	qq.Set(q)
	if l.Sign() < 0 {
		qq.Neg(&qq)
	}
	var t [5]Point
	t[0].SetInfinity()
	t[1].Set(&qq)
	t[2].Set(&pp)
	t[3].Add(&pp, &qq)
	t[4].Sub(&pp, &qq)
	if err := NormSim(t[:]); err != nil {
		return err
	}

	j0, j1, err := recode.Jsf(absScalar(k), absScalar(l))
	if err != nil {
		return err
	}
	var acc Point
	acc.SetInfinity()
	for i := len(j0) - 1; i >= 0; i-- {
		acc.Dbl(&acc)
		d0, d1 := j0[i], j1[i]
		switch {
		case d0 == 0 && d1 == 0:
		case d0 == -d1:
			if d0 > 0 {
				acc.Add(&acc, &t[4])
			} else {
				acc.Sub(&acc, &t[4])
			}
		default:
			u := 2*int(d0) + int(d1)
			if u > 0 {
				acc.Add(&acc, &t[u])
			} else {
				acc.Sub(&acc, &t[-u])
			}
		}
	}
	r.Norm(&acc)
	return nil
}

func absScalar(k *big.Int) *big.Int {
	if k.Sign() < 0 {
		return new(big.Int).Neg(k)
	}
	return k
}
