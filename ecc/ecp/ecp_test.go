package ecp

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func randScalar(t *testing.T) *big.Int {
	t.Helper()
	k, err := rand.Int(rand.Reader, Order)
	require.NoError(t, err)
	return k
}

func TestCurveParameters(t *testing.T) {
	require.True(t, Gen.IsOnCurve())
	require.True(t, Order.ProbablyPrime(32))

	var r Point
	require.NoError(t, r.Mul(&Gen, Order))
	require.True(t, r.IsInfinity())
}

func TestGroupLaw(t *testing.T) {
	p, _, err := Rand()
	require.NoError(t, err)
	q, _, err := Rand()
	require.NoError(t, err)
	require.True(t, p.IsOnCurve())

	var pq, qp Point
	pq.Add(&p, &q)
	qp.Add(&q, &p)
	require.True(t, pq.Equal(&qp))
	require.True(t, pq.IsOnCurve())

	// doubling agrees with p+p
	var d1, d2 Point
	d1.Dbl(&p)
	d2.Add(&p, &p)
	require.True(t, d1.Equal(&d2))

	// p - p = infinity
	var z Point
	z.Sub(&p, &p)
	require.True(t, z.IsInfinity())

	// infinity is neutral
	var inf, s Point
	inf.SetInfinity()
	s.Add(&p, &inf)
	require.True(t, s.Equal(&p))
	s.Add(&inf, &p)
	require.True(t, s.Equal(&p))

	// associativity
	var l, r Point
	l.Add(&pq, &p)
	r.Add(&p, &p)
	r.Add(&r, &q)
	require.True(t, l.Equal(&r))
}

func TestMul(t *testing.T) {
	p, _, err := Rand()
	require.NoError(t, err)

	// small fixed scalar cross-checked against repeated addition
	k := big.NewInt(12345)
	var want Point
	want.SetInfinity()
	for i := 0; i < 12345; i++ {
		want.Add(&want, &p)
	}
	var got Point
	require.NoError(t, got.Mul(&p, k))
	require.True(t, got.Equal(&want))

	// edge cases
	require.NoError(t, got.Mul(&p, new(big.Int)))
	require.True(t, got.IsInfinity())
	var inf Point
	inf.SetInfinity()
	require.NoError(t, got.Mul(&inf, big.NewInt(7)))
	require.True(t, got.IsInfinity())

	// negative scalar negates the result
	var pos, neg Point
	require.NoError(t, pos.Mul(&p, big.NewInt(5)))
	require.NoError(t, neg.Mul(&p, big.NewInt(-5)))
	neg.Neg(&neg)
	require.True(t, neg.Equal(&pos))
}

func TestMulWidths(t *testing.T) {
	p, k, err := Rand()
	require.NoError(t, err)

	var want Point
	require.NoError(t, want.Mul(&p, k))
	for w := uint(2); w <= 8; w++ {
		require.NoError(t, SetWidth(w))
		var got Point
		require.NoError(t, got.Mul(&p, k))
		require.True(t, got.Equal(&want), "width %d", w)
	}
	require.NoError(t, SetWidth(4))
	require.Error(t, SetWidth(1))
	require.Error(t, SetWidth(9))
}

func TestMulGen(t *testing.T) {
	k := randScalar(t)
	var want, got Point
	require.NoError(t, want.Mul(&Gen, k))
	require.NoError(t, got.MulGen(k))
	require.True(t, got.Equal(&want))
}

func TestSimStrategiesAgree(t *testing.T) {
	p, _, err := Rand()
	require.NoError(t, err)
	q, _, err := Rand()
	require.NoError(t, err)
	k := randScalar(t)
	l := randScalar(t)

	var kp, lq, want Point
	require.NoError(t, kp.Mul(&p, k))
	require.NoError(t, lq.Mul(&q, l))
	want.Add(&kp, &lq)
	want.Norm(&want)

	for _, a := range []SimAlg{SimAlgBasic, SimAlgTrick, SimAlgInter, SimAlgJoint} {
		require.NoError(t, SetSim(a))
		var got Point
		require.NoError(t, got.MulSim(&p, k, &q, l))
		require.True(t, got.Equal(&want), "sim %d", a)
	}
	require.NoError(t, SetSim(SimAlgInter))
	require.Error(t, SetSim(SimAlg(99)))

	// generator specialization
	var wantGen, gotGen Point
	require.NoError(t, kp.Mul(&Gen, k))
	wantGen.Add(&kp, &lq)
	wantGen.Norm(&wantGen)
	require.NoError(t, gotGen.SimGen(k, &q, l))
	require.True(t, gotGen.Equal(&wantGen))
}

func TestSimEdgeCases(t *testing.T) {
	p, _, err := Rand()
	require.NoError(t, err)
	q, _, err := Rand()
	require.NoError(t, err)
	k := randScalar(t)

	for _, a := range []SimAlg{SimAlgBasic, SimAlgTrick, SimAlgInter, SimAlgJoint} {
		require.NoError(t, SetSim(a))

		// zero scalar on either side degrades to a single multiplication
		var want, got Point
		require.NoError(t, want.Mul(&q, k))
		require.NoError(t, got.MulSim(&p, new(big.Int), &q, k))
		require.True(t, got.Equal(&want), "sim %d, k=0", a)
		require.NoError(t, got.MulSim(&p, k, &q, new(big.Int)))
		require.NoError(t, want.Mul(&p, k))
		require.True(t, got.Equal(&want), "sim %d, l=0", a)

		// kP - kP = infinity
		nk := new(big.Int).Neg(k)
		require.NoError(t, got.MulSim(&p, k, &p, nk))
		require.True(t, got.IsInfinity(), "sim %d, cancel", a)
	}
	require.NoError(t, SetSim(SimAlgInter))
}

func TestTab(t *testing.T) {
	p, _, err := Rand()
	require.NoError(t, err)
	tab := Tab(&p, 5)
	require.Len(t, tab, 8)
	for i, q := range tab {
		var want Point
		require.NoError(t, want.Mul(&p, big.NewInt(int64(2*i+1))))
		require.True(t, q.Equal(&want), "multiple %d", 2*i+1)
		require.True(t, q.Z.IsOne())
	}
}

func TestNormSim(t *testing.T) {
	pts := make([]Point, 5)
	for i := range pts {
		p, _, err := Rand()
		require.NoError(t, err)
		pts[i].Dbl(&p)
	}
	var inf Point
	inf.SetInfinity()
	pts = append(pts, inf)

	want := make([]Point, len(pts))
	for i := range pts {
		want[i].Norm(&pts[i])
	}
	require.NoError(t, NormSim(pts))
	for i := range pts {
		require.True(t, pts[i].Equal(&want[i]))
		if !pts[i].IsInfinity() {
			require.True(t, pts[i].Z.IsOne())
		}
	}
}
