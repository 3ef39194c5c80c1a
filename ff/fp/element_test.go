package fp

import (
	"errors"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/pellcurve/pell"
	"github.com/stretchr/testify/require"
)

func genElement() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var a Element
		var v big.Int
		v.Rand(genParams.Rng, &_modulus)
		a.SetBigInt(&v)
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

func TestElementArithmetic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("addition and subtraction round-trip", prop.ForAll(
		func(a, b Element) bool {
			var s, d Element
			s.Add(&a, &b)
			d.Sub(&s, &b)
			return d.Equal(&a)
		},
		genElement(), genElement(),
	))

	properties.Property("multiplication matches big.Int arithmetic", prop.ForAll(
		func(a, b Element) bool {
			var c Element
			c.Mul(&a, &b)
			var ba, bb, bc, want big.Int
			a.BigInt(&ba)
			b.BigInt(&bb)
			c.BigInt(&bc)
			want.Mul(&ba, &bb).Mod(&want, &_modulus)
			return want.Cmp(&bc) == 0
		},
		genElement(), genElement(),
	))

	properties.Property("squaring matches self-multiplication", prop.ForAll(
		func(a Element) bool {
			var s, m Element
			s.Square(&a)
			m.Mul(&a, &a)
			return s.Equal(&m)
		},
		genElement(),
	))

	properties.Property("negation sums to zero", prop.ForAll(
		func(a Element) bool {
			var n, s Element
			n.Neg(&a)
			s.Add(&a, &n)
			return s.IsZero()
		},
		genElement(),
	))

	properties.Property("doubling then halving is the identity", prop.ForAll(
		func(a Element) bool {
			var d Element
			d.Double(&a)
			d.Halve()
			return d.Equal(&a)
		},
		genElement(),
	))

	properties.Property("inverse multiplies to one", prop.ForAll(
		func(a Element) bool {
			if a.IsZero() {
				a.SetOne()
			}
			var i, p Element
			if _, err := i.Inverse(&a); err != nil {
				return false
			}
			p.Mul(&a, &i)
			return p.IsOne()
		},
		genElement(),
	))

	properties.Property("square root inverts squaring up to sign", prop.ForAll(
		func(a Element) bool {
			var s, r Element
			s.Square(&a)
			if _, err := r.Sqrt(&s); err != nil {
				return false
			}
			var n Element
			n.Neg(&r)
			return r.Equal(&a) || n.Equal(&a)
		},
		genElement(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestElementFixed(t *testing.T) {
	var z Element
	_, err := z.Inverse(&z)
	require.Error(t, err)
	require.True(t, errors.Is(err, pell.ErrInvalidInput))

	require.Equal(t, 0, z.Legendre())
	one := One()
	require.Equal(t, 1, one.Legendre())

	// -1 is a non-square because q = 3 mod 4.
	var m1 Element
	m1.Neg(&one)
	require.Equal(t, -1, m1.Legendre())
	_, err = z.Sqrt(&m1)
	require.Error(t, err)

	var five, x Element
	five.SetUint64(5)
	x.SetInt64(-5)
	x.Add(&x, &five)
	require.True(t, x.IsZero())

	require.Equal(t, "5", five.String())
	require.Equal(t, 3, five.BitLen())
}

func TestElementExp(t *testing.T) {
	var a Element
	_, err := a.SetRandom()
	require.NoError(t, err)

	var z Element
	z.Exp(a, big.NewInt(0))
	require.True(t, z.IsOne())
	z.Exp(a, big.NewInt(1))
	require.True(t, z.Equal(&a))

	// Fermat: a^(q-1) = 1.
	e := Modulus()
	e.Sub(e, big.NewInt(1))
	z.Exp(a, e)
	require.True(t, z.IsOne())

	// a^-2 * a^2 = 1.
	var i2, s2, p Element
	i2.Exp(a, big.NewInt(-2))
	s2.Square(&a)
	p.Mul(&i2, &s2)
	require.True(t, p.IsOne())
}

func TestElementBytes(t *testing.T) {
	var a, b Element
	_, err := a.SetRandom()
	require.NoError(t, err)
	buf := a.Bytes()
	b.SetBytes(buf[:])
	require.True(t, a.Equal(&b))
}

func TestBatchInvertMatchesInverse(t *testing.T) {
	const n = 7
	a := make([]Element, n)
	for i := range a {
		_, err := a[i].SetRandom()
		require.NoError(t, err)
	}
	res := make([]Element, n)
	require.NoError(t, BatchInvert(res, a))
	for i := range a {
		var want Element
		_, err := want.Inverse(&a[i])
		require.NoError(t, err)
		require.True(t, res[i].Equal(&want), "index %d", i)
	}

	a[0].SetZero()
	require.Error(t, BatchInvert(res, a))
}
