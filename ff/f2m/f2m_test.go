package f2m

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pellcurve/pell"
	"github.com/stretchr/testify/require"
)

func genElement() gopter.Gen {
	return gopter.CombineGens(
		gen.UInt64(), gen.UInt64(), gen.UInt64(),
	).Map(func(vs []interface{}) Element {
		return Element{vs[0].(uint64), vs[1].(uint64), vs[2].(uint64) & topMask}
	})
}

func TestFieldLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("addition is commutative and self-inverse", prop.ForAll(
		func(a, b Element) bool {
			var ab, ba, aa Element
			ab.Add(&a, &b)
			ba.Add(&b, &a)
			aa.Add(&a, &a)
			return ab.Equal(&ba) && aa.IsZero()
		},
		genElement(), genElement(),
	))

	properties.Property("multiplication is commutative and associative", prop.ForAll(
		func(a, b, c Element) bool {
			var ab, ba, l, r Element
			ab.Mul(&a, &b)
			ba.Mul(&b, &a)
			l.Mul(&ab, &c)
			r.Mul(&b, &c)
			r.Mul(&a, &r)
			return ab.Equal(&ba) && l.Equal(&r)
		},
		genElement(), genElement(), genElement(),
	))

	properties.Property("multiplication distributes over addition", prop.ForAll(
		func(a, b, c Element) bool {
			var s, l, ac, bc, r Element
			s.Add(&a, &b)
			l.Mul(&s, &c)
			ac.Mul(&a, &c)
			bc.Mul(&b, &c)
			r.Add(&ac, &bc)
			return l.Equal(&r)
		},
		genElement(), genElement(), genElement(),
	))

	properties.Property("single word multiplication matches the general product", prop.ForAll(
		func(a Element, w uint64) bool {
			b := Element{w, 0, 0}
			var got, want Element
			got.MulWord(&a, w)
			want.Mul(&a, &b)
			return got.Equal(&want)
		},
		genElement(), gen.UInt64(),
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

	properties.Property("square root inverts squaring", prop.ForAll(
		func(a Element) bool {
			var s, r Element
			s.Square(&a)
			r.Sqrt(&s)
			if !r.Equal(&a) {
				return false
			}
			r.Sqrt(&a)
			r.Square(&r)
			return r.Equal(&a)
		},
		genElement(),
	))

	properties.Property("trace is additive", prop.ForAll(
		func(a, b Element) bool {
			var s Element
			s.Add(&a, &b)
			return s.Trace() == a.Trace()^b.Trace()
		},
		genElement(), genElement(),
	))

	properties.Property("half-trace solves the quadratic when the trace vanishes", prop.ForAll(
		func(a Element) bool {
			if a.Trace() != 0 {
				a.Add(&a, &Element{1, 0, 0})
				if a.Trace() != 0 {
					// Tr(1) must be 1 for an odd extension degree.
					return false
				}
			}
			var h, l Element
			h.HalfTrace(&a)
			l.Square(&h)
			l.Add(&l, &h)
			return l.Equal(&a)
		},
		genElement(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestInverseVariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	inverters := []struct {
		name string
		inv  func(z, x *Element) (*Element, error)
	}{
		{"basic", (*Element).InverseBasic},
		{"binary", (*Element).InverseBinary},
		{"exgcd", (*Element).InverseExgcd},
		{"almos", (*Element).InverseAlmos},
		{"itoht", (*Element).InverseItoht},
	}

	for _, tc := range inverters {
		tc := tc
		properties.Property(tc.name+" inverse multiplies to one", prop.ForAll(
			func(a Element) bool {
				if a.IsZero() {
					a.SetOne()
				}
				var i, p Element
				if _, err := tc.inv(&i, &a); err != nil {
					return false
				}
				p.Mul(&a, &i)
				return p.IsOne()
			},
			genElement(),
		))
	}

	properties.TestingRun(t, gopter.ConsoleReporter(false))

	// All variants refuse the zero element.
	var z, zero Element
	for _, tc := range inverters {
		_, err := tc.inv(&z, &zero)
		require.Error(t, err, tc.name)
		require.True(t, errors.Is(err, pell.ErrInvalidInput), tc.name)
	}

	require.Error(t, SetInverter(Inverter(200)))
	require.NoError(t, SetInverter(InvBinary))
	defer func() { require.NoError(t, SetInverter(InvItoht)) }()
	a := Element{0xdeadbeef, 7, 1}
	var i, p Element
	_, err := i.Inverse(&a)
	require.NoError(t, err)
	p.Mul(&a, &i)
	require.True(t, p.IsOne())
}

func TestBatchInvert(t *testing.T) {
	const n = 9
	a := make([]Element, n)
	for i := range a {
		_, err := a[i].SetRandom()
		require.NoError(t, err)
		if a[i].IsZero() {
			a[i].SetOne()
		}
	}
	res := make([]Element, n)
	require.NoError(t, BatchInvert(res, a))
	for i := range a {
		var p Element
		p.Mul(&a[i], &res[i])
		require.True(t, p.IsOne(), "index %d", i)
	}

	a[n/2].SetZero()
	err := BatchInvert(res, a)
	require.Error(t, err)
	require.True(t, errors.Is(err, pell.ErrInvalidInput))

	require.Error(t, BatchInvert(res[:2], a))
}

func TestIteratedFrobenius(t *testing.T) {
	var a Element
	_, err := a.SetRandom()
	require.NoError(t, err)

	for _, b := range []int{1, 3, 17, -1, -5} {
		tab := ItrPre(b)
		var got, want Element
		Itr(&got, &a, tab)
		want = a
		if b >= 0 {
			for i := 0; i < b; i++ {
				want.Square(&want)
			}
		} else {
			for i := 0; i < -b; i++ {
				want.Sqrt(&want)
			}
		}
		require.True(t, got.Equal(&want), "b=%d", b)
	}
}

func TestTraceBasis(t *testing.T) {
	// Recompute Tr(z^j) from the definition, the sum of the m Frobenius
	// conjugates. For this field the only basis elements of nonzero trace
	// are z^0 and z^157, so Trace must reduce to two bit extractions.
	for j := 0; j < Bits; j++ {
		var b Element
		b.SetBit(j)
		s := b
		acc := b
		for i := 0; i < Bits-1; i++ {
			s.Square(&s)
			acc.Add(&acc, &s)
		}
		require.EqualValues(t, acc[0]&1, b.Trace(), "j=%d", j)
		if j == 0 || j == 157 {
			require.EqualValues(t, 1, b.Trace(), "j=%d", j)
		} else {
			require.EqualValues(t, 0, b.Trace(), "j=%d", j)
		}
	}

	// sqrtZ is the (m-1)-fold square of z, so squaring it must give z back.
	var z2 Element
	z2.Square(&sqrtZ)
	require.Equal(t, Element{2, 0, 0}, z2)
}

func TestFixedValues(t *testing.T) {
	f := Poly()
	require.Equal(t, uint64(0xC9), f[0])
	require.Equal(t, uint64(1)<<35, f[2])

	var one, z Element
	one.SetOne()
	require.True(t, one.IsOne())
	require.EqualValues(t, 1, one.BitLen())
	require.EqualValues(t, 1, one.Trace(), "Tr(1) = m mod 2")

	z.SetBit(162)
	require.Equal(t, 163, z.BitLen())
	require.EqualValues(t, 1, z.Bit(162))

	// z^163 reduces to z^7 + z^6 + z^3 + 1.
	var zp, r Element
	zp = Element{2, 0, 0}
	r.Set(&zp)
	for i := 0; i < 162; i++ {
		r.Mul(&r, &zp)
	}
	require.Equal(t, Element{0xC9, 0, 0}, r)
}
