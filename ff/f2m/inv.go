package f2m

import (
	"fmt"
	"math/bits"

	"github.com/pellcurve/pell"
	"github.com/pellcurve/pell/internal/dv"
)

// Inverter selects the field inversion algorithm used by Inverse.
type Inverter uint8

const (
	// InvBasic inverts by Fermat exponentiation with a doubling recurrence.
	InvBasic Inverter = iota
	// InvBinary runs the binary polynomial GCD.
	InvBinary
	// InvExgcd runs the shift-and-add extended Euclidean algorithm.
	InvExgcd
	// InvAlmos runs the almost-inverse algorithm.
	InvAlmos
	// InvItoht runs Itoh-Tsujii with a fixed addition chain.
	InvItoht
)

var inverter = InvItoht

// SetInverter selects the algorithm backing Inverse.
func SetInverter(k Inverter) error {
	if k > InvItoht {
		return fmt.Errorf("f2m: unknown inverter %d: %w", k, pell.ErrInvalidInput)
	}
	inverter = k
	return nil
}

// Inverse sets z = 1/x using the configured algorithm. It errors when x is
// zero.
func (z *Element) Inverse(x *Element) (*Element, error) {
	switch inverter {
	case InvBasic:
		return z.InverseBasic(x)
	case InvBinary:
		return z.InverseBinary(x)
	case InvExgcd:
		return z.InverseExgcd(x)
	case InvAlmos:
		return z.InverseAlmos(x)
	default:
		return z.InverseItoht(x)
	}
}

// InverseBasic sets z = 1/x = x^(2^m - 2) using a square-and-multiply
// recurrence that halves the remaining exponent each round.
func (z *Element) InverseBasic(x *Element) (*Element, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("f2m: inverse of zero: %w", pell.ErrInvalidInput)
	}
	var u, v, t Element
	u.Square(x)
	v.SetOne()
	for k := (Bits - 1) / 2; k != 0; {
		t.Set(&u)
		for i := 0; i < k; i++ {
			t.Square(&t)
		}
		u.Mul(&u, &t)
		if k&1 == 0 {
			k >>= 1
		} else {
			v.Mul(&v, &u)
			u.Square(&u)
			k = (k - 1) >> 1
		}
	}
	return z.Set(&v), nil
}

// rsh1 shifts the first n words of v right by one bit.
func rsh1(v []uint64, n int) {
	for i := 0; i < n-1; i++ {
		v[i] = v[i]>>1 | v[i+1]<<63
	}
	v[n-1] >>= 1
}

// addN xors the full-width y into x.
func addN(x, y []uint64) {
	x[0] ^= y[0]
	x[1] ^= y[1]
	x[2] ^= y[2]
}

// InverseBinary sets z = 1/x by the binary polynomial GCD, keeping two
// auxiliary polynomials g1, g2 with g1*x = u (mod f) and g2*x = v (mod f).
func (z *Element) InverseBinary(x *Element) (*Element, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("f2m: inverse of zero: %w", pell.ErrInvalidInput)
	}
	u := *x
	v := poly
	g1 := Element{1, 0, 0}
	var g2 Element
	lu, lv := Limbs, Limbs
	for {
		// Remove factors of z from u, dividing g1 by z mod f.
		for u[0]&1 == 0 {
			rsh1(u[:], lu)
			if g1[0]&1 == 1 {
				addN(g1[:], poly[:])
			}
			rsh1(g1[:], Limbs)
		}
		for u[lu-1] == 0 {
			lu--
		}
		if lu == 1 && u[0] == 1 {
			return z.Set(&g1), nil
		}
		for v[0]&1 == 0 {
			rsh1(v[:], lv)
			if g2[0]&1 == 1 {
				addN(g2[:], poly[:])
			}
			rsh1(g2[:], Limbs)
		}
		for v[lv-1] == 0 {
			lv--
		}
		if lv == 1 && v[0] == 1 {
			return z.Set(&g2), nil
		}
		// Add the smaller-degree operand into the larger one.
		if lu > lv || (lu == lv && dv.Cmp(u[:], v[:], lu) > 0) {
			for i := 0; i < lv; i++ {
				u[i] ^= v[i]
			}
			addN(g1[:], g2[:])
		} else {
			for i := 0; i < lu; i++ {
				v[i] ^= u[i]
			}
			addN(g2[:], g1[:])
		}
	}
}

// InverseAlmos sets z = 1/x by the almost-inverse algorithm, a variant of
// the binary GCD that swaps operands instead of tracking both branches.
func (z *Element) InverseAlmos(x *Element) (*Element, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("f2m: inverse of zero: %w", pell.ErrInvalidInput)
	}
	var ua, va, ba, da Element
	ua = *x
	va = poly
	ba.SetOne()
	u, v, b, d := ua[:], va[:], ba[:], da[:]
	lu, lv := Limbs, Limbs
	for {
		for u[0]&1 == 0 {
			rsh1(u, lu)
			if b[0]&1 == 1 {
				addN(b, poly[:])
			}
			rsh1(b, Limbs)
		}
		for u[lu-1] == 0 {
			lu--
		}
		if lu == 1 && u[0] == 1 {
			z[0], z[1], z[2] = b[0], b[1], b[2]
			return z, nil
		}
		if lu < lv || (lu == lv && dv.Cmp(u, v, lu) < 0) {
			u, v = v, u
			lu, lv = lv, lu
			b, d = d, b
		}
		for i := 0; i < lu; i++ {
			u[i] ^= v[i]
		}
		addN(b, d)
	}
}

// lshAdd xors (v << j) into u over n digits and returns the carried-out word.
func lshAdd(u, v []uint64, j uint, n int) uint64 {
	var carry uint64
	for i := 0; i < n; i++ {
		t := v[i]
		u[i] ^= t<<j ^ carry
		carry = t >> (64 - j)
	}
	return carry
}

// InverseExgcd sets z = 1/x by the extended Euclidean algorithm over digit
// vectors, aligning operands by the degree gap j before each addition.
func (z *Element) InverseExgcd(x *Element) (*Element, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("f2m: inverse of zero: %w", pell.ErrInvalidInput)
	}
	u, err := dv.New(dv.MaxDigits)
	if err != nil {
		return nil, err
	}
	defer dv.Release(u)
	v, err := dv.New(dv.MaxDigits)
	if err != nil {
		return nil, err
	}
	defer dv.Release(v)
	g1, err := dv.New(dv.MaxDigits)
	if err != nil {
		return nil, err
	}
	defer dv.Release(g1)
	g2, err := dv.New(dv.MaxDigits)
	if err != nil {
		return nil, err
	}
	defer dv.Release(g2)

	u[0], u[1], u[2] = x[0], x[1], x[2]
	v[0], v[1], v[2] = poly[0], poly[1], poly[2]
	g1[0] = 1
	lu, lv := Limbs, Limbs
	l1, l2 := 1, 1
	j := x.BitLen() - (Bits + 1)
	for {
		if j < 0 {
			u, v = v, u
			lu, lv = lv, lu
			g1, g2 = g2, g1
			l1, l2 = l2, l1
			j = -j
		}
		d := j >> 6
		jj := uint(j & 63)
		if jj > 0 {
			carry := lshAdd(u[d:], v, jj, lv)
			u[d+lv] ^= carry
		} else {
			for i := 0; i < lv; i++ {
				u[d+i] ^= v[i]
			}
		}
		if jj > 0 {
			carry := lshAdd(g1[d:], g2, jj, l2)
			if l2+d >= l1 {
				l1 = l2 + d
			}
			if carry != 0 {
				g1[d+l2] ^= carry
				l1++
			}
		} else {
			for i := 0; i < l2; i++ {
				g1[d+i] ^= g2[i]
			}
			if l2+d > l1 {
				l1 = l2 + d
			}
		}
		for u[lu-1] == 0 {
			lu--
		}
		for v[lv-1] == 0 {
			lv--
		}
		if lu == 1 && u[0] == 1 {
			z[0], z[1], z[2] = g1[0], g1[1], g1[2]
			return z, nil
		}
		j = ((lu - lv) << 6) + bits.Len64(u[lu-1]) - bits.Len64(v[lv-1])
	}
}

// itChain is the addition chain 1, 2, 4, 5, 10, 20, 40, 80, 81, 162 for the
// exponent 2^162 - 1; each pair (x, y) forms the next term as u[x] + u[y].
var itChain = [8][2]int{{1, 1}, {2, 0}, {3, 3}, {4, 4}, {5, 5}, {6, 6}, {7, 0}, {8, 8}}

// InverseItoht sets z = 1/x by the Itoh-Tsujii algorithm, building
// x^(2^162 - 1) along a fixed addition chain and squaring once at the end.
func (z *Element) InverseItoht(x *Element) (*Element, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("f2m: inverse of zero: %w", pell.ErrInvalidInput)
	}
	var table [10]Element
	var u [10]int
	table[0] = *x
	table[1].Square(&table[0])
	table[1].Mul(&table[1], &table[0])
	u[0], u[1] = 1, 2
	for i, s := range itChain {
		xi, yi := s[0], s[1]
		u[i+2] = u[xi] + u[yi]
		t := table[xi]
		for j := 0; j < u[yi]; j++ {
			t.Square(&t)
		}
		table[i+2].Mul(&t, &table[yi])
	}
	return z.Square(&table[9]), nil
}

// BatchInvert sets res[i] = 1/a[i] for all i with a single field inversion,
// trading it for 3(n-1) multiplications. It errors when any input is zero.
func BatchInvert(res, a []Element) error {
	n := len(a)
	if n == 0 || len(res) != n {
		return fmt.Errorf("f2m: batch size mismatch: %w", pell.ErrInvalidInput)
	}
	t := make([]Element, n)
	t[0] = a[0]
	res[0] = a[0]
	for i := 1; i < n; i++ {
		t[i] = a[i]
		res[i].Mul(&res[i-1], &a[i])
	}
	var u Element
	if _, err := u.Inverse(&res[n-1]); err != nil {
		return err
	}
	for i := n - 1; i > 0; i-- {
		res[i].Mul(&u, &res[i-1])
		u.Mul(&u, &t[i])
	}
	res[0] = u
	return nil
}
