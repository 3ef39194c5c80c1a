package recode

import (
	"fmt"
	"math/big"

	"github.com/pellcurve/pell"
)

// Tau describes the Frobenius endomorphism of a Koblitz curve over GF(2^m).
// The endomorphism satisfies τ² = μτ - 2 in the endomorphism ring, with
// μ = +1 when the curve coefficient a is 1 and μ = -1 when a is 0.
type Tau struct {
	Mu int8
	M  int
}

// delta returns δ = (τ^m - 1)/(τ - 1) = d0 + d1 τ. The main subgroup is
// killed by δ, so scalars can be reduced modulo δ before recoding.
func (t Tau) delta() (d0, d1 *big.Int) {
	mu := big.NewInt(int64(t.Mu))

	// τ^m by the recurrence (a + bτ)τ = -2b + (a + μb)τ.
	a := big.NewInt(1)
	b := big.NewInt(0)
	var na, nb big.Int
	for i := 0; i < t.M; i++ {
		na.Lsh(b, 1)
		na.Neg(&na)
		nb.Mul(mu, b)
		nb.Add(&nb, a)
		a.Set(&na)
		b.Set(&nb)
	}

	// (τ^m - 1)/(τ - 1): multiply by the conjugate (μ-1) - τ of τ-1 and
	// divide by its norm 3 - μ. Both divisions are exact.
	c0 := new(big.Int).Sub(a, big.NewInt(1))
	c1 := b
	n := big.NewInt(int64(3 - t.Mu))
	d0 = new(big.Int).Mul(c0, big.NewInt(int64(t.Mu-1)))
	d0.Add(d0, new(big.Int).Lsh(c1, 1))
	d0.Quo(d0, n)
	d1 = new(big.Int).Add(c0, c1)
	d1.Neg(d1)
	d1.Quo(d1, n)
	return d0, d1
}

// roundDiv returns round(x / n) for n > 0, rounding half away from floor.
func roundDiv(x, n *big.Int) *big.Int {
	r := new(big.Int).Lsh(x, 1)
	r.Add(r, n)
	d := new(big.Int).Lsh(n, 1)
	r.Div(r, d)
	return r
}

// tauRoot returns the even root of t² - μt + 2 = 0 (mod 2^w), obtained by
// Hensel lifting from t = 2.
func tauRoot(mu int8, w uint) int64 {
	t := int64(2)
	for i := uint(2); i < w; i++ {
		mod := int64(1) << (i + 1)
		v := (t*t - int64(mu)*t + 2) % mod
		if v < 0 {
			v += mod
		}
		if v != 0 {
			t += int64(1) << i
		}
	}
	return t & (int64(1)<<w - 1)
}

// roundDivInt returns round(x / n) for n > 0, rounding half away from floor.
func roundDivInt(x, n int64) int64 {
	num := 2*x + n
	den := 2 * n
	q := num / den
	if num%den != 0 && num < 0 {
		q--
	}
	return q
}

// TnafAlpha returns the width-w digit representative tables of the τ-adic
// NAF: for odd u in (0, 2^(w-1)), beta[u>>1] + gama[u>>1]·τ is the minimal
// norm element congruent to u modulo τ^w. A width-w τ-NAF digit u stands
// for that element, not for the integer u; at w = 2 the tables collapse to
// beta = {1}, gama = {0} and the digits are plain ±1. mu must be ±1 and w
// a supported width.
func TnafAlpha(mu int8, w uint) (beta, gama []int64) {
	m := int64(mu)
	// τ^w = a + bτ by the recurrence (a + bτ)τ = -2b + (a + μb)τ.
	a, b := int64(1), int64(0)
	for i := uint(0); i < w; i++ {
		a, b = -2*b, a+m*b
	}
	n := int64(1) << w // N(τ^w)

	size := 1 << (w - 2)
	beta = make([]int64, size)
	gama = make([]int64, size)
	for j := 0; j < size; j++ {
		// α_u = u - q·τ^w with q = round(u conj(τ^w) / N(τ^w)), using
		// conj(a + bτ) = (a + μb) - bτ and τ² = μτ - 2.
		u := int64(2*j + 1)
		q0 := roundDivInt(u*(a+m*b), n)
		q1 := roundDivInt(-u*b, n)
		beta[j] = u - (q0*a - 2*q1*b)
		gama[j] = -(q0*b + q1*a + m*q1*b)
	}
	return beta, gama
}

// Tnaf returns the width-w τ-adic NAF of k: digits are zero or odd in
// (-2^(w-1), 2^(w-1)), at most one nonzero among any w consecutive digits.
// A digit u names the representative TnafAlpha gives for it, so consumers
// must combine beta and gama multiples of the point and its Frobenius
// image. The scalar is first reduced modulo δ = (τ^m - 1)/(τ - 1), bounding
// the digit count near m. k must be non-negative.
func Tnaf(k *big.Int, w uint, tau Tau) ([]int8, error) {
	if err := checkWidth(w); err != nil {
		return nil, err
	}
	if k.Sign() < 0 {
		return nil, fmt.Errorf("recode: negative scalar: %w", pell.ErrInvalidInput)
	}
	if tau.Mu != 1 && tau.Mu != -1 {
		return nil, fmt.Errorf("recode: tau parameter mu must be odd unit: %w", pell.ErrInvalidInput)
	}
	mu := big.NewInt(int64(tau.Mu))

	// Partial reduction: ρ = k - qδ with q = round(k conj(δ) / N(δ)).
	d0, d1 := tau.delta()
	norm := new(big.Int).Mul(d0, d0)
	t1 := new(big.Int).Mul(d0, d1)
	t1.Mul(t1, mu)
	norm.Add(norm, t1)
	t1.Mul(d1, d1)
	norm.Add(norm, t1.Lsh(t1, 1))

	t1.Add(d0, new(big.Int).Mul(mu, d1))
	q0 := roundDiv(t1.Mul(t1, k), norm)
	t1.Mul(k, d1)
	t1.Neg(t1)
	q1 := roundDiv(t1, norm)

	r0 := new(big.Int).Set(k)
	t1.Mul(q0, d0)
	r0.Sub(r0, t1)
	t1.Mul(q1, d1)
	r0.Add(r0, t1.Lsh(t1, 1))
	r1 := new(big.Int).Mul(q0, d1)
	t1.Mul(q1, d0)
	r1.Add(r1, t1)
	t1.Mul(q1, d1)
	t1.Mul(t1, mu)
	r1.Add(r1, t1)
	r1.Neg(r1)

	// Digit extraction: when r0 is odd, the digit is the centered residue u
	// of r0 + r1 t_w modulo 2^w, and the representative α_u = β_u + γ_u τ is
	// subtracted from the pair. Subtracting the integer u alone would let
	// the norm of the pair grow and the loop diverge; α_u has minimal norm
	// in its class, which is what makes the division chain terminate.
	beta, gama := TnafAlpha(tau.Mu, w)
	tw := big.NewInt(tauRoot(tau.Mu, w))
	m2w := new(big.Int).Lsh(big.NewInt(1), w)
	tnaf := make([]int8, 0, tau.M+8)
	var tmp, h big.Int
	for r0.Sign() != 0 || r1.Sign() != 0 {
		var d int64
		if r0.Bit(0) == 1 {
			tmp.Mul(r1, tw)
			tmp.Add(&tmp, r0)
			tmp.Mod(&tmp, m2w)
			d = tmp.Int64()
			if d >= int64(1)<<(w-1) {
				d -= int64(1) << w
			}
			var b, g int64
			if d > 0 {
				b, g = beta[d>>1], gama[d>>1]
			} else {
				b, g = -beta[(-d)>>1], -gama[(-d)>>1]
			}
			r0.Sub(r0, tmp.SetInt64(b))
			r1.Sub(r1, tmp.SetInt64(g))
		}
		tnaf = append(tnaf, int8(d))
		// (r0, r1) / τ = (r1 + μ r0/2, -r0/2)
		h.Rsh(r0, 1)
		r0.Mul(mu, &h)
		r0.Add(r0, r1)
		r1.Neg(&h)
	}
	return tnaf, nil
}
