package fptower

import (
	"math/big"

	"github.com/pellcurve/pell/ff/fp"
)

// frobGamma[i] = (1 + u)^(i*(p-1)/6). These are the twist constants of the
// Frobenius endomorphism on E12; they are computed once at package init
// rather than carried as literals.
var frobGamma [6]E2

func init() {
	e := fp.Modulus()
	e.Sub(e, big.NewInt(1))
	e.Div(e, big.NewInt(6))

	var xi E2
	xi.A0.SetOne()
	xi.A1.SetOne()
	frobGamma[0].SetOne()
	frobGamma[1].Exp(xi, e)
	for i := 2; i < 6; i++ {
		frobGamma[i].Mul(&frobGamma[i-1], &frobGamma[1])
	}
}

// Frobenius sets z = x^p. Each E2 coefficient is conjugated, then scaled by
// the power of the non-residue matching its position in the tower basis.
func (z *E12) Frobenius(x *E12) *E12 {
	z.C0.B0.Conjugate(&x.C0.B0)
	z.C0.B1.Conjugate(&x.C0.B1).Mul(&z.C0.B1, &frobGamma[2])
	z.C0.B2.Conjugate(&x.C0.B2).Mul(&z.C0.B2, &frobGamma[4])
	z.C1.B0.Conjugate(&x.C1.B0).Mul(&z.C1.B0, &frobGamma[1])
	z.C1.B1.Conjugate(&x.C1.B1).Mul(&z.C1.B1, &frobGamma[3])
	z.C1.B2.Conjugate(&x.C1.B2).Mul(&z.C1.B2, &frobGamma[5])
	return z
}
