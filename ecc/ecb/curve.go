// Package ecb implements elliptic curves over the binary field of package
// f2m, with the sect163k1 and sect163r2 parameter sets and a set of scalar
// multiplication strategies selected at configuration time.
//
// Ordinary and Koblitz curves follow the short Weierstrass form
// y² + xy = x³ + ax² + b; the supersingular family tag covers curves
// y² + cy = x³ + ax + b and only supports the affine group law.
package ecb

import (
	"fmt"
	"math/big"
	"time"

	"github.com/pellcurve/pell"
	"github.com/pellcurve/pell/ff/f2m"
	"github.com/pellcurve/pell/internal/recode"
	"github.com/pellcurve/pell/logger"
)

// Family tags the curve shape.
type Family uint8

const (
	FamilyOrdinary Family = iota
	FamilyKoblitz
	FamilySupersingular
)

// CoeffClass describes a curve coefficient for formula specialization.
type CoeffClass uint8

const (
	CoeffZero CoeffClass = iota
	CoeffOne
	CoeffDigit
	CoeffGeneral
)

// Coord selects the coordinate system of the group law.
type Coord uint8

const (
	// CoordBasic uses affine formulas everywhere.
	CoordBasic Coord = iota
	// CoordProjc uses Lopez-Dahab projective doubling and mixed addition.
	CoordProjc
)

// MulAlg selects the strategy behind Curve.Mul.
type MulAlg uint8

const (
	MulAlgBasic MulAlg = iota
	MulAlgLwnaf
	MulAlgRwnaf
	MulAlgHalve
	MulAlgLodah
)

var (
	coord    = CoordProjc
	mulAlg   = MulAlgLwnaf
	mulWidth = uint(4)
)

// SetCoord selects the coordinate system used by Add and Dbl.
func SetCoord(c Coord) error {
	if c > CoordProjc {
		return fmt.Errorf("ecb: unknown coordinate system %d: %w", c, pell.ErrNoConfig)
	}
	coord = c
	return nil
}

// SetMul selects the strategy behind Curve.Mul.
func SetMul(a MulAlg) error {
	if a > MulAlgLodah {
		return fmt.Errorf("ecb: unknown multiplier %d: %w", a, pell.ErrNoConfig)
	}
	mulAlg = a
	return nil
}

// SetWidth selects the window width of the NAF based multipliers. The
// recombination schedules are written out per width, so only 2..6 exist.
func SetWidth(w uint) error {
	if w < 2 || w > 6 {
		return fmt.Errorf("ecb: window width %d not supported: %w", w, pell.ErrNoConfig)
	}
	mulWidth = w
	return nil
}

// Curve carries the parameters of a binary curve and its cached generator
// table.
type Curve struct {
	Name   string
	A, B   f2m.Element
	C      f2m.Element // supersingular linear coefficient
	OptA   CoeffClass
	OptB   CoeffClass
	Family Family
	N      *big.Int // order of the main subgroup
	H      uint64   // cofactor
	G      Point
	Tau    recode.Tau // Frobenius parameters, Koblitz only

	trA      uint64 // Tr(a), the subgroup membership reference
	genTable []Point
}

const genWidth = 6

func mustElement(s string) f2m.Element {
	var e f2m.Element
	if _, err := e.SetString(s); err != nil {
		panic(err)
	}
	return e
}

func coeffClass(e *f2m.Element) CoeffClass {
	switch {
	case e.IsZero():
		return CoeffZero
	case e.IsOne():
		return CoeffOne
	case e.BitLen() <= 64:
		return CoeffDigit
	default:
		return CoeffGeneral
	}
}

func newCurve(name string, family Family, a, b, gx, gy, order string, h uint64) *Curve {
	log := logger.Logger().With().Str("curve", name).Logger()
	start := time.Now()

	c := &Curve{
		Name:   name,
		A:      mustElement(a),
		B:      mustElement(b),
		Family: family,
		H:      h,
	}
	c.OptA = coeffClass(&c.A)
	c.OptB = coeffClass(&c.B)
	c.trA = c.A.Trace()
	c.N, _ = new(big.Int).SetString(order, 16)
	c.G = Point{X: mustElement(gx), Y: mustElement(gy), Norm: normAffine}
	c.G.Z.SetOne()
	if family == FamilyKoblitz {
		mu := int8(-1)
		if c.A.IsOne() {
			mu = 1
		}
		c.Tau = recode.Tau{Mu: mu, M: f2m.Bits}
		c.genTable = c.tabTnaf(&c.G, genWidth)
	} else {
		c.genTable = c.Tab(&c.G, genWidth)
	}

	log.Debug().Dur("took", time.Since(start)).Msg("curve initialized")
	return c
}

// K163 returns the sect163k1 Koblitz curve.
func K163() *Curve {
	return newCurve("sect163k1", FamilyKoblitz,
		"1",
		"1",
		"02FE13C0537BBC11ACAA07D793DE4E6D5E5C94EEE8",
		"0289070FB05D38FF58321F2E800536D538CCDAA3D9",
		"04000000000000000000020108A2E0CC0D99F8A5EF",
		2)
}

// B163 returns the sect163r2 ordinary curve.
func B163() *Curve {
	return newCurve("sect163r2", FamilyOrdinary,
		"1",
		"020A601907B8C953CA1481EB10512F78744A3205FD",
		"03F0EBA16286A2D57EA0991168D4994637E8343E36",
		"00D51FBC6C71A0094FA2CDD545B11C5C0C797324F1",
		"040000000000000000000292FE77E70C12A4234C33",
		2)
}
