// Package ecp implements the prime curve y² = x³ + 4 over the field of
// package fp (the BLS12-381 G1 group), with Jacobian coordinates and a set
// of simultaneous multiplication strategies selected at configuration time.
package ecp

import (
	"fmt"
	"math/big"
	"time"

	"github.com/pellcurve/pell"
	"github.com/pellcurve/pell/ff/fp"
	"github.com/pellcurve/pell/logger"
)

// SimAlg selects the strategy behind MulSim.
type SimAlg uint8

const (
	SimAlgBasic SimAlg = iota
	SimAlgTrick
	SimAlgInter
	SimAlgJoint
)

var (
	simAlg   = SimAlgInter
	mulWidth = uint(4)
	genWidth = uint(6)
)

// SetSim selects the strategy behind MulSim.
func SetSim(a SimAlg) error {
	if a > SimAlgJoint {
		return fmt.Errorf("ecp: unknown simultaneous multiplier %d: %w", a, pell.ErrNoConfig)
	}
	simAlg = a
	return nil
}

// SetWidth selects the window width of the NAF based multipliers.
func SetWidth(w uint) error {
	if w < 2 || w > 8 {
		return fmt.Errorf("ecp: window width %d not supported: %w", w, pell.ErrNoConfig)
	}
	mulWidth = w
	return nil
}

var (
	bCurve fp.Element // 4
	// Order is the order of the group.
	Order *big.Int
	// Gen is the group generator.
	Gen Point

	genTable []Point
)

func init() {
	start := time.Now()
	bCurve.SetUint64(4)
	Order, _ = new(big.Int).SetString("73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001", 16)
	gx, _ := new(big.Int).SetString("17f1d3a73197d7942695638c4fa9ac0fc3688c4f9774b905a14e3a3f171bac586c55e83ff97a1aeffb3af00adb22c6bb", 16)
	gy, _ := new(big.Int).SetString("08b3f481e3aaa0f1a09e30ed741d8ae4fcf5e095d5d00af600db18cb2c04b3edd03cc744a2888ae40caa232946c5e7e1", 16)
	Gen.X.SetBigInt(gx)
	Gen.Y.SetBigInt(gy)
	Gen.Z.SetOne()
	genTable = Tab(&Gen, genWidth)

	log := logger.Logger()
	log.Debug().Str("curve", "bls12-381 g1").
		Dur("took", time.Since(start)).Msg("curve initialized")
}
