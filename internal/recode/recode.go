// Package recode converts scalars into the signed digit representations used
// by the scalar multiplication routines: width-w NAF, fixed windows, the
// joint sparse form, and the width-w τ-adic NAF of Koblitz curves.
//
// All digit slices are least significant digit first.
package recode

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/pellcurve/pell"
)

// supportedWidths has a bit set for every window width the recoders accept.
var supportedWidths = func() *bitset.BitSet {
	b := bitset.New(9)
	for w := uint(2); w <= 8; w++ {
		b.Set(w)
	}
	return b
}()

func checkWidth(w uint) error {
	if !supportedWidths.Test(w) {
		return fmt.Errorf("recode: window width %d not supported: %w", w, pell.ErrInvalidInput)
	}
	return nil
}

// mods returns the residue of v modulo 2^w in the centered range
// [-2^(w-1), 2^(w-1)).
func mods(v int64, w uint) int64 {
	mask := int64(1)<<w - 1
	u := v & mask
	if u >= int64(1)<<(w-1) {
		u -= int64(1) << w
	}
	return u
}

// Naf returns the width-w non-adjacent form of k: digits are zero or odd in
// (-2^(w-1), 2^(w-1)), and any two of w consecutive digits has at most one
// nonzero. k must be non-negative.
func Naf(k *big.Int, w uint) ([]int8, error) {
	if err := checkWidth(w); err != nil {
		return nil, err
	}
	if k.Sign() < 0 {
		return nil, fmt.Errorf("recode: negative scalar: %w", pell.ErrInvalidInput)
	}
	n := new(big.Int).Set(k)
	naf := make([]int8, 0, k.BitLen()+1)
	var t big.Int
	for n.Sign() != 0 {
		var d int64
		if n.Bit(0) == 1 {
			d = mods(int64(lowBits(n, w)), w)
			if d > 0 {
				n.Sub(n, t.SetInt64(d))
			} else {
				n.Add(n, t.SetInt64(-d))
			}
		}
		naf = append(naf, int8(d))
		n.Rsh(n, 1)
	}
	return naf, nil
}

// lowBits returns the w lowest bits of n as an unsigned word, w <= 8.
func lowBits(n *big.Int, w uint) uint64 {
	var v uint64
	for i := uint(0); i < w; i++ {
		v |= uint64(n.Bit(int(i))) << i
	}
	return v
}

// Win returns the unsigned base-2^w digits of k, least significant first.
func Win(k *big.Int, w uint) ([]uint8, error) {
	if err := checkWidth(w); err != nil {
		return nil, err
	}
	if k.Sign() < 0 {
		return nil, fmt.Errorf("recode: negative scalar: %w", pell.ErrInvalidInput)
	}
	n := new(big.Int).Set(k)
	win := make([]uint8, 0, k.BitLen()/int(w)+1)
	for n.Sign() != 0 {
		win = append(win, uint8(lowBits(n, w)))
		n.Rsh(n, uint(w))
	}
	if len(win) == 0 {
		win = append(win, 0)
	}
	return win, nil
}

// Jsf returns the joint sparse form of the pair (k0, k1): two digit strings
// of equal length over {-1, 0, 1} with minimal joint weight.
func Jsf(k0, k1 *big.Int) ([]int8, []int8, error) {
	if k0.Sign() < 0 || k1.Sign() < 0 {
		return nil, nil, fmt.Errorf("recode: negative scalar: %w", pell.ErrInvalidInput)
	}
	n0 := new(big.Int).Set(k0)
	n1 := new(big.Int).Set(k1)
	d0, d1 := 0, 0
	max := k0.BitLen()
	if k1.BitLen() > max {
		max = k1.BitLen()
	}
	u0 := make([]int8, 0, max+2)
	u1 := make([]int8, 0, max+2)

	low3 := func(n *big.Int, d int) int {
		return int(n.Bit(2)<<2|n.Bit(1)<<1|n.Bit(0)) + d
	}
	for n0.Sign() != 0 || n1.Sign() != 0 || d0 != 0 || d1 != 0 {
		l0 := low3(n0, d0)
		l1 := low3(n1, d1)
		var v0, v1 int8
		if l0&1 == 1 {
			v0 = 1
			if l0&3 == 3 {
				v0 = -1
			}
			if (l0&7 == 3 || l0&7 == 5) && l1&3 == 2 {
				v0 = -v0
			}
		}
		if l1&1 == 1 {
			v1 = 1
			if l1&3 == 3 {
				v1 = -1
			}
			if (l1&7 == 3 || l1&7 == 5) && l0&3 == 2 {
				v1 = -v1
			}
		}
		if 2*d0 == 1+int(v0) {
			d0 = 1 - d0
		}
		if 2*d1 == 1+int(v1) {
			d1 = 1 - d1
		}
		u0 = append(u0, v0)
		u1 = append(u1, v1)
		n0.Rsh(n0, 1)
		n1.Rsh(n1, 1)
	}
	return u0, u1, nil
}
