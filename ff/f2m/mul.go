package f2m

import "github.com/pellcurve/pell/internal/dv"

// mulD computes the raw 326-bit carryless product d = a * b using
// right-to-left comba multiplication with an incrementally shifted copy of b.
func mulD(d []uint64, a, b *Element) {
	for i := 0; i < DLimbs; i++ {
		d[i] = 0
	}
	var bb [Limbs + 1]uint64
	bb[0], bb[1], bb[2] = b[0], b[1], b[2]
	for j := 0; j < 64; j++ {
		for i := 0; i < Limbs; i++ {
			if (a[i]>>uint(j))&1 == 1 {
				d[i] ^= bb[0]
				d[i+1] ^= bb[1]
				d[i+2] ^= bb[2]
				d[i+3] ^= bb[3]
			}
		}
		if j < 63 {
			bb[3] = bb[3]<<1 | bb[2]>>63
			bb[2] = bb[2]<<1 | bb[1]>>63
			bb[1] = bb[1]<<1 | bb[0]>>63
			bb[0] <<= 1
		}
	}
}

// sqrSpread interleaves the bits of a byte with zeros. A var initializer
// rather than an init function, so that Square works inside the init of
// f2m.go, which runs first.
var sqrSpread = func() [256]uint16 {
	var tab [256]uint16
	for b := 0; b < 256; b++ {
		var s uint16
		for i := 0; i < 8; i++ {
			s |= uint16((b>>i)&1) << (2 * i)
		}
		tab[b] = s
	}
	return tab
}()

// sqrD computes the raw square d = a^2 by bit interleaving.
func sqrD(d []uint64, a *Element) {
	for i := 0; i < Limbs; i++ {
		w := a[i]
		lo := uint64(sqrSpread[w&0xff]) |
			uint64(sqrSpread[(w>>8)&0xff])<<16 |
			uint64(sqrSpread[(w>>16)&0xff])<<32 |
			uint64(sqrSpread[(w>>24)&0xff])<<48
		hi := uint64(sqrSpread[(w>>32)&0xff]) |
			uint64(sqrSpread[(w>>40)&0xff])<<16 |
			uint64(sqrSpread[(w>>48)&0xff])<<32 |
			uint64(sqrSpread[(w>>56)&0xff])<<48
		d[2*i] = lo
		d[2*i+1] = hi
	}
}

// rdc reduces the raw product d modulo f(z) into z. Word i of d holds bits
// [64i, 64i+64); a bit at position 163+t folds into positions t+{0,3,6,7}.
func rdc(z *Element, d []uint64) {
	for i := DLimbs - 1; i >= Limbs; i-- {
		t := d[i]
		d[i-3] ^= t<<29 ^ t<<32 ^ t<<35 ^ t<<36
		d[i-2] ^= t>>35 ^ t>>32 ^ t>>29 ^ t>>28
	}
	t := d[2] >> 35
	d[0] ^= t ^ t<<3 ^ t<<6 ^ t<<7
	d[2] &= topMask
	z[0], z[1], z[2] = d[0], d[1], d[2]
}

// Mul sets z = x * y.
func (z *Element) Mul(x, y *Element) *Element {
	var d [DLimbs]uint64
	mulD(d[:], x, y)
	rdc(z, d[:])
	return z
}

// MulWord sets z = x * w for a single-word operand, shifting x instead of
// running the full comba loop.
func (z *Element) MulWord(x *Element, w uint64) *Element {
	var d [DLimbs]uint64
	for j := uint(0); j < 64 && w>>j != 0; j++ {
		if (w>>j)&1 == 1 {
			d[0] ^= x[0] << j
			d[1] ^= x[1]<<j | x[0]>>(64-j)
			d[2] ^= x[2]<<j | x[1]>>(64-j)
			d[3] ^= x[2] >> (64 - j)
		}
	}
	rdc(z, d[:])
	return z
}

// Square sets z = x^2. Squaring is linear in characteristic two and costs
// a fraction of a multiplication.
func (z *Element) Square(x *Element) *Element {
	var d [DLimbs]uint64
	sqrD(d[:], x)
	rdc(z, d[:])
	return z
}

// MulD writes the raw, unreduced product of a and b into the digit vector d.
func MulD(d dv.Vector, a, b *Element) {
	mulD(d[:DLimbs], a, b)
}

// SqrD writes the raw, unreduced square of a into the digit vector d.
func SqrD(d dv.Vector, a *Element) {
	sqrD(d[:DLimbs], a)
}

// AddD sets d = d + e over the first n digits.
func AddD(d, e dv.Vector, n int) {
	for i := 0; i < n; i++ {
		d[i] ^= e[i]
	}
}

// Rdc reduces the raw digit vector d into z.
func Rdc(z *Element, d dv.Vector) {
	var t [DLimbs]uint64
	copy(t[:], d[:DLimbs])
	rdc(z, t[:])
}
