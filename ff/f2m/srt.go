package f2m

// Sqrt sets z = sqrt(x). Every element of a binary field has a unique square
// root; writing x = xe(z²) + z*xo(z²), sqrt(x) = xe(z) + sqrt(z)*xo(z).
func (z *Element) Sqrt(x *Element) *Element {
	var xe, xo Element
	for i := 0; i < Bits; i++ {
		if x.Bit(i) == 1 {
			if i&1 == 0 {
				xe.SetBit(i >> 1)
			} else {
				xo.SetBit(i >> 1)
			}
		}
	}
	xo.Mul(&xo, &sqrtZ)
	return z.Add(&xe, &xo)
}

// HalfTrace sets z to the half-trace H(x) = sum of x^(4^i) for i up to
// (m-1)/2. When Tr(x) = 0, H(x) solves the quadratic t^2 + t = x.
func (z *Element) HalfTrace(x *Element) *Element {
	acc := *x
	cur := *x
	for i := 1; i <= (Bits-1)/2; i++ {
		cur.Square(&cur)
		cur.Square(&cur)
		acc.Add(&acc, &cur)
	}
	return z.Set(&acc)
}
