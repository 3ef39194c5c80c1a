package f2m

// ItrPre builds the table of the map a -> a^(2^b). The map is linear over
// GF(2), so the table holds the image of each polynomial basis element and
// Itr evaluates the map with Bits conditional additions. A negative b walks
// the Frobenius backwards with square roots.
func ItrPre(b int) []Element {
	s := Element{2, 0, 0}
	if b >= 0 {
		for i := 0; i < b; i++ {
			s.Square(&s)
		}
	} else {
		for i := 0; i < -b; i++ {
			s.Sqrt(&s)
		}
	}
	// Image of z^j is s^j; build the powers incrementally.
	t := make([]Element, Bits)
	t[0].SetOne()
	for j := 1; j < Bits; j++ {
		t[j].Mul(&t[j-1], &s)
	}
	return t
}

// Itr applies the map precomputed by ItrPre to a.
func Itr(z, a *Element, t []Element) *Element {
	var acc Element
	for j := 0; j < Bits; j++ {
		if a.Bit(j) == 1 {
			acc.Add(&acc, &t[j])
		}
	}
	return z.Set(&acc)
}
