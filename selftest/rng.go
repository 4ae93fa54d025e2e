package selftest

// xorshift is the harness's pseudo-random source. The sequence depends only
// on the seed, so a failing run can be replayed exactly.
type xorshift struct {
	s uint64
}

func (x *xorshift) next() uint32 {
	x.s ^= x.s << 7
	x.s ^= x.s >> 9
	return uint32(x.s)
}

// intn returns a value in [0, n).
func (x *xorshift) intn(n int) int {
	return int(x.next() % uint32(n))
}

// hit reports a 1-in-rate event. A rate of 0 never fires.
func (x *xorshift) hit(rate int) bool {
	if rate <= 0 {
		return false
	}
	return x.next()%uint32(rate) == 0
}
