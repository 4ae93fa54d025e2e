package page

import (
	"github.com/willf/bitset"
)

// frames tracks which page frames of a supplier are in use. The bitmap holds
// one bit per frame; byAddr maps the first byte of a handed-out page back to
// its frame so FreePage can reject pages it never issued.
type frames struct {
	n      uint
	used   *bitset.BitSet
	byAddr map[*byte]uint
}

func newFrames(n int) frames {
	return frames{
		n:      uint(n),
		used:   bitset.New(uint(n)),
		byAddr: make(map[*byte]uint, 64),
	}
}

// claim marks the lowest free frame as used and returns it.
func (f *frames) claim() (uint, bool) {
	i, ok := f.used.NextClear(0)
	if !ok || i >= f.n {
		return 0, false
	}
	f.used.Set(i)
	return i, true
}

// bind records that p is the page for frame i.
func (f *frames) bind(i uint, p []byte) {
	f.byAddr[&p[0]] = i
}

// release clears the frame owning p.
func (f *frames) release(p []byte) (uint, error) {
	if len(p) != Size {
		return 0, ErrForeignPage
	}
	i, ok := f.byAddr[&p[0]]
	if !ok || !f.used.Test(i) {
		return 0, ErrForeignPage
	}
	f.used.Clear(i)
	delete(f.byAddr, &p[0])
	return i, nil
}

func (f *frames) inUse() int {
	return int(f.used.Count())
}
