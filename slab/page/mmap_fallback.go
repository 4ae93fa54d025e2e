//go:build !unix

package page

import "sync"

// MmapArena carves one heap slice into pages where mmap is not available.
// Pages are not guaranteed to start on a page boundary.
type MmapArena struct {
	mu     sync.Mutex
	frames frames
	arena  []byte
	closed bool
}

// NewMmapArena allocates n pages. n <= 0 selects DefaultPages.
func NewMmapArena(n int) (*MmapArena, error) {
	if n <= 0 {
		n = DefaultPages
	}
	return &MmapArena{
		frames: newFrames(n),
		arena:  make([]byte, n*Size),
	}, nil
}

func (a *MmapArena) frame(i uint) []byte {
	off := int(i) * Size
	return a.arena[off : off+Size : off+Size]
}

// AllocPage returns a zeroed page, or ErrExhausted.
func (a *MmapArena) AllocPage() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}
	i, ok := a.frames.claim()
	if !ok {
		return nil, ErrExhausted
	}
	pg := a.frame(i)
	clear(pg)
	a.frames.bind(i, pg)
	return pg, nil
}

// FreePage returns pg to the arena.
func (a *MmapArena) FreePage(pg []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	_, err := a.frames.release(pg)
	return err
}

// InUse returns the number of pages currently handed out.
func (a *MmapArena) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames.inUse()
}

// Cap returns the page budget.
func (a *MmapArena) Cap() int {
	return int(a.frames.n)
}

// Close releases the arena.
func (a *MmapArena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.arena = nil
	return nil
}
