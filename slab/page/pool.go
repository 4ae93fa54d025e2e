package page

import "sync"

// Pool is a bounded heap-backed Supplier. Frames are allocated on first use
// and kept for reuse after FreePage.
type Pool struct {
	mu     sync.Mutex
	frames frames
	pages  [][]byte
}

// NewPool creates a pool that hands out at most n pages. n <= 0 selects
// DefaultPages.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = DefaultPages
	}
	return &Pool{
		frames: newFrames(n),
		pages:  make([][]byte, n),
	}
}

// AllocPage returns a zeroed page, or ErrExhausted.
func (p *Pool) AllocPage() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, ok := p.frames.claim()
	if !ok {
		return nil, ErrExhausted
	}
	pg := p.pages[i]
	if pg == nil {
		pg = make([]byte, Size)
		p.pages[i] = pg
	} else {
		clear(pg)
	}
	p.frames.bind(i, pg)
	return pg, nil
}

// FreePage returns pg to the pool.
func (p *Pool) FreePage(pg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.frames.release(pg)
	return err
}

// InUse returns the number of pages currently handed out.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames.inUse()
}

// Cap returns the page budget.
func (p *Pool) Cap() int {
	return int(p.frames.n)
}
