//go:build unix

package page

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// MmapArena is a Supplier backed by a single anonymous private mapping.
// Pages are page-aligned; released pages are handed back to the kernel with
// MADV_DONTNEED.
type MmapArena struct {
	mu     sync.Mutex
	frames frames
	arena  []byte
	closed bool
}

// NewMmapArena maps n pages. n <= 0 selects DefaultPages.
func NewMmapArena(n int) (*MmapArena, error) {
	if n <= 0 {
		n = DefaultPages
	}
	arena, err := unix.Mmap(-1, 0, n*Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("page: mmap %d pages: %w", n, err)
	}
	return &MmapArena{
		frames: newFrames(n),
		arena:  arena,
	}, nil
}

func (a *MmapArena) frame(i uint) []byte {
	off := int(i) * Size
	return a.arena[off : off+Size : off+Size]
}

// AllocPage returns a zeroed, page-aligned page, or ErrExhausted.
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
	// MADV_DONTNEED zeroes anonymous pages on Linux only.
	clear(pg)
	a.frames.bind(i, pg)
	return pg, nil
}

// FreePage returns pg to the arena and drops its backing memory.
func (a *MmapArena) FreePage(pg []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if _, err := a.frames.release(pg); err != nil {
		return err
	}
	if err := unix.Madvise(pg, unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("page: madvise: %w", err)
	}
	return nil
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

// Close unmaps the arena. Pages still held by callers become invalid.
func (a *MmapArena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	return unix.Munmap(a.arena)
}
