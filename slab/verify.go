package slab

import (
	"fmt"

	"github.com/joshuapare/slabkit/internal/format"
)

// Verify checks the cache's structural invariants under the lock:
//
//   - every slab sits on the list matching its free count
//   - the freelist chain length equals the free count, with no repeats
//   - every slot header carries the magic, its index and the slab id
//   - in debug mode every slot on a freelist is marked free
//   - every slab page still starts with a valid control block
//
// It returns the first violation found, or nil.
func (c *Cache) Verify() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return ErrCacheDestroyed
	}
	if _, err := format.ReadCacheName(c.control); err != nil {
		return fmt.Errorf("%s: control page: %w", c.name, err)
	}

	lists := []*slabList{&c.full, &c.partial, &c.empty}
	for _, l := range lists {
		n := 0
		for s := l.head; s != nil; s = s.next {
			n++
			if err := c.verifySlab(s, l.kind); err != nil {
				return err
			}
		}
		if n != l.n {
			return fmt.Errorf("%s: %s list holds %d slabs, counted %d", c.name, l.kind, n, l.n)
		}
	}
	return nil
}

func (c *Cache) verifySlab(s *Slab, kind listKind) error {
	capacity := c.layout.Capacity
	if s.list != kind {
		return fmt.Errorf("%s: slab %d linked on %s but tagged %s", c.name, s.id, kind, s.list)
	}
	want := onPartial
	switch s.free {
	case 0:
		want = onFull
	case capacity:
		want = onEmpty
	}
	if kind != want {
		return fmt.Errorf("%s: slab %d with %d/%d free is on %s list", c.name, s.id, s.free, capacity, kind)
	}

	ctl, err := format.ReadSlabControl(s.page)
	if err != nil {
		return fmt.Errorf("%s: slab %d: %w", c.name, s.id, err)
	}
	if ctl.ID != s.id || int(ctl.Stride) != c.layout.Stride || int(ctl.Capacity) != capacity {
		return fmt.Errorf("%s: slab %d: control block mismatch %+v", c.name, s.id, ctl)
	}

	for i := range capacity {
		if !s.ownsSlot(i) {
			return fmt.Errorf("%s: slab %d slot %d: %w", c.name, s.id, i, format.ErrBadMagic)
		}
	}

	seen := make([]bool, capacity)
	n := 0
	for i := s.head; i != format.NoSlot; {
		if int(i) >= capacity || seen[i] {
			return fmt.Errorf("%s: slab %d: freelist cycle or bad link %d", c.name, s.id, i)
		}
		seen[i] = true
		n++
		if c.opts.Debug && s.state(int(i)) != format.SlotFree {
			return fmt.Errorf("%s: slab %d slot %d on freelist but not free", c.name, s.id, i)
		}
		i = format.ReadU32(s.page, c.layout.slotOff(int(i))+format.SlotNextOffset)
	}
	if n != s.free {
		return fmt.Errorf("%s: slab %d: freelist length %d, free count %d", c.name, s.id, n, s.free)
	}
	return nil
}
