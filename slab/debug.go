package slab

import (
	"github.com/joshuapare/slabkit/internal/format"
)

// claimSlot validates a slot just taken off the freelist and marks it
// allocated: the header must be a valid free header. The payload is filled
// with the allocation pattern and the guard region rewritten.
func (c *Cache) claimSlot(s *Slab, idx int) error {
	h := s.header(idx)
	if !h.Valid() || h.State != format.SlotFree || h.Slab != s.id || int(h.Index) != idx {
		return c.corrupt("alloc", s, idx, -1, ErrCorruptSlot)
	}
	s.setState(idx, format.SlotAllocated)
	format.Fill(s.payload(idx), format.AllocPattern)
	format.Fill(s.guard(idx), format.GuardPattern)
	return nil
}

// releaseSlot checks the guard region of an allocated slot, then poisons the
// payload and marks the slot free.
func (c *Cache) releaseSlot(s *Slab, idx int) error {
	if off := format.FirstMismatch(s.guard(idx), format.GuardPattern); off >= 0 {
		return c.corrupt("free", s, idx, off, ErrGuardOverwrite)
	}
	format.Fill(s.payload(idx), format.FreePattern)
	s.setState(idx, format.SlotFree)
	format.Fill(s.guard(idx), format.GuardPattern)
	return nil
}

// corrupt reports a corruption to the failure handler. If the handler
// returns, the error is handed back to the caller; the slot stays out of
// circulation.
func (c *Cache) corrupt(op string, s *Slab, idx, off int, cause error) error {
	err := &CorruptionError{
		Op:     op,
		Cache:  c.name,
		Slab:   s.id,
		Slot:   idx,
		Offset: off,
		Err:    cause,
	}
	c.log.Error("slab corruption detected",
		"cache", c.name,
		"op", op,
		"slab", s.id,
		"slot", idx,
		"error", cause)
	c.opts.OnCorruption(err)
	return err
}
