package slab

import (
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/slabkit/internal/format"
)

// slabSeq hands out slab ids. Ids are never reused, so a stale handle to a
// released slab cannot match a newer slab's headers.
var slabSeq atomic.Uint32

// Slab is one page split into Capacity equal-stride slots.
//
// free and head are guarded by the owning cache's mutex.
type Slab struct {
	id    uint32
	cache *Cache
	page  []byte

	free int    // number of slots on the freelist
	head uint32 // first free slot, format.NoSlot when full

	prev, next *Slab
	list       listKind
}

// newSlab takes a page from the cache's supplier and lays out every slot as
// free, chained in slot order.
func newSlab(c *Cache) (*Slab, error) {
	pg, err := c.pages.AllocPage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfPages, err)
	}

	l := &c.layout
	s := &Slab{
		id:    slabSeq.Add(1),
		cache: c,
		page:  pg,
		free:  l.Capacity,
		head:  0,
	}

	format.PutSlabControl(pg, format.SlabControl{
		ID:       s.id,
		ObjSize:  uint32(l.ObjSize),
		Stride:   uint32(l.Stride),
		Capacity: uint32(l.Capacity),
		Mem:      uint32(l.Mem),
	})

	for i := range l.Capacity {
		next := uint32(i + 1)
		if i == l.Capacity-1 {
			next = format.NoSlot
		}
		format.PutSlotHeader(pg, l.slotOff(i), format.SlotHeader{
			Magic: format.SlotMagic,
			Index: uint16(i),
			State: format.SlotFree,
			Next:  next,
			Slab:  s.id,
		})
		if l.Guard > 0 {
			format.Fill(s.guard(i), format.GuardPattern)
		}
	}
	return s, nil
}

// ID returns the slab id stored in the page's control block.
func (s *Slab) ID() uint32 {
	return s.id
}

// pop unlinks the first free slot. Caller holds the cache lock and has
// checked free > 0.
func (s *Slab) pop() int {
	i := s.head
	s.head = format.ReadU32(s.page, s.cache.layout.slotOff(int(i))+format.SlotNextOffset)
	s.free--
	return int(i)
}

// push links slot i back in as the first free slot. Caller holds the cache
// lock.
func (s *Slab) push(i int) {
	format.SetSlotNext(s.page, s.cache.layout.slotOff(i), s.head)
	s.head = uint32(i)
	s.free++
}

func (s *Slab) payload(i int) []byte {
	l := &s.cache.layout
	off := l.payloadOff(i)
	return s.page[off : off+l.ObjSize : off+l.ObjSize+l.Guard]
}

func (s *Slab) guard(i int) []byte {
	l := &s.cache.layout
	off := l.payloadOff(i) + l.ObjSize
	return s.page[off : off+l.Guard]
}

// header reads the full object header of slot i.
func (s *Slab) header(i int) format.SlotHeader {
	h, _ := format.ReadSlotHeader(s.page, s.cache.layout.slotOff(i))
	return h
}

// ownsSlot checks the identity fields of slot i's header (magic, index, slab
// id). It does not read the lifecycle byte, so it is safe to call on a slot
// whose owner is concurrently allocating or releasing it.
func (s *Slab) ownsSlot(i int) bool {
	off := s.cache.layout.slotOff(i)
	return format.ReadU16(s.page, off+format.SlotMagicOffset) == format.SlotMagic &&
		format.ReadU16(s.page, off+format.SlotIndexOffset) == uint16(i) &&
		format.ReadU32(s.page, off+format.SlotSlabOffset) == s.id
}

func (s *Slab) state(i int) byte {
	return s.page[s.cache.layout.slotOff(i)+format.SlotStateOffset]
}

func (s *Slab) setState(i int, st byte) {
	format.SetSlotState(s.page, s.cache.layout.slotOff(i), st)
}
