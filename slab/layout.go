package slab

import (
	"github.com/joshuapare/slabkit/internal/format"
	"github.com/joshuapare/slabkit/slab/page"
)

// Layout is the slot geometry shared by every slab of a cache.
type Layout struct {
	ObjSize  int // payload bytes
	Align    int // payload alignment
	Guard    int // guard bytes after the payload, 0 without debug
	Stride   int // distance between consecutive slot starts
	Capacity int // slots per slab
	Mem      int // page offset of slot 0
}

// ComputeLayout derives the slot geometry for objSize-byte objects.
//
// The stride is header + payload (+ guard) rounded up to max(align, word
// size). Slot 0 is placed so that every payload lands on an align boundary;
// the capacity is whatever fits in the rest of the page.
func ComputeLayout(objSize, align int, debug bool) (Layout, error) {
	if objSize <= 0 {
		return Layout{}, ErrBadSize
	}
	if align == 0 {
		align = format.DefaultAlign
	}
	if !format.IsPow2(align) || align > page.Size {
		return Layout{}, ErrBadAlignment
	}

	guard := 0
	if debug {
		guard = format.GuardSize
	}
	unit := max(align, format.WordSize)
	stride := format.AlignUp(format.SlotHeaderSize+objSize+guard, unit)
	mem := format.AlignUp(format.SlabControlSize+format.SlotHeaderSize, unit) - format.SlotHeaderSize
	if mem >= page.Size {
		return Layout{}, ErrObjectTooLarge
	}
	capacity := (page.Size - mem) / stride
	if capacity == 0 {
		return Layout{}, ErrObjectTooLarge
	}

	return Layout{
		ObjSize:  objSize,
		Align:    align,
		Guard:    guard,
		Stride:   stride,
		Capacity: capacity,
		Mem:      mem,
	}, nil
}

func (l *Layout) slotOff(i int) int {
	return l.Mem + i*l.Stride
}

func (l *Layout) payloadOff(i int) int {
	return l.slotOff(i) + format.SlotHeaderSize
}
