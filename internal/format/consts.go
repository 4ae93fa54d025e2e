// Package format holds the byte-level layout of slab pages: the control block
// written at the start of every page, the per-slot object header, and the
// fill patterns used by the debug instrumentation. Higher-level packages only
// go through the encoders here and never compute header offsets themselves.
package format

var (
	// SlabSignature is the four-byte signature at the start of every slab page.
	// Layout:
	//   0x00  's' 'l' 'a' 'b'
	SlabSignature = []byte{'s', 'l', 'a', 'b'}

	// CacheSignature is the four-byte signature at the start of a cache's
	// control page.
	CacheSignature = []byte{'k', 'm', 'e', 'm'}
)

const (
	// WordSize is the native word size; strides never drop below it.
	WordSize = 8

	// DefaultAlign is the payload alignment used when a cache asks for 0.
	DefaultAlign = 16

	// SlotMagic is stored in every object header. Anything else means the
	// header was never initialized or has been overwritten.
	SlotMagic uint16 = 0x51AB

	// SlotHeaderSize is the number of bytes reserved in front of every payload.
	SlotHeaderSize = 16

	// SlabControlSize is the number of bytes at the start of a slab page used
	// for the slab's own bookkeeping. Slots start after it.
	SlabControlSize = 56

	// CacheNameLen is the longest cache name kept in the control page.
	CacheNameLen = 32

	// GuardSize is the length of the guard region trailing every payload in
	// debug mode.
	GuardSize = 16
)

// Fill patterns.
const (
	AllocPattern byte = 0xA5 // payload right after allocation
	FreePattern  byte = 0xCC // payload after release
	GuardPattern byte = 0xDE // guard region
)

// Object header layout (little-endian), SlotHeaderSize bytes:
//
//	Offset  Size  Field
//	0x00    2     magic (SlotMagic)
//	0x02    2     slot index within the slab
//	0x04    1     lifecycle state (SlotFree / SlotAllocated)
//	0x05    3     reserved
//	0x08    4     index of the next free slot, NoSlot terminates the chain
//	0x0C    4     owning slab id
const (
	SlotMagicOffset = 0x00
	SlotIndexOffset = 0x02
	SlotStateOffset = 0x04
	SlotNextOffset  = 0x08
	SlotSlabOffset  = 0x0C
)

// Slab control block layout (little-endian), at page offset 0:
//
//	Offset  Size  Field
//	0x00    4     's' 'l' 'a' 'b'
//	0x04    4     slab id
//	0x08    4     object payload size
//	0x0C    4     stride
//	0x10    4     capacity
//	0x14    4     offset of slot 0 within the page
const (
	SlabIDOffset       = 0x04
	SlabObjSizeOffset  = 0x08
	SlabStrideOffset   = 0x0C
	SlabCapacityOffset = 0x10
	SlabMemOffset      = 0x14
)

// Cache control page layout (little-endian):
//
//	Offset  Size  Field
//	0x00    4     'k' 'm' 'e' 'm'
//	0x04    4     object payload size
//	0x08    4     alignment
//	0x0C    32    NUL-padded name
const (
	CacheObjSizeOffset = 0x04
	CacheAlignOffset   = 0x08
	CacheNameOffset    = 0x0C
)

// Lifecycle states kept in the object header.
const (
	SlotFree      byte = 0
	SlotAllocated byte = 1
)

// NoSlot terminates a slab's freelist.
const NoSlot uint32 = 0xFFFFFFFF
