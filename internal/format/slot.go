package format

import "fmt"

// SlotHeader is the decoded form of the object header in front of a payload.
type SlotHeader struct {
	Magic uint16
	Index uint16
	State byte
	Next  uint32
	Slab  uint32
}

// Valid reports whether the header carries SlotMagic.
func (h SlotHeader) Valid() bool {
	return h.Magic == SlotMagic
}

// ReadSlotHeader decodes the header at off within page.
func ReadSlotHeader(page []byte, off int) (SlotHeader, error) {
	if off < 0 || off+SlotHeaderSize > len(page) {
		return SlotHeader{}, fmt.Errorf("slot header: %w", ErrTruncated)
	}
	h := page[off : off+SlotHeaderSize]
	return SlotHeader{
		Magic: ReadU16(h, SlotMagicOffset),
		Index: ReadU16(h, SlotIndexOffset),
		State: h[SlotStateOffset],
		Next:  ReadU32(h, SlotNextOffset),
		Slab:  ReadU32(h, SlotSlabOffset),
	}, nil
}

// PutSlotHeader encodes h at off within page.
func PutSlotHeader(page []byte, off int, h SlotHeader) {
	b := page[off : off+SlotHeaderSize]
	PutU16(b, SlotMagicOffset, h.Magic)
	PutU16(b, SlotIndexOffset, h.Index)
	b[SlotStateOffset] = h.State
	b[SlotStateOffset+1], b[SlotStateOffset+2], b[SlotStateOffset+3] = 0, 0, 0
	PutU32(b, SlotNextOffset, h.Next)
	PutU32(b, SlotSlabOffset, h.Slab)
}

// SetSlotState rewrites only the lifecycle byte of the header at off.
func SetSlotState(page []byte, off int, state byte) {
	page[off+SlotStateOffset] = state
}

// SetSlotNext rewrites only the freelist link of the header at off.
func SetSlotNext(page []byte, off int, next uint32) {
	PutU32(page, off+SlotNextOffset, next)
}
