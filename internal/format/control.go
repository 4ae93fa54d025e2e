package format

import (
	"bytes"
	"fmt"
)

// SlabControl is the decoded control block at the start of a slab page.
type SlabControl struct {
	ID       uint32
	ObjSize  uint32
	Stride   uint32
	Capacity uint32
	Mem      uint32 // page offset of slot 0
}

// PutSlabControl writes the signature and c at the start of page.
func PutSlabControl(page []byte, c SlabControl) {
	copy(page[0:4], SlabSignature)
	PutU32(page, SlabIDOffset, c.ID)
	PutU32(page, SlabObjSizeOffset, c.ObjSize)
	PutU32(page, SlabStrideOffset, c.Stride)
	PutU32(page, SlabCapacityOffset, c.Capacity)
	PutU32(page, SlabMemOffset, c.Mem)
}

// ReadSlabControl validates the signature at the start of page and decodes
// the control block.
func ReadSlabControl(page []byte) (SlabControl, error) {
	if len(page) < SlabControlSize {
		return SlabControl{}, fmt.Errorf("slab control: %w", ErrTruncated)
	}
	if !bytes.Equal(page[:4], SlabSignature) {
		return SlabControl{}, fmt.Errorf("slab control: %w", ErrSignatureMismatch)
	}
	return SlabControl{
		ID:       ReadU32(page, SlabIDOffset),
		ObjSize:  ReadU32(page, SlabObjSizeOffset),
		Stride:   ReadU32(page, SlabStrideOffset),
		Capacity: ReadU32(page, SlabCapacityOffset),
		Mem:      ReadU32(page, SlabMemOffset),
	}, nil
}

// PutCacheControl writes the cache control page: signature, object size,
// alignment and the name, truncated to CacheNameLen bytes.
func PutCacheControl(page []byte, name string, objSize, align int) {
	copy(page[0:4], CacheSignature)
	PutU32(page, CacheObjSizeOffset, uint32(objSize))
	PutU32(page, CacheAlignOffset, uint32(align))
	field := page[CacheNameOffset : CacheNameOffset+CacheNameLen]
	clear(field)
	copy(field, name)
}

// ReadCacheName returns the name stored in a cache control page.
func ReadCacheName(page []byte) (string, error) {
	if len(page) < CacheNameOffset+CacheNameLen {
		return "", fmt.Errorf("cache control: %w", ErrTruncated)
	}
	if !bytes.Equal(page[:4], CacheSignature) {
		return "", fmt.Errorf("cache control: %w", ErrSignatureMismatch)
	}
	field := page[CacheNameOffset : CacheNameOffset+CacheNameLen]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field), nil
}
