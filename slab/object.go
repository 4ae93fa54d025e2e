package slab

import (
	"fmt"
	"unsafe"
)

// Object is a handle to one allocated slot. The zero Object is the nil
// object: Cache.Free ignores it and every accessor returns a zero value.
type Object struct {
	s   *Slab
	idx int
}

// IsNil reports whether o is the nil object.
func (o Object) IsNil() bool {
	return o.s == nil
}

// Bytes returns the payload. Its length is the cache's object size; in debug
// mode its capacity extends over the guard region.
func (o Object) Bytes() []byte {
	if o.s == nil || o.s.page == nil {
		return nil
	}
	return o.s.payload(o.idx)
}

// Size returns the payload size, 0 for the nil object.
func (o Object) Size() int {
	if o.s == nil {
		return 0
	}
	return o.s.cache.layout.ObjSize
}

// Addr returns the address of the first payload byte, 0 for the nil object.
func (o Object) Addr() uintptr {
	b := o.Bytes()
	if b == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Cache returns the cache the object was allocated from.
func (o Object) Cache() *Cache {
	if o.s == nil {
		return nil
	}
	return o.s.cache
}

// Slot returns the owning slab id and the slot index.
func (o Object) Slot() (slab uint32, index int) {
	if o.s == nil {
		return 0, -1
	}
	return o.s.id, o.idx
}

// String implements fmt.Stringer.
func (o Object) String() string {
	if o.s == nil {
		return "<nil object>"
	}
	return fmt.Sprintf("%s[slab %d slot %d]", o.s.cache.name, o.s.id, o.idx)
}
