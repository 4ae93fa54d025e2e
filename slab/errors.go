package slab

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfPages indicates the page supplier could not provide a page.
	ErrOutOfPages = errors.New("slab: out of pages")

	// ErrBadSize indicates a non-positive object size.
	ErrBadSize = errors.New("slab: object size must be positive")

	// ErrBadAlignment indicates an alignment that is not a power of two or
	// exceeds the page size.
	ErrBadAlignment = errors.New("slab: alignment must be a power of two no larger than a page")

	// ErrObjectTooLarge indicates that not even one slot fits in a page.
	ErrObjectTooLarge = errors.New("slab: object does not fit in a page")

	// ErrForeignObject indicates an object that does not belong to the cache
	// it was released to: bad header magic, another cache, or a stale handle.
	ErrForeignObject = errors.New("slab: foreign or invalid object")

	// ErrCacheDestroyed indicates use of a cache after Destroy.
	ErrCacheDestroyed = errors.New("slab: cache destroyed")

	// ErrCorruptSlot indicates a slot taken off the freelist whose header is
	// not a valid free header.
	ErrCorruptSlot = errors.New("slab: corrupt slot header or double allocation")

	// ErrDoubleFree indicates a release of an object that is not allocated
	// (double free or use after free).
	ErrDoubleFree = errors.New("slab: double free or use after free")

	// ErrGuardOverwrite indicates a write past the end of an object's payload.
	ErrGuardOverwrite = errors.New("slab: guard region overwritten")
)

// CorruptionError describes a detected metadata or guard corruption.
type CorruptionError struct {
	Op     string // "alloc" or "free"
	Cache  string // cache name
	Slab   uint32 // slab id
	Slot   int    // slot index within the slab
	Offset int    // byte offset into the guard region, -1 if not applicable
	Err    error  // ErrCorruptSlot, ErrDoubleFree or ErrGuardOverwrite
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s %s: slab %d slot %d guard byte %d: %v",
			e.Cache, e.Op, e.Slab, e.Slot, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s %s: slab %d slot %d: %v", e.Cache, e.Op, e.Slab, e.Slot, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *CorruptionError) Unwrap() error {
	return e.Err
}
