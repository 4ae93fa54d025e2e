// Package page supplies the fixed-size pages the slab layer is built on.
//
// A Supplier hands out whole pages of Size bytes, zeroed, and takes them back.
// Two implementations exist:
//
//   - Pool: a bounded set of heap-allocated pages, created lazily.
//   - MmapArena: one anonymous mapping carved into pages (unix), so every page
//     starts on a page boundary and released pages go back to the kernel.
//
// Both track page ownership in a bitmap, refuse pages they did not hand out,
// and report exhaustion with ErrExhausted rather than growing.
package page

import "errors"

// Size is the size of every page in bytes.
const Size = 4096

// DefaultPages is the page budget used when callers do not pick one
// (128 MiB worth of pages).
const DefaultPages = 32768

var (
	// ErrExhausted indicates that every page of the supplier is in use.
	ErrExhausted = errors.New("page: out of pages")

	// ErrForeignPage indicates a page that was not handed out by this supplier,
	// or one that was already returned.
	ErrForeignPage = errors.New("page: foreign or already released page")

	// ErrClosed indicates use of a supplier after Close.
	ErrClosed = errors.New("page: supplier closed")
)

// Supplier hands out and reclaims whole pages.
type Supplier interface {
	// AllocPage returns a zeroed page of exactly Size bytes.
	AllocPage() ([]byte, error)

	// FreePage returns a page obtained from AllocPage.
	FreePage(p []byte) error
}
