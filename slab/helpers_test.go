package slab

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/slab/page"
)

// ============================================================================
// Test Helpers
// ============================================================================

// failureRecorder is a FailureHandler that records instead of halting.
type failureRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *failureRecorder) handle(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *failureRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// newTestCache creates a debug cache over a fresh page pool with a recording
// failure handler.
func newTestCache(t testing.TB, objSize int) (*Cache, *page.Pool, *failureRecorder) {
	t.Helper()
	opts := DefaultOptions()
	opts.Debug = true
	return newTestCacheWith(t, objSize, opts)
}

// newTestCacheWith always routes corruption to the returned recorder. Tests
// that need Halt build their cache with NewCache directly.
func newTestCacheWith(t testing.TB, objSize int, opts Options) (*Cache, *page.Pool, *failureRecorder) {
	t.Helper()
	pool := page.NewPool(256)
	rec := &failureRecorder{}
	opts.OnCorruption = rec.handle
	c, err := NewCache(pool, "test", objSize, &opts)
	require.NoError(t, err)
	return c, pool, rec
}

// mustAlloc allocates n objects and fails the test on error.
func mustAlloc(t testing.TB, c *Cache, n int) []Object {
	t.Helper()
	objs := make([]Object, 0, n)
	for range n {
		obj, err := c.Alloc()
		require.NoError(t, err)
		objs = append(objs, obj)
	}
	return objs
}

// noPages is a supplier that is always exhausted.
type noPages struct{}

func (noPages) AllocPage() ([]byte, error) { return nil, page.ErrExhausted }
func (noPages) FreePage([]byte) error      { return page.ErrForeignPage }
