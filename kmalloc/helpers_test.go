package kmalloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/page"
)

// recorder is a FailureHandler that records instead of halting.
type recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *recorder) handle(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// testOptions returns debug options without the startup harness.
func testOptions(rec *recorder) Options {
	opts := DefaultOptions()
	opts.Eval = false
	opts.Cache.Debug = true
	if rec != nil {
		opts.Cache.OnCorruption = rec.handle
	}
	return opts
}

func newTestAllocator(t testing.TB) (*Allocator, *page.Pool, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts := testOptions(rec)
	pool := page.NewPool(1024)
	a, err := New(pool, &opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, pool, rec
}

// classStats returns the stats of the class named name.
func classStats(a *Allocator, name string) slab.Stats {
	for _, st := range a.Stats() {
		if st.Name == name {
			return st
		}
	}
	return slab.Stats{}
}
