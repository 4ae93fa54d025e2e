package kmalloc

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/internal/format"
	"github.com/joshuapare/slabkit/internal/printer"
	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/page"
)

func TestNewCreatesEveryClass(t *testing.T) {
	a, pool, _ := newTestAllocator(t)

	stats := a.Stats()
	require.Len(t, stats, len(DefaultClasses))
	for i, st := range stats {
		assert.Equal(t, DefaultClasses[i].Name, st.Name)
		assert.Equal(t, DefaultClasses[i].Size, st.ObjSize)
		assert.Zero(t, st.Used, "smoke test must release everything")
	}
	assert.Greater(t, pool.InUse(), len(DefaultClasses), "control pages plus smoke slabs")
	require.NoError(t, a.Verify())
}

func TestNewFailsWithoutPages(t *testing.T) {
	opts := testOptions(nil)
	pool := page.NewPool(4)
	_, err := New(pool, &opts)
	require.ErrorIs(t, err, slab.ErrOutOfPages)
	assert.Zero(t, pool.InUse(), "a failed init releases what it took")
}

func TestNewRejectsBadClasses(t *testing.T) {
	opts := testOptions(nil)
	opts.Classes = []Class{{"x", 64}, {"y", 32}}
	_, err := New(page.NewPool(16), &opts)
	require.ErrorIs(t, err, ErrBadClasses)
}

func TestNewRunsSelfTest(t *testing.T) {
	if testing.Short() {
		t.Skip("full harness run")
	}
	opts := DefaultOptions()
	opts.Eval = true
	a, err := New(page.NewPool(0), &opts)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 24, a.Report.Deterministic)
	assert.Equal(t, opts.SelfTest.Ops, a.Report.Ops)
	assert.Equal(t, a.Report.Allocs, a.Report.Frees)
	for _, st := range a.Stats() {
		assert.Zero(t, st.Used, st.Name)
	}
}

func TestNewSelfTestFailureIsReturned(t *testing.T) {
	rec := &recorder{}
	opts := testOptions(rec)
	opts.Eval = true
	opts.SelfTest.Ops = 5000
	opts.SelfTest.DoubleFreeInjectRate = 1
	opts.SelfTest.OnFailure = rec.handle

	pool := page.NewPool(0)
	_, err := New(pool, &opts)
	require.ErrorIs(t, err, slab.ErrDoubleFree)
	assert.Equal(t, 2, rec.count(), "cache and harness both report")
	assert.Zero(t, pool.InUse())
}

func TestAllocRoutesToSmallestClass(t *testing.T) {
	a, _, _ := newTestAllocator(t)

	for _, tt := range []struct {
		size  int
		class int
	}{
		{1, 8}, {8, 8}, {9, 16}, {100, 128}, {1025, 2048}, {2048, 2048},
	} {
		obj, err := a.Alloc(tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.class, obj.Size(), "size %d", tt.size)
		assert.Equal(t, tt.class, obj.Cache().ObjectSize())
		require.NoError(t, a.Free(obj))
	}
}

func TestAllocRejectsUnsupportedSizes(t *testing.T) {
	a, _, _ := newTestAllocator(t)

	obj, err := a.Alloc(0)
	require.ErrorIs(t, err, ErrZeroSize)
	assert.True(t, obj.IsNil())

	_, err = a.Alloc(-1)
	require.ErrorIs(t, err, ErrZeroSize)

	obj, err = a.Alloc(2049)
	require.ErrorIs(t, err, ErrSizeTooLarge)
	assert.True(t, obj.IsNil())
}

func TestClassFor(t *testing.T) {
	a, _, _ := newTestAllocator(t)
	i, ok := a.ClassFor(33)
	require.True(t, ok)
	assert.Equal(t, "km-64", a.Classes()[i].Name)
	assert.Equal(t, "km-64", a.Cache(i).Name())

	_, ok = a.ClassFor(4096)
	assert.False(t, ok)
}

func TestFreeNilAndForeign(t *testing.T) {
	a, _, rec := newTestAllocator(t)
	b, _, _ := newTestAllocator(t)

	require.NoError(t, a.Free(slab.Object{}))

	obj, err := b.Alloc(32)
	require.NoError(t, err)
	require.ErrorIs(t, a.Free(obj), slab.ErrForeignObject)
	assert.Zero(t, rec.count())
	require.NoError(t, b.Free(obj))

	// A stand-alone cache sharing nothing with either allocator.
	c, err := slab.NewCache(page.NewPool(4), "loose", 32, nil)
	require.NoError(t, err)
	loose, err := c.Alloc()
	require.NoError(t, err)
	require.ErrorIs(t, a.Free(loose), slab.ErrForeignObject)
	require.NoError(t, c.Free(loose))
}

func TestDoubleFreeThroughFrontEnd(t *testing.T) {
	a, _, rec := newTestAllocator(t)

	obj, err := a.Alloc(48)
	require.NoError(t, err)
	require.NoError(t, a.Free(obj))
	require.ErrorIs(t, a.Free(obj), slab.ErrDoubleFree)
	assert.Equal(t, 1, rec.count())
}

func TestOutOfBoundsWriteThroughFrontEnd(t *testing.T) {
	a, _, rec := newTestAllocator(t)

	obj, err := a.Alloc(30) // km-32
	require.NoError(t, err)
	b := obj.Bytes()
	b[:cap(b)][32] = 0xFF
	require.ErrorIs(t, a.Free(obj), slab.ErrGuardOverwrite)
	assert.Equal(t, 1, rec.count())
}

func TestDebugHaltsByDefault(t *testing.T) {
	opts := DefaultOptions()
	opts.Eval = false
	opts.Cache.Debug = true
	a, err := New(page.NewPool(64), &opts)
	require.NoError(t, err)
	defer a.Close()

	obj, err := a.Alloc(16)
	require.NoError(t, err)
	require.NoError(t, a.Free(obj))
	require.Panics(t, func() { _ = a.Free(obj) })
}

func TestAlignment(t *testing.T) {
	a, _, _ := newTestAllocator(t)
	for size := 1; size <= 2048; size += 13 {
		obj, err := a.Alloc(size)
		require.NoError(t, err)
		assert.Zero(t, obj.Addr()%16, "size %d at %#x", size, obj.Addr())
		require.NoError(t, a.Free(obj))
	}
}

func TestContentDoesNotLeakAcrossAllocations(t *testing.T) {
	a, _, _ := newTestAllocator(t)

	obj, err := a.Alloc(200)
	require.NoError(t, err)
	format.Fill(obj.Bytes(), 0x42)
	require.NoError(t, a.Free(obj))

	again, err := a.Alloc(150)
	require.NoError(t, err)
	assert.Equal(t, -1, format.FirstMismatch(again.Bytes(), format.AllocPattern))
}

func TestStatsIdempotent(t *testing.T) {
	a, _, _ := newTestAllocator(t)
	for size := 5; size < 2000; size += 97 {
		_, err := a.Alloc(size)
		require.NoError(t, err)
	}
	assert.Equal(t, a.Stats(), a.Stats())
}

func TestWriteStats(t *testing.T) {
	a, _, _ := newTestAllocator(t)
	_, err := a.Alloc(8)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.WriteStats(&buf, printer.FormatText))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(DefaultClasses)+2)
	assert.Equal(t, "[slab] stats:", lines[0])
	assert.Contains(t, lines[1], "km-8")
	assert.Contains(t, lines[1], "used=   1")

	buf.Reset()
	require.NoError(t, a.WriteStats(&buf, printer.FormatJSON))
	assert.Contains(t, buf.String(), `"name": "km-2048"`)
}

func TestShrinkAndClose(t *testing.T) {
	rec := &recorder{}
	opts := testOptions(rec)
	pool := page.NewPool(256)
	a, err := New(pool, &opts)
	require.NoError(t, err)

	before := pool.InUse()
	n, err := a.Shrink()
	require.NoError(t, err)
	assert.Positive(t, n, "smoke test leaves empty slabs behind")
	assert.Equal(t, before-n, pool.InUse())
	assert.Equal(t, len(DefaultClasses), pool.InUse(), "only control pages remain")

	require.NoError(t, a.Close())
	assert.Zero(t, pool.InUse())
	require.ErrorIs(t, a.Close(), ErrClosed)
}

func TestUseAfterClose(t *testing.T) {
	rec := &recorder{}
	opts := testOptions(rec)
	a, err := New(page.NewPool(256), &opts)
	require.NoError(t, err)

	obj, err := a.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = a.Alloc(8)
	require.ErrorIs(t, err, ErrClosed)
	_, err = a.Alloc(0)
	require.ErrorIs(t, err, ErrClosed, "closed takes precedence over size checks")

	require.ErrorIs(t, a.Free(obj), ErrClosed)
	require.NoError(t, a.Free(slab.Object{}), "the nil object is still ignored")
	assert.Zero(t, rec.count())
}

func TestCacheIndexRange(t *testing.T) {
	a, _, _ := newTestAllocator(t)

	for i, c := range a.Classes() {
		require.NotNil(t, a.Cache(i))
		assert.Equal(t, c.Name, a.Cache(i).Name())
	}
	assert.Nil(t, a.Cache(-1))
	assert.Nil(t, a.Cache(len(a.Classes())))
}

func TestConcurrentClasses(t *testing.T) {
	a, _, rec := newTestAllocator(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for w := range 16 {
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			fill := byte(size)
			var live []slab.Object
			for i := range 500 {
				obj, err := a.Alloc(size)
				if err != nil {
					errs <- err
					return
				}
				format.Fill(obj.Bytes()[:size], fill)
				live = append(live, obj)
				if i%4 == 3 {
					for _, o := range live {
						if format.FirstMismatch(o.Bytes()[:size], fill) >= 0 {
							errs <- errors.New("payload clobbered")
							return
						}
						if err := a.Free(o); err != nil {
							errs <- err
							return
						}
					}
					live = live[:0]
				}
			}
		}(8 + w*120)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Zero(t, rec.count())
	require.NoError(t, a.Verify())
}
