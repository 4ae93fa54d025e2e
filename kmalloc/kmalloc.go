package kmalloc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/internal/printer"
	"github.com/joshuapare/slabkit/selftest"
	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/page"
)

const (
	// smoke test: sizes 1, 32, 63, ... up to smokeMax, keeping at most
	// smokeKeep objects live.
	smokeMax  = 2000
	smokeStep = 31
	smokeKeep = 64
)

// Options configures an Allocator.
//
// Use DefaultOptions() for the standard configuration.
type Options struct {
	// Classes is the size class table, strictly increasing.
	// Default: DefaultClasses
	Classes []Class

	// Cache configures every class cache.
	// Default: slab.DefaultOptions()
	Cache slab.Options

	// Eval runs the selftest harness at the end of New.
	// Default: true unless built with -tags slabnoeval
	Eval bool

	// SelfTest configures the startup harness.
	// Default: selftest.DefaultOptions()
	SelfTest selftest.Options

	// Logger receives init and harness events. It is also the default
	// logger of the caches and the harness. Default: the package logger.
	Logger *slog.Logger
}

// DefaultOptions returns the standard allocator configuration.
func DefaultOptions() Options {
	return Options{
		Classes:  DefaultClasses,
		Cache:    slab.DefaultOptions(),
		Eval:     EvalDefault,
		SelfTest: selftest.DefaultOptions(),
	}
}

// Allocator dispatches requests to per-class slab caches.
type Allocator struct {
	table   *classTable
	caches  []*slab.Cache
	byCache map[*slab.Cache]int // read-only after New
	log     *slog.Logger
	closed  atomic.Bool

	// Report is the startup self-test summary, zero when Eval is off.
	Report selftest.Report
}

// New creates one cache per size class over pages. A nil opts selects
// DefaultOptions().
func New(pages page.Supplier, opts *Options) (*Allocator, error) {
	if opts == nil {
		def := DefaultOptions()
		opts = &def
	}
	o := *opts
	if o.Classes == nil {
		o.Classes = DefaultClasses
	}
	log := logger.Or(o.Logger)
	if o.Cache.Logger == nil {
		o.Cache.Logger = o.Logger
	}
	if o.SelfTest.Logger == nil {
		o.SelfTest.Logger = o.Logger
	}

	table, err := newClassTable(o.Classes)
	if err != nil {
		return nil, err
	}

	a := &Allocator{
		table:   table,
		caches:  make([]*slab.Cache, 0, len(table.classes)),
		byCache: make(map[*slab.Cache]int, len(table.classes)),
		log:     log,
	}
	for i, cl := range table.classes {
		c, err := slab.NewCache(pages, cl.Name, cl.Size, &o.Cache)
		if err != nil {
			log.Error("kmalloc init failed", "class", cl.Name, "error", err)
			return nil, errors.Join(fmt.Errorf("kmalloc: create %s: %w", cl.Name, err), a.Close())
		}
		a.caches = append(a.caches, c)
		a.byCache[c] = i
	}

	if err := a.smoke(); err != nil {
		log.Error("kmalloc init failed", "error", err)
		return nil, errors.Join(err, a.Close())
	}
	log.Info("kmalloc init ok", "classes", len(a.caches), "debug", o.Cache.Debug)

	if o.Eval {
		rep, err := selftest.Run(a, &o.SelfTest)
		a.Report = rep
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
	}
	return a, nil
}

// smoke allocates one object for each of a spread of sizes across every
// class, then frees them all.
func (a *Allocator) smoke() error {
	live := make([]slab.Object, 0, smokeKeep)
	var err error
	for size := 1; size <= smokeMax && len(live) < smokeKeep; size += smokeStep {
		if size > a.table.largest() {
			break
		}
		var obj slab.Object
		if obj, err = a.Alloc(size); err != nil {
			err = fmt.Errorf("kmalloc: smoke alloc %d: %w", size, err)
			break
		}
		live = append(live, obj)
	}
	for _, obj := range live {
		if ferr := a.Free(obj); ferr != nil && err == nil {
			err = fmt.Errorf("kmalloc: smoke free %v: %w", obj, ferr)
		}
	}
	return err
}

// ClassFor returns the index of the class that serves size-byte requests.
func (a *Allocator) ClassFor(size int) (int, bool) {
	return a.table.lookup(size)
}

// Classes returns the size class table.
func (a *Allocator) Classes() []Class {
	return append([]Class(nil), a.table.classes...)
}

// Cache returns the cache behind class i, or nil if i is out of range.
func (a *Allocator) Cache(i int) *slab.Cache {
	if i < 0 || i >= len(a.caches) {
		return nil
	}
	return a.caches[i]
}

// Alloc returns an object of at least size bytes from the smallest class
// that fits. The object's Bytes() spans the whole class size.
func (a *Allocator) Alloc(size int) (slab.Object, error) {
	if a.closed.Load() {
		return slab.Object{}, ErrClosed
	}
	if size <= 0 {
		return slab.Object{}, ErrZeroSize
	}
	i, ok := a.table.lookup(size)
	if !ok {
		return slab.Object{}, fmt.Errorf("%w: %d > %d", ErrSizeTooLarge, size, a.table.largest())
	}
	return a.caches[i].Alloc()
}

// Free releases obj to the cache it came from. The nil object is ignored;
// an object from any other allocator reports slab.ErrForeignObject. After
// Close every other object reports ErrClosed.
func (a *Allocator) Free(obj slab.Object) error {
	if obj.IsNil() {
		return nil
	}
	if a.closed.Load() {
		return ErrClosed
	}
	c := obj.Cache()
	if _, ok := a.byCache[c]; !ok {
		return slab.ErrForeignObject
	}
	return c.Free(obj)
}

// Stats returns one snapshot per class, in class order.
func (a *Allocator) Stats() []slab.Stats {
	out := make([]slab.Stats, len(a.caches))
	for i, c := range a.caches {
		out[i] = c.Stats()
	}
	return out
}

// WriteStats renders Stats to w.
func (a *Allocator) WriteStats(w io.Writer, format printer.Format) error {
	opts := printer.DefaultOptions()
	opts.Format = format
	return printer.New(w, opts).PrintStats(a.Stats())
}

// Verify checks every class cache.
func (a *Allocator) Verify() error {
	var errs []error
	for _, c := range a.caches {
		errs = append(errs, c.Verify())
	}
	return errors.Join(errs...)
}

// Shrink releases every empty slab of every class and reports the number of
// pages returned.
func (a *Allocator) Shrink() (int, error) {
	var (
		total int
		errs  []error
	)
	for _, c := range a.caches {
		n, err := c.Shrink()
		total += n
		errs = append(errs, err)
	}
	return total, errors.Join(errs...)
}

// Close destroys every class cache. Objects still allocated become invalid.
func (a *Allocator) Close() error {
	if a.closed.Swap(true) {
		return ErrClosed
	}
	var errs []error
	for _, c := range a.caches {
		errs = append(errs, c.Destroy())
	}
	a.log.Debug("kmalloc closed", "classes", len(a.caches))
	return errors.Join(errs...)
}
