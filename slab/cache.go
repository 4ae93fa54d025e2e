package slab

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/slabkit/internal/format"
	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/slab/page"
)

// Cache is a pool of same-size objects backed by slabs.
type Cache struct {
	name   string
	layout Layout
	opts   Options
	pages  page.Supplier
	log    *slog.Logger

	// control is the cache's own control page, held for the cache lifetime.
	control []byte

	mu        sync.Mutex
	full      slabList
	partial   slabList
	empty     slabList
	destroyed bool
}

// NewCache creates a cache of objSize-byte objects. A nil opts selects
// DefaultOptions(). The cache takes one page from pages for its control
// block; if that fails NewCache returns ErrOutOfPages.
func NewCache(pages page.Supplier, name string, objSize int, opts *Options) (*Cache, error) {
	if opts == nil {
		def := DefaultOptions()
		opts = &def
	}
	o := opts.normalized()

	layout, err := ComputeLayout(objSize, o.Align, o.Debug)
	if err != nil {
		return nil, fmt.Errorf("cache %q: %w", name, err)
	}

	control, err := pages.AllocPage()
	if err != nil {
		return nil, fmt.Errorf("cache %q: %w: %w", name, ErrOutOfPages, err)
	}
	format.PutCacheControl(control, name, objSize, layout.Align)

	c := &Cache{
		name:    name,
		layout:  layout,
		opts:    o,
		pages:   pages,
		log:     logger.Or(o.Logger),
		control: control,
		full:    slabList{kind: onFull},
		partial: slabList{kind: onPartial},
		empty:   slabList{kind: onEmpty},
	}
	c.log.Debug("slab cache created",
		"cache", name,
		"obj_size", objSize,
		"stride", layout.Stride,
		"capacity", layout.Capacity,
		"debug", o.Debug)
	return c, nil
}

// Name returns the cache name.
func (c *Cache) Name() string { return c.name }

// ObjectSize returns the payload size of every object.
func (c *Cache) ObjectSize() int { return c.layout.ObjSize }

// Layout returns the slot geometry.
func (c *Cache) Layout() Layout { return c.layout }

// Debug reports whether debug instrumentation is on.
func (c *Cache) Debug() bool { return c.opts.Debug }

// Destroy returns every slab and the control page to the page supplier.
// Objects still allocated become invalid; releasing them afterwards reports
// ErrForeignObject.
func (c *Cache) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return ErrCacheDestroyed
	}
	c.destroyed = true

	var errs []error
	for _, l := range []*slabList{&c.full, &c.partial, &c.empty} {
		for _, s := range l.drain() {
			errs = append(errs, c.releaseSlab(s))
		}
	}
	errs = append(errs, c.pages.FreePage(c.control))
	c.control = nil

	c.log.Debug("slab cache destroyed", "cache", c.name)
	return errors.Join(errs...)
}

// Alloc returns a free object. It fails only with ErrOutOfPages (the page
// supplier is exhausted), ErrCacheDestroyed, or, when a FailureHandler
// returns, a *CorruptionError.
func (c *Cache) Alloc() (Object, error) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return Object{}, ErrCacheDestroyed
	}

	s := c.partial.head
	if s == nil {
		if s = c.empty.head; s != nil {
			c.empty.move(s, &c.partial)
		}
	}
	if s == nil {
		var err error
		if s, err = newSlab(c); err != nil {
			c.mu.Unlock()
			return Object{}, fmt.Errorf("cache %q: %w", c.name, err)
		}
		c.partial.push(s)
		c.log.Debug("slab added", "cache", c.name, "slab", s.id)
	}

	idx := s.pop()
	if s.free == 0 {
		c.partial.move(s, &c.full)
	}
	c.mu.Unlock()

	// The slot is off the freelist; nobody else can reach it.
	if c.opts.Debug {
		if err := c.claimSlot(s, idx); err != nil {
			return Object{}, err
		}
	} else {
		clear(s.payload(idx))
	}

	obj := Object{s: s, idx: idx}
	if c.opts.Ctor != nil {
		c.opts.Ctor(obj.Bytes())
	}
	return obj, nil
}

// Free releases obj back to the cache. The nil object is ignored. An object
// that does not belong to this cache is left untouched and reported as
// ErrForeignObject. Double frees and guard overwrites are corruption and go
// to the FailureHandler.
func (c *Cache) Free(obj Object) error {
	if obj.IsNil() {
		return nil
	}
	s, idx := obj.s, obj.idx
	if !c.owns(s, idx) {
		return ErrForeignObject
	}

	if c.opts.Debug {
		if s.state(idx) != format.SlotAllocated {
			return c.corrupt("free", s, idx, -1, ErrDoubleFree)
		}
	}

	if c.opts.Dtor != nil {
		c.opts.Dtor(obj.Bytes())
	}

	if c.opts.Debug {
		if err := c.releaseSlot(s, idx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return ErrCacheDestroyed
	}
	if s.free == 0 {
		c.full.move(s, &c.partial)
	}
	s.push(idx)
	if s.free == c.layout.Capacity {
		c.partial.move(s, &c.empty)
		if limit := c.opts.EmptySlabLimit; limit > 0 && c.empty.n > limit {
			c.empty.remove(s)
			return c.releaseSlab(s)
		}
	}
	return nil
}

// Shrink returns every empty slab to the page supplier and reports how many
// pages were released.
func (c *Cache) Shrink() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return 0, ErrCacheDestroyed
	}
	slabs := c.empty.drain()
	var errs []error
	for _, s := range slabs {
		errs = append(errs, c.releaseSlab(s))
	}
	if len(slabs) > 0 {
		c.log.Debug("slab cache shrunk", "cache", c.name, "released", len(slabs))
	}
	return len(slabs), errors.Join(errs...)
}

// owns reports whether slot idx of s is a live slot of this cache.
func (c *Cache) owns(s *Slab, idx int) bool {
	if s.cache != c || s.page == nil || idx < 0 || idx >= c.layout.Capacity {
		return false
	}
	return s.ownsSlot(idx)
}

// releaseSlab hands a slab's page back. Caller holds the lock and has
// unlinked s.
func (c *Cache) releaseSlab(s *Slab) error {
	pg := s.page
	s.page = nil
	if pg == nil {
		return nil
	}
	return c.pages.FreePage(pg)
}
