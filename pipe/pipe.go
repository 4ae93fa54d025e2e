// Package pipe keeps fixed-size pipe buffers in a dedicated slab cache.
//
// Each pipe is one slab object: a 512-byte ring followed by its read and
// write counters and the open flags of both ends. The cache constructor
// resets the counters and opens both ends; the destructor marks both ends
// closed before the object goes back to the cache.
package pipe

import (
	"errors"
	"io"
	"sync"

	"github.com/joshuapare/slabkit/internal/format"
	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/page"
)

// BufSize is the ring capacity of one pipe.
const BufSize = 512

// Object layout.
const (
	nreadOffset     = BufSize
	nwriteOffset    = BufSize + 4
	readOpenOffset  = BufSize + 8
	writeOpenOffset = BufSize + 9

	objSize = BufSize + 10
)

// CacheName is the name of the pipe cache.
const CacheName = "pipe"

// ErrClosed indicates use of a pipe end that has been closed.
var ErrClosed = errors.New("pipe: closed")

// Cache hands out pipes.
type Cache struct {
	c *slab.Cache
}

// NewCache creates the pipe cache over pages. opts configures the underlying
// slab cache; its Ctor and Dtor are replaced.
func NewCache(pages page.Supplier, opts *slab.Options) (*Cache, error) {
	o := slab.DefaultOptions()
	if opts != nil {
		o = *opts
	}
	o.Ctor = construct
	o.Dtor = destruct

	c, err := slab.NewCache(pages, CacheName, objSize, &o)
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func construct(b []byte) {
	format.PutU32(b, nreadOffset, 0)
	format.PutU32(b, nwriteOffset, 0)
	b[readOpenOffset] = 1
	b[writeOpenOffset] = 1
}

func destruct(b []byte) {
	b[readOpenOffset] = 0
	b[writeOpenOffset] = 0
}

// Slab returns the underlying cache, for stats and verification.
func (pc *Cache) Slab() *slab.Cache {
	return pc.c
}

// Destroy releases the cache. Open pipes become invalid.
func (pc *Cache) Destroy() error {
	return pc.c.Destroy()
}

// Open allocates a pipe with both ends open.
func (pc *Cache) Open() (*Pipe, error) {
	obj, err := pc.c.Alloc()
	if err != nil {
		return nil, err
	}
	return &Pipe{cache: pc.c, obj: obj}, nil
}

// Pipe is a bounded byte channel with a read end and a write end. Reads and
// writes never block: they move as many bytes as the ring allows.
type Pipe struct {
	mu    sync.Mutex
	cache *slab.Cache
	obj   slab.Object
	freed bool
}

func (p *Pipe) counters() (nread, nwrite uint32) {
	b := p.obj.Bytes()
	return format.ReadU32(b, nreadOffset), format.ReadU32(b, nwriteOffset)
}

// Len returns the number of unread bytes.
func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.freed {
		return 0
	}
	nread, nwrite := p.counters()
	return int(nwrite - nread)
}

// Write copies as much of b as fits into the ring.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freed {
		return 0, ErrClosed
	}
	buf := p.obj.Bytes()
	if buf[writeOpenOffset] == 0 {
		return 0, ErrClosed
	}
	if buf[readOpenOffset] == 0 {
		return 0, io.ErrClosedPipe
	}

	nread, nwrite := p.counters()
	n := 0
	for n < len(b) && nwrite-nread < BufSize {
		buf[nwrite%BufSize] = b[n]
		nwrite++
		n++
	}
	format.PutU32(buf, nwriteOffset, nwrite)
	return n, nil
}

// Read copies up to len(b) unread bytes. It returns io.EOF once the ring is
// empty and the write end is closed.
func (p *Pipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freed {
		return 0, ErrClosed
	}
	buf := p.obj.Bytes()
	if buf[readOpenOffset] == 0 {
		return 0, ErrClosed
	}

	nread, nwrite := p.counters()
	if nread == nwrite && buf[writeOpenOffset] == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(b) && nread != nwrite {
		b[n] = buf[nread%BufSize]
		nread++
		n++
	}
	format.PutU32(buf, nreadOffset, nread)
	return n, nil
}

// CloseWrite closes the write end. The pipe is released once both ends are
// closed.
func (p *Pipe) CloseWrite() error {
	return p.closeEnd(writeOpenOffset)
}

// CloseRead closes the read end. The pipe is released once both ends are
// closed.
func (p *Pipe) CloseRead() error {
	return p.closeEnd(readOpenOffset)
}

// Close closes both ends and releases the pipe.
func (p *Pipe) Close() error {
	if err := p.closeEnd(writeOpenOffset); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	return p.closeEnd(readOpenOffset)
}

func (p *Pipe) closeEnd(off int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freed {
		return ErrClosed
	}
	buf := p.obj.Bytes()
	if buf[off] == 0 {
		return ErrClosed
	}
	buf[off] = 0
	if buf[readOpenOffset] != 0 || buf[writeOpenOffset] != 0 {
		return nil
	}
	p.freed = true
	return p.cache.Free(p.obj)
}
