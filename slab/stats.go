package slab

import "github.com/joshuapare/slabkit/slab/page"

// Stats is a point-in-time snapshot of a cache.
type Stats struct {
	Name     string `json:"name"`
	ObjSize  int    `json:"obj_size"`
	Stride   int    `json:"stride"`
	Capacity int    `json:"capacity"` // slots per slab

	Slabs   int `json:"slabs"`
	Full    int `json:"full"`
	Partial int `json:"partial"`
	Empty   int `json:"empty"`

	Objects int `json:"objects"` // slots across all slabs
	Used    int `json:"used"`
	Free    int `json:"free"`

	Pages       int `json:"pages"`
	Bytes       int `json:"bytes"`
	Utilization int `json:"utilization"` // payload bytes / page bytes, percent
}

// Stats walks all three lists under the cache lock.
func (c *Cache) Stats() Stats {
	st := Stats{
		Name:     c.name,
		ObjSize:  c.layout.ObjSize,
		Stride:   c.layout.Stride,
		Capacity: c.layout.Capacity,
	}

	c.mu.Lock()
	for _, l := range []*slabList{&c.full, &c.partial, &c.empty} {
		for s := l.head; s != nil; s = s.next {
			st.Slabs++
			st.Objects += c.layout.Capacity
			st.Free += s.free
		}
	}
	st.Full, st.Partial, st.Empty = c.full.n, c.partial.n, c.empty.n
	c.mu.Unlock()

	st.Used = st.Objects - st.Free
	st.Pages = st.Slabs
	st.Bytes = st.Pages * page.Size
	if st.Bytes > 0 {
		st.Utilization = st.Objects * st.ObjSize * 100 / st.Bytes
	}
	return st
}
