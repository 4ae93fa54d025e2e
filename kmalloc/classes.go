package kmalloc

import (
	"fmt"
	"sort"
)

// Class is one size class: a name and the payload size of its cache.
type Class struct {
	Name string
	Size int
}

// DefaultClasses is the standard table: powers of two from 8 to 2048 bytes.
var DefaultClasses = []Class{
	{"km-8", 8},
	{"km-16", 16},
	{"km-32", 32},
	{"km-64", 64},
	{"km-128", 128},
	{"km-256", 256},
	{"km-512", 512},
	{"km-1024", 1024},
	{"km-2048", 2048},
}

// classTable is a validated, strictly increasing class list.
type classTable struct {
	classes []Class
}

func newClassTable(classes []Class) (*classTable, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrBadClasses)
	}
	for i, c := range classes {
		if c.Size <= 0 {
			return nil, fmt.Errorf("%w: %s has size %d", ErrBadClasses, c.Name, c.Size)
		}
		if i > 0 && c.Size <= classes[i-1].Size {
			return nil, fmt.Errorf("%w: %s (%d) after %s (%d)",
				ErrBadClasses, c.Name, c.Size, classes[i-1].Name, classes[i-1].Size)
		}
	}
	return &classTable{classes: append([]Class(nil), classes...)}, nil
}

// lookup returns the index of the smallest class holding size bytes.
func (t *classTable) lookup(size int) (int, bool) {
	if size <= 0 {
		return 0, false
	}
	i := sort.Search(len(t.classes), func(i int) bool {
		return t.classes[i].Size >= size
	})
	return i, i < len(t.classes)
}

// largest returns the biggest supported request size.
func (t *classTable) largest() int {
	return t.classes[len(t.classes)-1].Size
}
