package slab

// listKind names the cache list a slab currently sits on.
type listKind uint8

const (
	onNone listKind = iota
	onFull
	onPartial
	onEmpty
)

func (k listKind) String() string {
	switch k {
	case onFull:
		return "full"
	case onPartial:
		return "partial"
	case onEmpty:
		return "empty"
	}
	return "none"
}

// slabList is an intrusive doubly-linked list of slabs. Insertion is at the
// head, so the most recently touched slab is tried first.
type slabList struct {
	kind listKind
	head *Slab
	n    int
}

func (l *slabList) push(s *Slab) {
	s.prev = nil
	s.next = l.head
	if l.head != nil {
		l.head.prev = s
	}
	l.head = s
	s.list = l.kind
	l.n++
}

func (l *slabList) remove(s *Slab) {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	}
	s.prev, s.next = nil, nil
	s.list = onNone
	l.n--
}

// move unlinks s from l and pushes it onto dst.
func (l *slabList) move(s *Slab, dst *slabList) {
	l.remove(s)
	dst.push(s)
}

// drain unlinks every slab and returns them.
func (l *slabList) drain() []*Slab {
	out := make([]*Slab, 0, l.n)
	for s := l.head; s != nil; {
		next := s.next
		s.prev, s.next = nil, nil
		s.list = onNone
		out = append(out, s)
		s = next
	}
	l.head = nil
	l.n = 0
	return out
}
