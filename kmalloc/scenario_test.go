package kmalloc

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/joshuapare/slabkit/internal/format"
	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/page"
)

func newScenarioAllocator() *Allocator {
	opts := testOptions(nil)
	a, err := New(page.NewPool(512), &opts)
	So(err, ShouldBeNil)
	Reset(func() { _ = a.Close() })
	return a
}

func TestScenarioSmallRequest(t *testing.T) {
	Convey("Given an allocator", t, func() {
		a := newScenarioAllocator()

		Convey("When 7 bytes are requested", func() {
			obj, err := a.Alloc(7)
			So(err, ShouldBeNil)

			Convey("The 8-byte class serves it", func() {
				So(obj.Cache().Name(), ShouldEqual, "km-8")
				So(obj.Size(), ShouldEqual, 8)
			})

			Convey("A 7-byte pattern reads back intact and the object frees cleanly", func() {
				format.Fill(obj.Bytes()[:7], 0xA5)
				So(format.FirstMismatch(obj.Bytes()[:7], 0xA5), ShouldEqual, -1)
				So(a.Free(obj), ShouldBeNil)
			})
		})
	})
}

func TestScenarioFullSlabGrows(t *testing.T) {
	Convey("Given the km-64 class", t, func() {
		a := newScenarioAllocator()
		before := classStats(a, "km-64")
		capacity := before.Capacity

		Convey("When its current slab is filled exactly", func() {
			// The smoke test leaves km-64 with one empty slab.
			So(before.Slabs, ShouldEqual, 1)
			So(before.Empty, ShouldEqual, 1)

			for range capacity {
				_, err := a.Alloc(64)
				So(err, ShouldBeNil)
			}
			full := classStats(a, "km-64")
			So(full.Slabs, ShouldEqual, 1)
			So(full.Full, ShouldEqual, 1)
			So(full.Partial, ShouldEqual, 0)
			So(full.Free, ShouldEqual, 0)

			Convey("One more request adds exactly one slab", func() {
				_, err := a.Alloc(60)
				So(err, ShouldBeNil)
				after := classStats(a, "km-64")
				So(after.Slabs, ShouldEqual, full.Slabs+1)
				So(after.Partial, ShouldEqual, 1)
			})
		})
	})
}

func TestScenarioFreeToEmpty(t *testing.T) {
	Convey("Given N objects of the km-128 class", t, func() {
		a := newScenarioAllocator()
		const n = 10
		objs := make([]slab.Object, 0, n)
		for range n {
			obj, err := a.Alloc(128)
			So(err, ShouldBeNil)
			objs = append(objs, obj)
		}

		Convey("When all but one are freed", func() {
			for _, obj := range objs[1:] {
				So(a.Free(obj), ShouldBeNil)
			}

			Convey("Stats report one object in use", func() {
				So(classStats(a, "km-128").Used, ShouldEqual, 1)
			})

			Convey("Freeing the last one leaves the slab on the empty list", func() {
				So(a.Free(objs[0]), ShouldBeNil)
				st := classStats(a, "km-128")
				So(st.Used, ShouldEqual, 0)
				So(st.Empty, ShouldEqual, st.Slabs)
				So(st.Free, ShouldEqual, st.Capacity*st.Slabs)
			})
		})
	})
}

func TestScenarioUnsupportedSizes(t *testing.T) {
	Convey("Given an allocator", t, func() {
		a := newScenarioAllocator()

		Convey("A zero-byte request yields the nil object", func() {
			obj, err := a.Alloc(0)
			So(err, ShouldEqual, ErrZeroSize)
			So(obj.IsNil(), ShouldBeTrue)
		})

		Convey("A request one byte over the largest class yields the nil object", func() {
			obj, err := a.Alloc(2049)
			So(errors.Is(err, ErrSizeTooLarge), ShouldBeTrue)
			So(obj.IsNil(), ShouldBeTrue)
		})
	})
}
