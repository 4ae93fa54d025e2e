// Package kmalloc is the size-class front end of the slab allocator.
//
// An Allocator owns one slab.Cache per size class and routes each request
// to the smallest class that fits:
//
//	a, err := kmalloc.New(page.NewPool(0), nil)
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//
//	obj, err := a.Alloc(100) // served by km-128
//	if err != nil {
//		return err
//	}
//	copy(obj.Bytes(), payload)
//	return a.Free(obj)
//
// Zero-size requests and requests larger than the largest class are rejected
// with ErrZeroSize and ErrSizeTooLarge; there is no large-object path.
//
// New validates the wiring with a short allocation/free cycle over every
// class, then runs the selftest harness when Options.Eval is set (the default
// unless built with -tags slabnoeval).
//
// An Allocator is safe for concurrent use. Requests for different classes
// never contend.
package kmalloc
