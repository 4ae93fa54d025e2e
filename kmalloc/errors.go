package kmalloc

import "errors"

var (
	// ErrZeroSize indicates a request for zero (or fewer) bytes.
	ErrZeroSize = errors.New("kmalloc: zero-size request")

	// ErrSizeTooLarge indicates a request larger than the largest class.
	ErrSizeTooLarge = errors.New("kmalloc: request exceeds largest size class")

	// ErrBadClasses indicates an invalid size class table.
	ErrBadClasses = errors.New("kmalloc: invalid size class table")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("kmalloc: allocator closed")
)
