package selftest

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadMismatch indicates an object whose contents changed while it
	// was live.
	ErrPayloadMismatch = errors.New("selftest: payload mismatch")

	// ErrMisaligned indicates an object address not aligned to the largest
	// power of two (up to 8) dividing the requested size.
	ErrMisaligned = errors.New("selftest: misaligned object")

	// ErrNilObject indicates an allocation that returned the nil object
	// without an error.
	ErrNilObject = errors.New("selftest: nil object")
)

// Failure describes the harness step that failed.
type Failure struct {
	Phase string // "deterministic", "fuzz" or "drain"
	Op    int    // operation number within the phase
	Size  int    // requested size
	Err   error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("selftest %s op %d size %d: %v", f.Phase, f.Op, f.Size, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}
