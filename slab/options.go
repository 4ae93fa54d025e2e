package slab

import (
	"log/slog"

	"github.com/joshuapare/slabkit/internal/format"
)

// FailureHandler receives fatal corruption reports. If it returns, the
// operation that detected the corruption returns the same error and the
// affected slot is never handed out again.
type FailureHandler func(err error)

// Halt is the default FailureHandler. It panics with err.
func Halt(err error) {
	panic(err)
}

// Options configures a Cache.
//
// Use DefaultOptions() for the standard configuration.
type Options struct {
	// Align is the payload alignment in bytes, a power of two.
	// Default: 16
	Align int

	// Ctor runs on every object right before Alloc returns it.
	Ctor func(obj []byte)

	// Dtor runs on every object when it is released.
	Dtor func(obj []byte)

	// Debug enables header/lifecycle checks, poisoning and guard regions.
	// Default: true unless built with -tags slabnodebug
	Debug bool

	// EmptySlabLimit caps how many fully empty slabs are retained. When a free
	// pushes the empty list past the limit, that slab's page goes back to the
	// supplier. 0 retains every empty slab.
	// Default: 0
	EmptySlabLimit int

	// OnCorruption receives corruption reports.
	// Default: Halt
	OnCorruption FailureHandler

	// Logger receives lifecycle events. Default: the package logger.
	Logger *slog.Logger
}

// DefaultOptions returns the standard cache configuration.
func DefaultOptions() Options {
	return Options{
		Align:        format.DefaultAlign,
		Debug:        DebugDefault,
		OnCorruption: Halt,
	}
}

func (o Options) normalized() Options {
	if o.Align == 0 {
		o.Align = format.DefaultAlign
	}
	if o.OnCorruption == nil {
		o.OnCorruption = Halt
	}
	return o
}
