// Package selftest is the allocator's correctness harness.
//
// Run executes two phases against any Allocator:
//
//   - deterministic: one alloc/fill/verify/free cycle per BoundarySizes entry,
//     with an alignment check on every object
//   - fuzz: a long seeded workload of mixed allocations and releases that
//     keeps up to Options.Slots objects live, verifies every object's
//     contents before releasing it, and can inject out-of-bounds writes and
//     double frees
//
// Every failure is reported to Options.OnFailure before Run returns it. The
// default handler halts, matching the allocator's own corruption policy.
package selftest

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/slabkit/internal/format"
	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/slab"
)

// Allocator is the surface the harness drives.
type Allocator interface {
	Alloc(size int) (slab.Object, error)
	Free(obj slab.Object) error
}

const (
	// DefaultSlots is the live-object capacity of the fuzz phase.
	DefaultSlots = 10000

	// DefaultOps is the number of fuzz operations.
	DefaultOps = 60000

	// DefaultSeed seeds the xorshift generator.
	DefaultSeed uint64 = 88172645463325252

	// fill salts for the two phases.
	deterministicSalt byte = 0x5A
	fuzzSalt          byte = 0xA5

	// warmup is the number of live objects below which the fuzz phase
	// always allocates.
	warmup = 1000
)

// Options configures a harness run.
type Options struct {
	// Slots caps the number of live fuzz objects.
	// Default: 10000
	Slots int

	// Ops is the number of fuzz operations.
	// Default: 60000
	Ops int

	// Seed seeds the pseudo-random generator. 0 selects DefaultSeed.
	Seed uint64

	// OOBInjectRate makes roughly one in OOBInjectRate releases write one
	// byte past the object before freeing it. Only objects with a guard
	// region are targeted. 0 disables.
	OOBInjectRate int

	// DoubleFreeInjectRate makes roughly one in DoubleFreeInjectRate releases
	// free the object twice. 0 disables.
	DoubleFreeInjectRate int

	// OnFailure receives every failure before Run returns it.
	// Default: slab.Halt
	OnFailure slab.FailureHandler

	// Logger receives phase completion events. Default: the package logger.
	Logger *slog.Logger
}

// DefaultOptions returns the standard harness configuration: no fault
// injection, halting on failure.
func DefaultOptions() Options {
	return Options{
		Slots:     DefaultSlots,
		Ops:       DefaultOps,
		Seed:      DefaultSeed,
		OnFailure: slab.Halt,
	}
}

func (o *Options) normalized() Options {
	if o == nil {
		return DefaultOptions()
	}
	n := *o
	if n.Slots <= 0 {
		n.Slots = DefaultSlots
	}
	if n.Ops <= 0 {
		n.Ops = DefaultOps
	}
	if n.Seed == 0 {
		n.Seed = DefaultSeed
	}
	if n.OnFailure == nil {
		n.OnFailure = slab.Halt
	}
	return n
}

// Report summarizes a harness run.
type Report struct {
	Deterministic int `json:"deterministic"` // boundary sizes checked
	Ops           int `json:"ops"`           // fuzz operations executed
	Allocs        int `json:"allocs"`
	Frees         int `json:"frees"`
	Peak          int `json:"peak"` // most objects live at once
	InjectedOOB   int `json:"injected_oob"`
	InjectedDFree int `json:"injected_double_free"`
}

// Run executes the deterministic phase followed by the fuzz phase.
func Run(a Allocator, opts *Options) (Report, error) {
	o := opts.normalized()
	log := logger.Or(o.Logger)

	log.Info("selftest start", "slots", o.Slots, "ops", o.Ops,
		"oob_rate", o.OOBInjectRate, "dfree_rate", o.DoubleFreeInjectRate)

	var rep Report
	n, err := RunDeterministic(a, &o)
	rep.Deterministic = n
	if err != nil {
		return rep, err
	}

	fz, err := RunFuzz(a, &o)
	fz.Deterministic = rep.Deterministic
	return fz, err
}

// RunDeterministic allocates, fills, verifies and frees one object per
// BoundarySizes entry. It returns the number of sizes checked.
func RunDeterministic(a Allocator, opts *Options) (int, error) {
	o := opts.normalized()
	h := harness{a: a, opts: o, phase: "deterministic"}

	for i, size := range BoundarySizes {
		obj, err := h.alloc(i, size)
		if err != nil {
			return i, err
		}
		fill := pattern(size, deterministicSalt)
		format.Fill(obj.Bytes()[:size], fill)
		if err := h.check(i, obj, size, fill); err != nil {
			return i, err
		}
		if err := a.Free(obj); err != nil {
			return i, h.fail(i, size, err)
		}
	}

	logger.Or(o.Logger).Info("selftest phase ok", "phase", h.phase, "sizes", len(BoundarySizes))
	return len(BoundarySizes), nil
}

// RunFuzz runs the randomized workload. Objects still live at the end are
// verified and released. On failure the remaining objects are left
// allocated.
func RunFuzz(a Allocator, opts *Options) (Report, error) {
	o := opts.normalized()
	h := harness{a: a, opts: o, phase: "fuzz"}
	rng := &xorshift{s: o.Seed}

	var rep Report
	live := make([]slab.Object, 0, o.Slots)
	sizes := make([]int, 0, o.Slots)

	for op := range o.Ops {
		rep.Ops++
		n := len(live)
		if n < warmup || rng.next()&15 > 6 {
			size := pickSize(rng)
			obj, err := h.alloc(op, size)
			if err != nil {
				return rep, err
			}
			format.Fill(obj.Bytes()[:size], pattern(size, fuzzSalt))
			live = append(live, obj)
			sizes = append(sizes, size)
			rep.Allocs++
			rep.Peak = max(rep.Peak, len(live))

			if len(live) >= o.Slots {
				last := len(live) - 1
				if err := a.Free(live[last]); err != nil {
					return rep, h.fail(op, sizes[last], err)
				}
				live, sizes = live[:last], sizes[:last]
				rep.Frees++
			}
			continue
		}

		k := rng.intn(n)
		obj, size := live[k], sizes[k]
		if err := h.check(op, obj, size, pattern(size, fuzzSalt)); err != nil {
			return rep, err
		}

		// Remove the entry before releasing so an injected fault never
		// leaves a dangling handle behind.
		last := n - 1
		live[k], sizes[k] = live[last], sizes[last]
		live, sizes = live[:last], sizes[:last]

		// The injected byte lands on the first guard byte after the class-sized
		// payload, not at the requested size, so every injection is caught.
		if b := obj.Bytes(); cap(b) > len(b) && rng.hit(o.OOBInjectRate) {
			rep.InjectedOOB++
			b[:cap(b)][len(b)] = 0xFF
		}
		if rng.hit(o.DoubleFreeInjectRate) {
			rep.InjectedDFree++
			if err := a.Free(obj); err != nil {
				return rep, h.fail(op, size, err)
			}
		}
		if err := a.Free(obj); err != nil {
			return rep, h.fail(op, size, err)
		}
		rep.Frees++
	}

	h.phase = "drain"
	for i, obj := range live {
		if err := h.check(i, obj, sizes[i], pattern(sizes[i], fuzzSalt)); err != nil {
			return rep, err
		}
		if err := a.Free(obj); err != nil {
			return rep, h.fail(i, sizes[i], err)
		}
		rep.Frees++
	}

	logger.Or(o.Logger).Info("selftest phase ok", "phase", "fuzz",
		"ops", rep.Ops, "allocs", rep.Allocs, "frees", rep.Frees, "peak", rep.Peak)
	return rep, nil
}

// harness carries the per-phase failure plumbing.
type harness struct {
	a     Allocator
	opts  Options
	phase string
}

func (h *harness) alloc(op, size int) (slab.Object, error) {
	obj, err := h.a.Alloc(size)
	if err != nil {
		return slab.Object{}, h.fail(op, size, fmt.Errorf("alloc: %w", err))
	}
	if obj.IsNil() || obj.Size() < size {
		return slab.Object{}, h.fail(op, size, ErrNilObject)
	}
	if !aligned(obj.Addr(), size) {
		return slab.Object{}, h.fail(op, size, fmt.Errorf("%w: %#x", ErrMisaligned, obj.Addr()))
	}
	return obj, nil
}

// check verifies that the first size bytes of obj still hold fill.
func (h *harness) check(op int, obj slab.Object, size int, fill byte) error {
	if obj.IsNil() {
		return h.fail(op, size, ErrNilObject)
	}
	if i := format.FirstMismatch(obj.Bytes()[:size], fill); i >= 0 {
		return h.fail(op, size, fmt.Errorf("%w: %v byte %d is %#02x, want %#02x",
			ErrPayloadMismatch, obj, i, obj.Bytes()[i], fill))
	}
	return nil
}

func (h *harness) fail(op, size int, err error) error {
	f := &Failure{Phase: h.phase, Op: op, Size: size, Err: err}
	logger.Or(h.opts.Logger).Error("selftest failure", "phase", h.phase, "op", op, "size", size, "error", err)
	h.opts.OnFailure(f)
	return f
}
