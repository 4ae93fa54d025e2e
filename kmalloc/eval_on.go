//go:build !slabnoeval

package kmalloc

// EvalDefault is the default for Options.Eval. Build with -tags slabnoeval
// to skip the startup self-test by default.
const EvalDefault = true
