//go:build slabnoeval

package kmalloc

// EvalDefault is the default for Options.Eval.
const EvalDefault = false
