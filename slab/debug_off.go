//go:build slabnodebug

package slab

// DebugDefault is the compile-time default for Options.Debug.
const DebugDefault = false
