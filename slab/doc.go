// Package slab implements a page-backed object cache: every Cache carves whole
// pages from a page.Supplier into equal-stride slots and serves fixed-size
// objects from them in O(1).
//
// # Overview
//
// A Cache owns its slabs for its whole lifetime and keeps each of them on
// exactly one of three lists:
//
//   - full:    no free slot left
//   - partial: some slots free
//   - empty:   every slot free
//
// Alloc prefers a partial slab over an empty one and only asks the page
// supplier for a new page when neither exists. Free moves a slab back from
// full to partial, and from partial to empty once its last object returns.
//
// # Page Layout
//
// Each slab is one page. The page starts with a small control block
// (signature, slab id, stride, capacity) followed by the slots:
//
//	+---------+--------+---------+-------+--------+---------+-------+----
//	| control | header | payload | guard | header | payload | guard | ...
//	+---------+--------+---------+-------+--------+---------+-------+----
//	          |<------------ stride ------------->|
//
// The header carries a magic value, the slot index, the owning slab id, the
// lifecycle state and the index of the next free slot. The freelist is a
// chain of slot indexes threaded through those headers, so popping and
// pushing a slot never allocates.
//
// # Debug Instrumentation
//
// With Options.Debug set (the default unless built with -tags slabnodebug):
//
//   - header magic is checked on every alloc and free
//   - the lifecycle state must go free -> allocated -> free
//   - payloads are filled with 0xA5 on alloc and 0xCC on free
//   - a 16-byte guard region of 0xDE follows every payload and is checked on free
//
// Any violation is reported as a *CorruptionError to Options.OnCorruption. The
// default handler, Halt, panics. If a handler returns instead, the operation
// returns the same error and the slot stays out of circulation.
//
// # Objects
//
// Alloc returns an Object handle. Object.Bytes exposes the payload; in debug
// mode the slice capacity also spans the guard region, so writing past the
// declared size is possible (and detected) just as it would be with raw memory.
//
// # Thread Safety
//
// Each Cache has one mutex guarding its lists and every slab freelist.
// Different caches share nothing and can be used concurrently. Header and
// guard checks on the alloc path run after the slot has been unlinked, outside
// the lock.
package slab
