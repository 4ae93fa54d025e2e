package format

import "errors"

var (
	// ErrSignatureMismatch indicates a control block had an unexpected signature.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadMagic indicates an object header without SlotMagic.
	ErrBadMagic = errors.New("format: bad slot magic")
)
