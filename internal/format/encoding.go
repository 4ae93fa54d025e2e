package format

import "encoding/binary"

// Little-endian helpers for the page layouts. Offsets are relative to the
// slice passed in; an out-of-range offset panics like any slice access.

// PutU16 writes v at off.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU32 writes v at off.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU16 reads the uint16 at off.
func ReadU16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

// ReadU32 reads the uint32 at off.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// Fill sets every byte of b to v.
func Fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// FirstMismatch returns the index of the first byte in b that is not v, or -1.
func FirstMismatch(b []byte, v byte) int {
	for i, c := range b {
		if c != v {
			return i
		}
	}
	return -1
}
