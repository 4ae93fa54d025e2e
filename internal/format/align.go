package format

// AlignUp returns n rounded up to the next multiple of a. a must be a power
// of two.
//
// Example:
//
//	AlignUp(40, 16) = 48
//	AlignUp(48, 16) = 48
//	AlignUp(7, 8)   = 8
func AlignUp(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// PayloadAlign returns the largest power of two that divides size, capped at
// limit. A request of 12 bytes only needs 4-byte alignment, 16 needs 16 (or
// limit if smaller).
func PayloadAlign(size, limit int) int {
	if size <= 0 {
		return 1
	}
	a := size & -size
	if a > limit {
		return limit
	}
	return a
}
