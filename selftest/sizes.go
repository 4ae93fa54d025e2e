package selftest

import "github.com/joshuapare/slabkit/internal/format"

// BoundarySizes is the fixed size sequence of the deterministic phase. It
// hits both sides of every class boundary plus several odd sizes.
var BoundarySizes = []int{
	1, 2, 3, 4, 7, 8, 15, 16, 17, 32, 48, 64, 65, 96,
	128, 192, 256, 257, 384, 512, 513, 1024, 1536, 2040,
}

// pickSize draws a fuzz request size. The distribution favors 17..64 byte
// objects, with a thin tail up to 2040 bytes:
//
//	~50%  17..64,   multiple of 4
//	~21%  1..16
//	~21%  65..256,  multiple of 8
//	 ~8%  257..512, multiple of 8
//	<1%   513..2040, multiple of 8
func pickSize(rng *xorshift) int {
	r := rng.next() & 255
	switch {
	case r < 127:
		return format.AlignUp(rng.intn(48)+17, 4)
	case r < 181:
		return rng.intn(16) + 1
	case r < 235:
		return format.AlignUp(rng.intn(192)+65, 8)
	case r < 255:
		return format.AlignUp(rng.intn(256)+257, 8)
	default:
		return format.AlignUp(rng.intn(1528)+513, 8)
	}
}

// aligned reports whether addr satisfies the 2/4/8-byte alignment implied by
// size.
func aligned(addr uintptr, size int) bool {
	return addr%uintptr(format.PayloadAlign(size, 8)) == 0
}

// pattern is the fill byte for a size in the given phase.
func pattern(size int, salt byte) byte {
	return byte(size) ^ salt
}
