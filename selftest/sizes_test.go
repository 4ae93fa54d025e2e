package selftest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXorshiftDeterministic(t *testing.T) {
	a := &xorshift{s: DefaultSeed}
	b := &xorshift{s: DefaultSeed}
	c := &xorshift{s: 1}

	same := true
	for range 1000 {
		x := a.next()
		require.Equal(t, x, b.next())
		if x != c.next() {
			same = false
		}
	}
	assert.False(t, same, "different seeds must diverge")
}

func TestXorshiftHit(t *testing.T) {
	rng := &xorshift{s: DefaultSeed}
	for range 100 {
		assert.False(t, rng.hit(0))
		assert.True(t, rng.hit(1))
	}

	hits := 0
	for range 64000 {
		if rng.hit(64) {
			hits++
		}
	}
	assert.InDelta(t, 1000, hits, 250)
}

func TestPickSizeDistribution(t *testing.T) {
	rng := &xorshift{s: DefaultSeed}
	const draws = 100000

	var small, mid, tiny int
	for range draws {
		z := pickSize(rng)
		require.GreaterOrEqual(t, z, 1)
		require.LessOrEqual(t, z, 2040)
		switch {
		case z <= 16:
			tiny++
		case z <= 64:
			small++
			require.Zero(t, z%4, "17..64 sizes are multiples of 4")
		default:
			mid++
			require.Zero(t, z%8, "sizes above 64 are multiples of 8")
		}
	}
	assert.InDelta(t, 0.50, float64(small)/draws, 0.05)
	assert.InDelta(t, 0.21, float64(tiny)/draws, 0.05)
	assert.InDelta(t, 0.29, float64(mid)/draws, 0.05)
}

func TestAligned(t *testing.T) {
	tests := []struct {
		addr uintptr
		size int
		want bool
	}{
		{0x1001, 1, true},
		{0x1001, 3, true},
		{0x1001, 2, false},
		{0x1002, 2, true},
		{0x1002, 4, false},
		{0x1004, 12, true},
		{0x1004, 8, false},
		{0x1008, 2040, true},
		{0x1010, 64, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, aligned(tt.addr, tt.size), "addr %#x size %d", tt.addr, tt.size)
	}
}

func TestBoundarySizesCoverEveryClassEdge(t *testing.T) {
	seen := map[int]bool{}
	for _, z := range BoundarySizes {
		seen[z] = true
	}
	for _, edge := range []int{8, 16, 32, 64, 128, 256, 512, 1024} {
		assert.True(t, seen[edge] || seen[edge+1], "no size near class edge %d", edge)
	}
}

func TestOptionsNormalized(t *testing.T) {
	var nilOpts *Options
	o := nilOpts.normalized()
	assert.Equal(t, DefaultSlots, o.Slots)
	assert.Equal(t, DefaultOps, o.Ops)
	assert.Equal(t, DefaultSeed, o.Seed)
	assert.NotNil(t, o.OnFailure)

	o = (&Options{Ops: 10, Slots: 3}).normalized()
	assert.Equal(t, 10, o.Ops)
	assert.Equal(t, 3, o.Slots)
	assert.Equal(t, DefaultSeed, o.Seed)
}
