package format

import "testing"

func TestAlignUp(t *testing.T) {
	tests := []struct{ n, a, want int }{
		{0, 16, 0},
		{1, 8, 8},
		{40, 16, 48},
		{48, 16, 48},
		{72, 16, 80},
		{4095, 4096, 4096},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.n, tt.a); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.n, tt.a, got, tt.want)
		}
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []int{1, 2, 8, 16, 4096} {
		if !IsPow2(n) {
			t.Errorf("IsPow2(%d) = false", n)
		}
	}
	for _, n := range []int{0, -4, 3, 12, 48} {
		if IsPow2(n) {
			t.Errorf("IsPow2(%d) = true", n)
		}
	}
}

func TestPayloadAlign(t *testing.T) {
	tests := []struct{ size, limit, want int }{
		{7, 16, 1},
		{12, 16, 4},
		{16, 16, 16},
		{64, 16, 16},
		{48, 8, 8},
		{0, 16, 1},
	}
	for _, tt := range tests {
		if got := PayloadAlign(tt.size, tt.limit); got != tt.want {
			t.Errorf("PayloadAlign(%d, %d) = %d, want %d", tt.size, tt.limit, got, tt.want)
		}
	}
}

func TestFillAndMismatch(t *testing.T) {
	b := make([]byte, 16)
	Fill(b, GuardPattern)
	if i := FirstMismatch(b, GuardPattern); i != -1 {
		t.Fatalf("FirstMismatch = %d after Fill", i)
	}
	b[9] = 0xFF
	if i := FirstMismatch(b, GuardPattern); i != 9 {
		t.Fatalf("FirstMismatch = %d, want 9", i)
	}
}
