package bitmap

import "testing"

func TestNewAndInvariants(t *testing.T) {
	b := New[uint8](4, 3)
	if b.Width() != 4 || b.Height() != 3 {
		t.Fatalf("dims = %dx%d, want 4x3", b.Width(), b.Height())
	}
	if len(b.Pixels()) != 12 {
		t.Fatalf("len(pixels) = %d, want 12 (width*height)", len(b.Pixels()))
	}
	if b.Empty() {
		t.Fatalf("non-zero-width bitmap reported empty")
	}
}

func TestEmptyBitmap(t *testing.T) {
	var b Bitmap[uint8]
	if !b.Empty() {
		t.Fatal("zero-value bitmap should be empty")
	}
}

func TestSetAt(t *testing.T) {
	b := New[int](2, 2)
	b.Set(1, 0, 99)
	b.Set(0, 1, 5)
	if got := b.At(1, 0); got != 99 {
		t.Errorf("At(1,0) = %d, want 99", got)
	}
	if got := b.At(0, 1); got != 5 {
		t.Errorf("At(0,1) = %d, want 5", got)
	}
	if got := b.At(0, 0); got != 0 {
		t.Errorf("At(0,0) = %d, want 0", got)
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-bounds access")
		}
	}()
	b := New[uint8](2, 2)
	b.At(2, 0)
}

func TestIsPowerOfTwo(t *testing.T) {
	cases := []struct {
		w, h uint32
		want bool
	}{
		{1, 1, true},
		{4, 4, true},
		{256, 128, true},
		{100, 100, false},
		{4, 3, false},
		{0, 4, false},
	}
	for _, c := range cases {
		if got := IsPowerOfTwo(c.w, c.h); got != c.want {
			t.Errorf("IsPowerOfTwo(%d,%d) = %v, want %v", c.w, c.h, got, c.want)
		}
	}
}
