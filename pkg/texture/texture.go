// Package texture provides the ordered mip pyramid built over a
// bitmap.Bitmap, used by the bump-baking pipeline to carry a normal,
// gloss or height map through its mip chain.
package texture

import "github.com/iorange/bumpbake/pkg/bitmap"

// MipCount returns the highest mip index N of a pyramid built over base
// dimensions (w, h): the pyramid stops at the first mip whose
// dimensions have already saturated at the 4-pixel floor, rather than
// continuing to generate redundant 4x4 mips all the way down to 1x1.
// Equivalently, N = floor(log2(max(w,h))) - 2, clamped to 0 for bases
// already at or below the floor.
func MipCount(w, h uint32) int {
	m := w
	if h > m {
		m = h
	}
	count := 0
	for m > 4 {
		m >>= 1
		count++
	}
	return count
}

// MipDims returns the dimensions of mip i given base dimensions (w, h).
// Mip dimensions saturate at a 4-pixel floor in both axes, since the
// output codec is block-based with 4x4 blocks.
func MipDims(w, h uint32, i int) (uint32, uint32) {
	mw := w >> uint(i)
	mh := h >> uint(i)
	if mw < 4 {
		mw = 4
	}
	if mh < 4 {
		mh = 4
	}
	return mw, mh
}

// Texture is an ordered sequence of Bitmap mips indexed from 0 (coarsest
// mip is last). It is constructed empty; mip 0 is assigned by the
// caller via SetMip0, after which Mips holds the full mip-0..N series
// once a mip builder has populated mips 1..N.
type Texture[T any] struct {
	width, height uint32
	mips          []*bitmap.Bitmap[T]
}

// New allocates a Texture over base dimensions (w, h) with mip 0 left
// nil and mips 1..N preallocated to their saturated dimensions.
func New[T any](w, h uint32) *Texture[T] {
	n := MipCount(w, h)
	tex := &Texture[T]{width: w, height: h, mips: make([]*bitmap.Bitmap[T], n+1)}
	for i := 1; i <= n; i++ {
		mw, mh := MipDims(w, h, i)
		tex.mips[i] = bitmap.New[T](mw, mh)
	}
	return tex
}

// SetMip0 assigns the base mip. Its dimensions must match the
// Texture's base dimensions.
func (t *Texture[T]) SetMip0(b *bitmap.Bitmap[T]) {
	t.mips[0] = b
}

// Width returns the base (mip 0) width.
func (t *Texture[T]) Width() uint32 { return t.width }

// Height returns the base (mip 0) height.
func (t *Texture[T]) Height() uint32 { return t.height }

// Len returns the number of mips in the pyramid (N+1, mip 0 included).
func (t *Texture[T]) Len() int { return len(t.mips) }

// Mip returns mip i.
func (t *Texture[T]) Mip(i int) *bitmap.Bitmap[T] { return t.mips[i] }

// Mips returns the full mip slice for iteration.
func (t *Texture[T]) Mips() []*bitmap.Bitmap[T] { return t.mips }
