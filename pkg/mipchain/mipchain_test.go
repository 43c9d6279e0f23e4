package mipchain

import (
	"math"
	"testing"

	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
	"github.com/iorange/bumpbake/pkg/texture"
)

func flatRGBA(w, h uint32, r, g, b, a uint8) *bitmap.Bitmap[pixel.Pixel] {
	bm := bitmap.New[pixel.Pixel](w, h)
	for i := range bm.Pixels() {
		bm.Pixels()[i] = pixel.NewRGBA(r, g, b, a)
	}
	return bm
}

func TestDownsampleFlatColorStaysFlat(t *testing.T) {
	src := flatRGBA(8, 8, 200, 100, 50, 255)
	out := Downsample(src, 4, 4)
	for y := uint32(0); y < 4; y++ {
		for x := uint32(0); x < 4; x++ {
			p := out.At(x, y)
			if p.R != 200 || p.G != 100 || p.B != 50 || p.A != 255 {
				t.Fatalf("at (%d,%d): got %+v, want flat 200,100,50,255", x, y, p)
			}
		}
	}
}

func TestDownsampleSameSizeCopies(t *testing.T) {
	src := flatRGBA(4, 4, 1, 2, 3, 4)
	out := Downsample(src, 4, 4)
	if out.At(0, 0) != src.At(0, 0) {
		t.Fatal("same-size downsample should be an identity copy")
	}
}

func TestNormalizeUnitZ(t *testing.T) {
	// (128,128,255) ~ +Z after the 0..255 -> -1..1 mapping.
	bm := bitmap.New[pixel.Pixel](1, 1)
	bm.Set(0, 0, pixel.NewRGBA(128, 128, 255, 0))
	Normalize(bm)
	p := bm.At(0, 0)

	vx := float64(p.R)/255*2 - 1
	vy := float64(p.G)/255*2 - 1
	vz := float64(p.B)/255*2 - 1
	length := math.Sqrt(vx*vx + vy*vy + vz*vz)
	if math.Abs(length-1) > 0.02 {
		t.Errorf("normalized length = %v, want ~1", length)
	}
}

func TestNormalizeLeavesAlpha(t *testing.T) {
	bm := bitmap.New[pixel.Pixel](1, 1)
	bm.Set(0, 0, pixel.NewRGBA(10, 200, 30, 77))
	Normalize(bm)
	if bm.At(0, 0).A != 77 {
		t.Errorf("alpha changed by Normalize")
	}
}

func TestNormalizeSkipsMono(t *testing.T) {
	bm := bitmap.New[pixel.Pixel](1, 1)
	bm.Set(0, 0, pixel.NewMono(128))
	Normalize(bm)
	if bm.At(0, 0).R != 128 {
		t.Errorf("Mono pixel should be untouched by Normalize")
	}
}

func TestBuildMipchainDimensions(t *testing.T) {
	tex := texture.New[pixel.Pixel](256, 128)
	tex.SetMip0(flatRGBA(256, 128, 128, 128, 255, 0))
	BuildMipchain(tex, true)

	want := [][2]uint32{{256, 128}, {128, 64}, {64, 32}, {32, 16}, {16, 8}, {8, 4}, {4, 4}}
	if tex.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", tex.Len(), len(want))
	}
	for i, w := range want {
		m := tex.Mip(i)
		if m.Width() != w[0] || m.Height() != w[1] {
			t.Errorf("mip %d = %dx%d, want %dx%d", i, m.Width(), m.Height(), w[0], w[1])
		}
	}
}

func TestBuildMipchainNormalizesFlatNormal(t *testing.T) {
	tex := texture.New[pixel.Pixel](8, 8)
	tex.SetMip0(flatRGBA(8, 8, 128, 128, 255, 0))
	BuildMipchain(tex, true)

	for i := 1; i < tex.Len(); i++ {
		m := tex.Mip(i)
		for y := uint32(0); y < m.Height(); y++ {
			for x := uint32(0); x < m.Width(); x++ {
				p := m.At(x, y)
				vx := float64(p.R)/255*2 - 1
				vy := float64(p.G)/255*2 - 1
				vz := float64(p.B)/255*2 - 1
				lenSq := vx*vx + vy*vy + vz*vz
				if math.Abs(lenSq-1) > 0.05 {
					t.Errorf("mip %d (%d,%d): length^2 = %v, want ~1", i, x, y, lenSq)
				}
			}
		}
	}
}
