package bc3

import (
	"encoding/binary"

	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
)

// Tier selects a BC3 encoder back-end. The choice affects only output
// bits, never block count, block offsets, or block validity: any tier
// produces a block that round-trips through DecodeBlock to plausible
// colors.
type Tier int

const (
	// TierFast is a single-pass bounding-box fit: cheap,
	// used for quick iteration.
	TierFast Tier = iota
	// TierBalanced is an iterative principal-axis cluster fit.
	TierBalanced
	// TierBest is an exhaustive endpoint search around the cluster fit.
	// This is the default tier.
	TierBest
)

// blockPixels gathers the 16 source pixels of the block at (bx,by) into
// row-major order (pixel (0,0) first), matching the order DecodeBlock
// and the index-packing helpers below expect.
func blockPixels(src *bitmap.Bitmap[pixel.Pixel], bx, by uint32) [16]pixel.Pixel {
	var px [16]pixel.Pixel
	i := 0
	for dy := uint32(0); dy < 4; dy++ {
		for dx := uint32(0); dx < 4; dx++ {
			px[i] = src.At(bx+dx, by+dy).ToRGBA()
			i++
		}
	}
	return px
}

type encodeFunc func([16]pixel.Pixel, []byte)

func tierFunc(t Tier) encodeFunc {
	switch t {
	case TierFast:
		return encodeFast
	case TierBalanced:
		return encodeBalanced
	default:
		return encodeBest
	}
}

// EncodeBitmap tiles src (whose dimensions must be >=4 and divisible by
// 4) into 4x4 blocks in row-major order and BC3-encodes each with the
// given tier, returning a (w/4)*(h/4)*16-byte payload.
func EncodeBitmap(src *bitmap.Bitmap[pixel.Pixel], tier Tier) []byte {
	w, h := src.Width(), src.Height()
	blocksX, blocksY := w/4, h/4
	out := make([]byte, uint64(blocksX)*uint64(blocksY)*BlockSize)
	encode := tierFunc(tier)

	i := 0
	for by := uint32(0); by < blocksY; by++ {
		for bx := uint32(0); bx < blocksX; bx++ {
			px := blockPixels(src, bx*4, by*4)
			encode(px, out[i*BlockSize:(i+1)*BlockSize])
			i++
		}
	}
	return out
}

// --- shared alpha encoder: identical across all three tiers, since the
// spec's per-channel error bound is dominated by the color sub-block's
// 5/6-bit endpoints, not the 8-bit alpha endpoints. ---

func encodeAlphaBlock(px [16]pixel.Pixel, out []byte) {
	minA, maxA := uint8(255), uint8(0)
	for _, p := range px {
		if p.A < minA {
			minA = p.A
		}
		if p.A > maxA {
			maxA = p.A
		}
	}

	a0, a1 := maxA, minA
	var palette [8]uint8
	palette[0], palette[1] = a0, a1
	if a0 > a1 {
		for k := 2; k <= 7; k++ {
			palette[k] = uint8(((8-k)*int(a0) + (k-1)*int(a1)) / 7)
		}
	} else {
		for k := 2; k <= 5; k++ {
			palette[k] = uint8(((6-k)*int(a0) + (k-1)*int(a1)) / 5)
		}
		palette[6] = 0
		palette[7] = 255
	}

	var idx [16]uint8
	for i, p := range px {
		idx[i] = nearestAlpha(palette, p.A)
	}

	out[0], out[1] = a0, a1
	packAlphaIndices(idx, out[2:8])
}

func nearestAlpha(palette [8]uint8, a uint8) uint8 {
	best, bestDist := uint8(0), 1<<30
	for j, v := range palette {
		d := int(a) - int(v)
		d *= d
		if d < bestDist {
			bestDist = d
			best = uint8(j)
		}
	}
	return best
}

func packAlphaIndices(idx [16]uint8, out []byte) {
	var bits uint64
	for i := 0; i < 16; i++ {
		bits |= uint64(idx[i]&0x7) << uint(3*i)
	}
	for i := 0; i < 6; i++ {
		out[i] = byte(bits >> uint(8*i))
	}
}

func packColorIndices(idx [16]uint8) uint32 {
	var bits uint32
	for i := 0; i < 16; i++ {
		bits |= uint32(idx[i]&0x3) << uint(2*i)
	}
	return bits
}

// rgb565 quantizes an 8-bit RGB triple down to RGB565, the only lossy
// step in endpoint selection (decodeColorSubBlock expands back up by
// left shift, with no low-bit replication, so each channel is rounded to
// the nearest x<<3 / x<<2 level that expansion can produce, rather than
// truncated).
func rgb565(r, g, b uint8) uint16 {
	r5 := min((uint16(r)+4)>>3, 31)
	g6 := min((uint16(g)+2)>>2, 63)
	b5 := min((uint16(b)+4)>>3, 31)
	return r5<<11 | g6<<5 | b5
}

func paletteFromEndpoints(c0, c1 uint16) [4][3]uint8 {
	var buf [4]byte
	binary.LittleEndian.PutUint16(buf[0:2], c0)
	binary.LittleEndian.PutUint16(buf[2:4], c1)
	colors, _ := decodeColorSubBlock(append(buf[:], make([]byte, 4)...))
	return colors
}

func nearestColorIndex(palette [4][3]uint8, r, g, b uint8) (uint8, int) {
	best, bestDist := uint8(0), 1<<30
	for j, c := range palette {
		dr := int(r) - int(c[0])
		dg := int(g) - int(c[1])
		db := int(b) - int(c[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = uint8(j)
		}
	}
	return best, bestDist
}
