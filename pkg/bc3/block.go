// Package bc3 implements the BC3 (DXT5) block codec contracts used by the
// bump-baking pipeline: a tiered encoder dispatch over 4x4 pixel blocks
// and the reference decoder for the color and alpha sub-blocks.
package bc3

import (
	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
)

// BlockSize is the byte length of one BC3 block: 8 bytes alpha sub-block
// followed by 8 bytes color sub-block.
const BlockSize = 16

func expand5(x uint8) uint8 { return x << 3 }
func expand6(x uint8) uint8 { return x << 2 }

// decodeColorSubBlock expands the 8-byte RGB565-endpoint, 2-bit-index
// color sub-block into its 4-entry palette and per-pixel indices.
// Endpoints are expanded 5->8 and 6->8 bits by left shift only (no
// low-bit replication), matching the hardware approximation this
// format targets. BC3 always uses 4-color interpolation regardless of
// the numeric ordering of c0/c1 — unlike BC1, there is no 3-color
// "punch-through" mode to select between.
func decodeColorSubBlock(data []byte) (colors [4][3]uint8, idx [16]uint8) {
	c0 := uint16(data[0]) | uint16(data[1])<<8
	c1 := uint16(data[2]) | uint16(data[3])<<8

	r0 := expand5(uint8((c0 >> 11) & 0x1F))
	g0 := expand6(uint8((c0 >> 5) & 0x3F))
	b0 := expand5(uint8(c0 & 0x1F))
	r1 := expand5(uint8((c1 >> 11) & 0x1F))
	g1 := expand6(uint8((c1 >> 5) & 0x3F))
	b1 := expand5(uint8(c1 & 0x1F))

	colors[0] = [3]uint8{r0, g0, b0}
	colors[1] = [3]uint8{r1, g1, b1}
	colors[2] = [3]uint8{
		uint8((2*int(r0) + int(r1) + 1) / 3),
		uint8((2*int(g0) + int(g1) + 1) / 3),
		uint8((2*int(b0) + int(b1) + 1) / 3),
	}
	colors[3] = [3]uint8{
		uint8((int(r0) + 2*int(r1) + 1) / 3),
		uint8((int(g0) + 2*int(g1) + 1) / 3),
		uint8((int(b0) + 2*int(b1) + 1) / 3),
	}

	bits := uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24
	for i := 0; i < 16; i++ {
		idx[i] = uint8((bits >> uint(2*i)) & 0x3)
	}
	return colors, idx
}

// decodeAlphaSubBlock expands the 8-byte two-endpoint, 3-bit-index
// alpha sub-block into its palette and per-pixel indices. The 16
// indices are consumed LSB-first from the 48-bit little-endian stream
// in data[2:8]; a conforming decoder always walks all 16 fields in
// row-major order (pixel (0,0) first), which is equivalent to the
// spec's "advance by 3*(4-w) bits after a partial row" description
// when w==4, as this pipeline always supplies.
func decodeAlphaSubBlock(data []byte) (alphas [8]uint8, idx [16]uint8) {
	a0, a1 := data[0], data[1]
	alphas[0], alphas[1] = a0, a1
	if a0 > a1 {
		for k := 2; k <= 7; k++ {
			alphas[k] = uint8(((8-k)*int(a0) + (k-1)*int(a1)) / 7)
		}
	} else {
		for k := 2; k <= 5; k++ {
			alphas[k] = uint8(((6-k)*int(a0) + (k-1)*int(a1)) / 5)
		}
		alphas[6] = 0
		alphas[7] = 255
	}

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(data[2+i]) << uint(8*i)
	}
	for i := 0; i < 16; i++ {
		idx[i] = uint8((bits >> uint(3*i)) & 0x7)
	}
	return alphas, idx
}

// DecodeBlock decodes one 16-byte BC3 block into dst, writing a 4x4
// (or smaller, at an image edge) run of RGBA pixels starting at
// (x0,y0) using dst's own indexing — there is no separate stride
// parameter since bitmap.Bitmap already owns its row width. w and h
// (1..4) bound how many of the block's 16 cells are visible at an
// edge; this pipeline, whose mips are always block-aligned, calls with
// w=h=4.
func DecodeBlock(block []byte, dst *bitmap.Bitmap[pixel.Pixel], x0, y0, w, h uint32) {
	alphas, alphaIdx := decodeAlphaSubBlock(block[0:8])
	colors, colorIdx := decodeColorSubBlock(block[8:16])

	for py := uint32(0); py < 4; py++ {
		for px := uint32(0); px < 4; px++ {
			i := py*4 + px
			if px >= w || py >= h {
				continue
			}
			c := colors[colorIdx[i]]
			a := alphas[alphaIdx[i]]
			dst.Set(x0+px, y0+py, pixel.NewRGBA(c[0], c[1], c[2], a))
		}
	}
}

// Decompress decodes a full BC3 mip payload (row-major blocks, w and h
// divisible by 4) into an RGBA bitmap of dimensions w x h.
func Decompress(payload []byte, w, h uint32) *bitmap.Bitmap[pixel.Pixel] {
	out := bitmap.New[pixel.Pixel](w, h)
	blocksX, blocksY := w/4, h/4
	i := 0
	for by := uint32(0); by < blocksY; by++ {
		for bx := uint32(0); bx < blocksX; bx++ {
			block := payload[i*BlockSize : (i+1)*BlockSize]
			DecodeBlock(block, out, bx*4, by*4, 4, 4)
			i++
		}
	}
	return out
}
