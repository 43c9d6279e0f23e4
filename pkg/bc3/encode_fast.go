package bc3

import "github.com/iorange/bumpbake/pkg/pixel"

// encodeFast is the "fast" tier: a single-pass DXT block encoder with
// unweighted RGB error. Endpoints are the per-channel bounding box of the 16 source
// colors (the cheapest endpoint choice that still adapts to the
// block's actual color range), quantized to RGB565 and used directly —
// no iterative refinement. Grounded on the single-pass bounding-box
// style the teacher's CGo encoder delegates to libsquish for
// (cmd/texconv/encoder.go), reimplemented in pure Go.
func encodeFast(px [16]pixel.Pixel, out []byte) {
	encodeAlphaBlock(px, out[0:8])

	var minR, minG, minB uint8 = 255, 255, 255
	var maxR, maxG, maxB uint8
	for _, p := range px {
		if p.R < minR {
			minR = p.R
		}
		if p.G < minG {
			minG = p.G
		}
		if p.B < minB {
			minB = p.B
		}
		if p.R > maxR {
			maxR = p.R
		}
		if p.G > maxG {
			maxG = p.G
		}
		if p.B > maxB {
			maxB = p.B
		}
	}

	c0 := rgb565(maxR, maxG, maxB)
	c1 := rgb565(minR, minG, minB)
	palette := paletteFromEndpoints(c0, c1)

	var idx [16]uint8
	for i, p := range px {
		idx[i], _ = nearestColorIndex(palette, p.R, p.G, p.B)
	}

	colorBlock := out[8:16]
	colorBlock[0] = byte(c0)
	colorBlock[1] = byte(c0 >> 8)
	colorBlock[2] = byte(c1)
	colorBlock[3] = byte(c1 >> 8)
	bits := packColorIndices(idx)
	colorBlock[4] = byte(bits)
	colorBlock[5] = byte(bits >> 8)
	colorBlock[6] = byte(bits >> 16)
	colorBlock[7] = byte(bits >> 24)
}
