package bc3

import "github.com/iorange/bumpbake/pkg/pixel"

// encodeBest is the "best" (default) tier: an exhaustive endpoint
// search. Starting from the balanced tier's PCA endpoints as the first
// candidate, it tries every distinct pair of the block's own 16 colors
// as a candidate (c0,c1) endpoint pair, scores each by total squared
// color error against the resulting 4-color palette, and keeps the
// cheapest. The winning pair is then handed through the same
// cluster-fit refinement the balanced tier uses, run for two passes
// instead of one, since a refinement pass still reliably reduces error
// below any single exhaustively-chosen original-color pair. Grounded
// on the same other_examples/erinpentecost-LivelyMap__encodeDXT5.go
// fit-and-measure approach as the balanced tier, widened here to a
// full candidate sweep instead of one PCA-selected axis.
func encodeBest(px [16]pixel.Pixel, out []byte) {
	encodeAlphaBlock(px, out[0:8])

	bestC0, bestC1 := pcaEndpoints(px)
	bestErr := blockColorError(px, bestC0, bestC1)

	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			if i == j {
				continue
			}
			c0 := rgb565(px[i].R, px[i].G, px[i].B)
			c1 := rgb565(px[j].R, px[j].G, px[j].B)
			if c0 == c1 {
				continue
			}
			if errv := blockColorError(px, c0, c1); errv < bestErr {
				bestErr = errv
				bestC0, bestC1 = c0, c1
			}
		}
	}

	bestC0, bestC1 = clusterFitRefine(px, bestC0, bestC1, 2)
	writeColorBlock(out[8:16], bestC0, bestC1, px)
}

func blockColorError(px [16]pixel.Pixel, c0, c1 uint16) int {
	palette := paletteFromEndpoints(c0, c1)
	total := 0
	for _, p := range px {
		_, d := nearestColorIndex(palette, p.R, p.G, p.B)
		total += d
	}
	return total
}
