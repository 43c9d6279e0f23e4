package mipchain

import "math"

// kaiserBeta and kaiserSupport parameterize the separable Kaiser-windowed
// sinc filter used to build each mip level. The spec names a
// Kaiser-windowed sinc as the reference resampler but explicitly leaves
// the exact kernel pluggable and only requires determinism, not
// cross-implementation bit equivalence — no example in the retrieval
// pack ships this specific filter (golang.org/x/image/draw only offers
// box/bilinear/Catmull-Rom), so these constants are a direct,
// self-contained implementation rather than a library call.
const (
	kaiserBeta    = 4.0
	kaiserSupport = 3.0 // filter half-width in source-space sinc lobes
)

// besselI0 evaluates the zeroth-order modified Bessel function via its
// power series. Convergence is fast for the beta used here.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 32; k++ {
		term *= (halfX * halfX) / (float64(k) * float64(k))
		sum += term
		if term < 1e-12*sum {
			break
		}
	}
	return sum
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// kaiserSincWeight is the windowed-sinc filter kernel evaluated at
// distance x (in destination-pixel units scaled into source space by
// the caller), with the sinc widened by invScale for low-pass
// downsampling and the window applied over +/-kaiserSupport*invScale.
func kaiserSincWeight(x, invScale float64) float64 {
	width := kaiserSupport * invScale
	if math.Abs(x) >= width {
		return 0
	}
	s := sinc(x / invScale)
	t := x / width
	window := besselI0(kaiserBeta*math.Sqrt(1-t*t)) / besselI0(kaiserBeta)
	return s * window
}

// axisWeights builds, for every destination sample in [0, dstLen), the
// list of (source index, weight) contributions from a 1D Kaiser-sinc
// filter over a source axis of length srcLen. Weights for each
// destination sample sum to 1; source indices are clamped to the
// source's valid range (clamp-to-edge).
func axisWeights(srcLen, dstLen uint32) [][]weight {
	invScale := float64(srcLen) / float64(dstLen)
	if invScale < 1 {
		invScale = 1 // never sharpen past the source's native resolution
	}
	width := kaiserSupport * invScale

	out := make([][]weight, dstLen)
	for j := uint32(0); j < dstLen; j++ {
		center := (float64(j)+0.5)*float64(srcLen)/float64(dstLen) - 0.5
		lo := int(math.Floor(center - width))
		hi := int(math.Ceil(center + width))

		var ws []weight
		var sum float64
		for s := lo; s <= hi; s++ {
			w := kaiserSincWeight(float64(s)-center, invScale)
			if w == 0 {
				continue
			}
			clamped := clampInt(s, 0, int(srcLen)-1)
			ws = append(ws, weight{index: uint32(clamped), value: w})
			sum += w
		}
		if sum != 0 {
			for i := range ws {
				ws[i].value /= sum
			}
		}
		out[j] = ws
	}
	return out
}

type weight struct {
	index uint32
	value float64
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
