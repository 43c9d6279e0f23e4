package bc3

import (
	"math"

	"github.com/iorange/bumpbake/pkg/pixel"
)

// encodeBalanced is the "balanced" tier: an iterative cluster-fit DXT5
// encoder. It picks initial endpoints along the block's principal
// color axis (power-iteration PCA, not just a bounding box) and then
// refines them once by least-squares cluster fit against the index
// assignment the initial endpoints produce. Grounded on
// other_examples/erinpentecost-LivelyMap__encodeDXT5.go's PCA-based
// DXT1 color fit, extended here with the cluster-fit refinement pass
// that distinguishes a "balanced" iterative encoder from a one-shot
// PCA fit.
func encodeBalanced(px [16]pixel.Pixel, out []byte) {
	encodeAlphaBlock(px, out[0:8])
	c0, c1 := pcaEndpoints(px)
	c0, c1 = clusterFitRefine(px, c0, c1, 1)
	writeColorBlock(out[8:16], c0, c1, px)
}

type vec3 [3]float64

func pcaEndpoints(px [16]pixel.Pixel) (c0, c1 uint16) {
	var avg vec3
	for _, p := range px {
		avg[0] += float64(p.R)
		avg[1] += float64(p.G)
		avg[2] += float64(p.B)
	}
	avg[0] /= 16
	avg[1] /= 16
	avg[2] /= 16

	var cov [3][3]float64
	for _, p := range px {
		d := vec3{float64(p.R) - avg[0], float64(p.G) - avg[1], float64(p.B) - avg[2]}
		cov[0][0] += d[0] * d[0]
		cov[0][1] += d[0] * d[1]
		cov[0][2] += d[0] * d[2]
		cov[1][1] += d[1] * d[1]
		cov[1][2] += d[1] * d[2]
		cov[2][2] += d[2] * d[2]
	}
	cov[1][0], cov[2][0], cov[2][1] = cov[0][1], cov[0][2], cov[1][2]

	v := powerIterationAxis(cov)

	minProj, maxProj := math.MaxFloat64, -math.MaxFloat64
	for _, p := range px {
		proj := dot(vec3{float64(p.R), float64(p.G), float64(p.B)}, v)
		if proj < minProj {
			minProj = proj
		}
		if proj > maxProj {
			maxProj = proj
		}
	}
	avgProj := dot(avg, v)
	end0 := addScaled(avg, v, maxProj-avgProj)
	end1 := addScaled(avg, v, minProj-avgProj)

	c0 = rgb565(clampChan(end0[0]), clampChan(end0[1]), clampChan(end0[2]))
	c1 = rgb565(clampChan(end1[0]), clampChan(end1[1]), clampChan(end1[2]))
	return c0, c1
}

func powerIterationAxis(m [3][3]float64) vec3 {
	v := vec3{1, 1, 1}
	for iter := 0; iter < 12; iter++ {
		nv := vec3{
			m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
			m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
			m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
		}
		length := math.Sqrt(dot(nv, nv))
		if length < 1e-9 {
			return vec3{1, 0, 0}
		}
		v = vec3{nv[0] / length, nv[1] / length, nv[2] / length}
	}
	return v
}

func dot(a, b vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func addScaled(a, v vec3, t float64) vec3 {
	return vec3{a[0] + v[0]*t, a[1] + v[1]*t, a[2] + v[2]*t}
}

func clampChan(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// weightForIndex returns the c0-side interpolation weight t for a
// decoded palette index (colors[0] is t=1, colors[1] is t=0, colors[2]
// and colors[3] are the 2/3 and 1/3 mixes).
func weightForIndex(idx uint8) float64 {
	switch idx {
	case 0:
		return 1
	case 1:
		return 0
	case 2:
		return 2.0 / 3.0
	default:
		return 1.0 / 3.0
	}
}

// clusterFitRefine re-solves for the least-squares optimal c0/c1 given
// the index assignment the current endpoints produce, iterating the
// assign/re-solve loop `iterations` times.
func clusterFitRefine(px [16]pixel.Pixel, c0, c1 uint16, iterations int) (uint16, uint16) {
	for pass := 0; pass < iterations; pass++ {
		palette := paletteFromEndpoints(c0, c1)
		var sxx, sxy, syy float64
		var sxp, syp [3]float64
		for _, p := range px {
			idx, _ := nearestColorIndex(palette, p.R, p.G, p.B)
			t := weightForIndex(idx)
			sxx += t * t
			sxy += t * (1 - t)
			syy += (1 - t) * (1 - t)
			ch := [3]float64{float64(p.R), float64(p.G), float64(p.B)}
			for k := 0; k < 3; k++ {
				sxp[k] += t * ch[k]
				syp[k] += (1 - t) * ch[k]
			}
		}
		det := sxx*syy - sxy*sxy
		if math.Abs(det) < 1e-6 {
			break
		}
		var end0, end1 vec3
		for k := 0; k < 3; k++ {
			end0[k] = (sxp[k]*syy - syp[k]*sxy) / det
			end1[k] = (sxx*syp[k] - sxy*sxp[k]) / det
		}
		c0 = rgb565(clampChan(end0[0]), clampChan(end0[1]), clampChan(end0[2]))
		c1 = rgb565(clampChan(end1[0]), clampChan(end1[1]), clampChan(end1[2]))
	}
	return c0, c1
}

func writeColorBlock(out []byte, c0, c1 uint16, px [16]pixel.Pixel) {
	palette := paletteFromEndpoints(c0, c1)
	var idx [16]uint8
	for i, p := range px {
		idx[i], _ = nearestColorIndex(palette, p.R, p.G, p.B)
	}
	out[0] = byte(c0)
	out[1] = byte(c0 >> 8)
	out[2] = byte(c1)
	out[3] = byte(c1 >> 8)
	bits := packColorIndices(idx)
	out[4] = byte(bits)
	out[5] = byte(bits >> 8)
	out[6] = byte(bits >> 16)
	out[7] = byte(bits >> 24)
}
