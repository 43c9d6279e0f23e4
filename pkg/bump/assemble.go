package bump

import (
	"math"

	"github.com/iorange/bumpbake/pkg/pixel"
	"github.com/iorange/bumpbake/pkg/texture"
)

// glossCurve maps a linear gloss byte to the stored representation:
// the log-ish sqrt curve by default (the target engine's shader
// re-linearizes it), or the raw byte when linearGloss is set.
func glossCurve(g uint8, linearGloss bool) uint8 {
	if linearGloss {
		return g
	}
	return uint8(math.Round(math.Sqrt(float64(g)/255) * 255))
}

// AssembleBump fuses the normal-map pyramid with the (optional)
// gloss-map pyramid into the bump channel layout: r=gloss curve,
// g=Nz, b=Ny, a=Nx. The fused pixels overwrite normal's own mip
// buffers in place, since after assembly nothing downstream needs the
// un-swizzled normal map again.
//
// When gloss is nil the assembler still applies the swizzle, using the
// normal map's own red channel (un-curved) as the red output, per the
// spec's absent-gloss default.
func AssembleBump(normal, gloss *texture.Texture[pixel.Pixel], linearGloss bool) {
	for i := 0; i < normal.Len(); i++ {
		np := normal.Mip(i)
		npPixels := np.Pixels()

		var glossPixels []pixel.Pixel
		if gloss != nil {
			glossPixels = gloss.Mip(i).Pixels()
		}

		for k := range npPixels {
			n := npPixels[k]
			var red uint8
			if glossPixels != nil {
				red = glossCurve(glossPixels[k].R, linearGloss)
			} else {
				red = n.R
			}
			npPixels[k] = pixel.NewRGBA(red, n.B, n.G, n.R)
		}
	}
}
