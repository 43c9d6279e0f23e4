package bump

import (
	"github.com/iorange/bumpbake/pkg/bc3"
	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
	"github.com/iorange/bumpbake/pkg/texture"
)

func clampResidual(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func residualChannel(n, d uint8) uint8 {
	return clampResidual((int(n)-int(d))*2 + 128)
}

// AssembleResidual rebuilds the bit-for-bit compression-error texture:
// it re-decodes each already-encoded bump mip, diffs it against the
// pre-encode assembled pixels un-swizzled back to normal-map
// coordinates, and replaces alpha with the height map's red channel.
// bumpPayloads holds one BC3 payload per mip, in the same order as
// assembled's mips.
func AssembleResidual(assembled *texture.Texture[pixel.Pixel], bumpPayloads [][]byte, height *texture.Texture[pixel.Pixel]) *texture.Texture[pixel.Pixel] {
	out := texture.New[pixel.Pixel](assembled.Width(), assembled.Height())

	for i := 0; i < assembled.Len(); i++ {
		np := assembled.Mip(i)
		w, h := np.Width(), np.Height()
		decoded := bc3.Decompress(bumpPayloads[i], w, h)
		heightPixels := height.Mip(i).Pixels()

		scratch := bitmap.New[pixel.Pixel](w, h)
		npPixels := np.Pixels()
		dpPixels := decoded.Pixels()
		outPixels := scratch.Pixels()

		for k := range npPixels {
			n := npPixels[k]
			d := dpPixels[k]
			errNx := residualChannel(n.A, d.A)
			errNy := residualChannel(n.B, d.B)
			errNz := residualChannel(n.G, d.G)
			outPixels[k] = pixel.NewRGBA(errNx, errNy, errNz, heightPixels[k].R)
		}

		if i == 0 {
			out.SetMip0(scratch)
		} else {
			copy(out.Mip(i).Pixels(), outPixels)
		}
	}
	return out
}
