// Package imageio loads normal/gloss/height map rasters off disk into
// pixel.Pixel bitmaps. This is the out-of-scope "external loader"
// collaborator the pipeline assumes; it is CLI glue, not part of the
// core texture pipeline.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
)

// Load reads path and decodes it into an RGBA8 bitmap, dispatching on
// the file extension: .png via the standard library, .bmp and .tga
// via the minimal decoders below.
func Load(path string) (*bitmap.Bitmap[pixel.Pixel], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("imageio: decode png %s: %w", path, err)
		}
		return fromImage(img), nil
	case ".bmp":
		return decodeBMP(data)
	case ".tga":
		return decodeTGA(data)
	default:
		return nil, fmt.Errorf("imageio: unsupported extension %q", filepath.Ext(path))
	}
}

// fromImage reads through the NRGBA (non-alpha-premultiplied) color
// model rather than calling At(...).RGBA() directly: image.Color.RGBA()
// returns alpha-premultiplied channels, which would zero out a normal
// map's RGB wherever alpha isn't 255. Converting through color.NRGBAModel
// first matches how the tool this loader stands in for (stb_image, which
// hands back raw unassociated channels) treats a non-opaque source.
func fromImage(img image.Image) *bitmap.Bitmap[pixel.Pixel] {
	b := img.Bounds()
	w, h := uint32(b.Dx()), uint32(b.Dy())
	bm := bitmap.New[pixel.Pixel](w, h)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			bm.Set(uint32(x), uint32(y), pixel.NewRGBA(c.R, c.G, c.B, c.A))
		}
	}
	return bm
}
