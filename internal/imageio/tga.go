package imageio

import (
	"fmt"

	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
)

const (
	tgaTypeUncompressed = 2
	tgaTypeRLE          = 10
)

// decodeTGA supports uncompressed (type 2) and RLE (type 10) true-color
// TGA, the formats actual export pipelines for these maps produce.
// Grounded on other_examples' TGA decoder (avatar29A-midgard-ro).
func decodeTGA(data []byte) (*bitmap.Bitmap[pixel.Pixel], error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("imageio: tga data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("imageio: color-mapped TGA not supported")
	}
	if imageType != tgaTypeUncompressed && imageType != tgaTypeRLE {
		return nil, fmt.Errorf("imageio: unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("imageio: unsupported TGA bit depth %d", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("imageio: tga data truncated")
	}
	pixelData := data[offset:]
	bytesPerPixel := bpp / 8
	topToBottom := descriptor&0x20 != 0

	bm := bitmap.New[pixel.Pixel](uint32(width), uint32(height))

	set := func(pixelIdx int, b, g, r, a uint8) {
		x := pixelIdx % width
		y := pixelIdx / width
		destY := y
		if !topToBottom {
			destY = height - 1 - y
		}
		bm.Set(uint32(x), uint32(destY), pixel.NewRGBA(r, g, b, a))
	}

	if imageType == tgaTypeUncompressed {
		expectedSize := width * height * bytesPerPixel
		if len(pixelData) < expectedSize {
			return nil, fmt.Errorf("imageio: tga pixel data truncated")
		}
		for p := 0; p < width*height; p++ {
			i := p * bytesPerPixel
			a := uint8(255)
			if bytesPerPixel == 4 {
				a = pixelData[i+3]
			}
			set(p, pixelData[i], pixelData[i+1], pixelData[i+2], a)
		}
		return bm, nil
	}

	if err := decodeTGARLE(pixelData, width, height, bytesPerPixel, set); err != nil {
		return nil, err
	}
	return bm, nil
}

func decodeTGARLE(pixelData []byte, width, height, bytesPerPixel int, set func(idx int, b, g, r, a uint8)) error {
	pixelCount := width * height
	pixelIdx, dataIdx := 0, 0

	for pixelIdx < pixelCount && dataIdx < len(pixelData) {
		packet := pixelData[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if dataIdx+bytesPerPixel > len(pixelData) {
				break
			}
			b, g, r := pixelData[dataIdx], pixelData[dataIdx+1], pixelData[dataIdx+2]
			a := uint8(255)
			if bytesPerPixel == 4 {
				a = pixelData[dataIdx+3]
			}
			dataIdx += bytesPerPixel
			for i := 0; i < count && pixelIdx < pixelCount; i++ {
				set(pixelIdx, b, g, r, a)
				pixelIdx++
			}
			continue
		}

		for i := 0; i < count && pixelIdx < pixelCount; i++ {
			if dataIdx+bytesPerPixel > len(pixelData) {
				break
			}
			b, g, r := pixelData[dataIdx], pixelData[dataIdx+1], pixelData[dataIdx+2]
			a := uint8(255)
			if bytesPerPixel == 4 {
				a = pixelData[dataIdx+3]
			}
			dataIdx += bytesPerPixel
			set(pixelIdx, b, g, r, a)
			pixelIdx++
		}
	}
	return nil
}
