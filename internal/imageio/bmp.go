package imageio

import (
	"encoding/binary"
	"fmt"

	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
)

// bitmapFileHeader mirrors the Windows BITMAPFILEHEADER layout, per
// other_examples' BMP fileformat.go struct (field names and comments
// match the Win32 reference that file documents).
type bitmapFileHeader struct {
	Type      [2]byte
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32
}

type bitmapInfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPixelsPerM     int32
	YPixelsPerM     int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

const bmpFileHeaderSize = 14

// decodeBMP supports the uncompressed 24-bit and 32-bit BGR(A) DIB
// variants actually produced by normal/gloss/height map exporters;
// paletted and RLE BMPs are out of scope.
func decodeBMP(data []byte) (*bitmap.Bitmap[pixel.Pixel], error) {
	if len(data) < bmpFileHeaderSize+4 {
		return nil, fmt.Errorf("imageio: bmp data too short")
	}
	var fh bitmapFileHeader
	fh.Type[0], fh.Type[1] = data[0], data[1]
	if fh.Type != [2]byte{'B', 'M'} {
		return nil, fmt.Errorf("imageio: not a BMP file")
	}
	fh.Size = binary.LittleEndian.Uint32(data[2:6])
	fh.OffBits = binary.LittleEndian.Uint32(data[10:14])

	var ih bitmapInfoHeader
	ih.Size = binary.LittleEndian.Uint32(data[14:18])
	ih.Width = int32(binary.LittleEndian.Uint32(data[18:22]))
	ih.Height = int32(binary.LittleEndian.Uint32(data[22:26]))
	ih.BitCount = binary.LittleEndian.Uint16(data[28:30])
	ih.Compression = binary.LittleEndian.Uint32(data[30:34])

	if ih.Compression != 0 {
		return nil, fmt.Errorf("imageio: compressed BMP not supported")
	}
	if ih.BitCount != 24 && ih.BitCount != 32 {
		return nil, fmt.Errorf("imageio: unsupported BMP bit depth %d", ih.BitCount)
	}

	width := int(ih.Width)
	topDown := ih.Height < 0
	height := int(ih.Height)
	if height < 0 {
		height = -height
	}
	bytesPerPixel := int(ih.BitCount) / 8
	rowSize := ((width*bytesPerPixel + 3) / 4) * 4

	pixelData := data[fh.OffBits:]
	bm := bitmap.New[pixel.Pixel](uint32(width), uint32(height))

	for y := 0; y < height; y++ {
		srcY := y
		if !topDown {
			srcY = height - 1 - y
		}
		rowStart := srcY * rowSize
		if rowStart+width*bytesPerPixel > len(pixelData) {
			return nil, fmt.Errorf("imageio: bmp pixel data truncated")
		}
		row := pixelData[rowStart:]
		for x := 0; x < width; x++ {
			i := x * bytesPerPixel
			b, g, r := row[i], row[i+1], row[i+2]
			a := uint8(255)
			if bytesPerPixel == 4 {
				a = row[i+3]
			}
			bm.Set(uint32(x), uint32(y), pixel.NewRGBA(r, g, b, a))
		}
	}
	return bm, nil
}
