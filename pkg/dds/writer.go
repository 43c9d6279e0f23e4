// Package dds writes the legacy (non-DX10) DDS container this pipeline
// targets: a 128-byte DDSURFACEDESC2 header carrying a single BC3
// (FourCC "DXT5") FourCC entry, followed by concatenated mip payloads.
package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magic = 0x20534444 // "DDS "

	flagsCapsHeightWidthPixelFormatMipMapCount = 0x00021007
	pixelFormatFlagFourCC                      = 0x00000004
	fourCCDXT5                                 = 0x35545844
	capsTextureMipMap                          = 0x00401000

	// HeaderSize is the fixed byte length of the DDS header this writer
	// emits: the 4-byte magic plus the 124-byte DDSURFACEDESC2 record.
	HeaderSize = 128
)

// header mirrors the legacy DDSURFACEDESC2 layout field-for-field,
// including the reserved zero runs, so a single binary.Write produces
// the exact byte-for-byte layout in the spec's §6.1 table.
type header struct {
	Magic             uint32
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	BackBufferCount   uint32
	MipMapCount       uint32
	AlphaBitDepth     uint32
	Unused0           uint32
	Surface           uint32
	ColorKeys         [4][2]uint32
	PixelFormatSize   uint32
	PixelFormatFlags  uint32
	FourCC            uint32
	PixelFormatRest   [5]uint32
	CapsFlags         uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Unused1           uint32
}

// WriteBC3 writes a complete DDS file to w: the 128-byte header
// described by the fixed required values above, width/height/mipCount
// taken from the caller, followed by mips concatenated in order with
// no padding between them.
func WriteBC3(w io.Writer, width, height uint32, mips [][]byte) error {
	h := header{
		Magic:            magic,
		Size:             124,
		Flags:            flagsCapsHeightWidthPixelFormatMipMapCount,
		Height:           height,
		Width:            width,
		MipMapCount:      uint32(len(mips)),
		PixelFormatSize:  32,
		PixelFormatFlags: pixelFormatFlagFourCC,
		FourCC:           fourCCDXT5,
		CapsFlags:        capsTextureMipMap,
	}

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("dds: write header: %w", err)
	}

	for i, mip := range mips {
		if _, err := w.Write(mip); err != nil {
			return fmt.Errorf("dds: write mip %d: %w", i, err)
		}
	}
	return nil
}

// EncodeBC3 is WriteBC3 buffered into memory; bump.Run uses it to hand
// both DDS files back to the caller as byte slices.
func EncodeBC3(width, height uint32, mips [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBC3(&buf, width, height, mips); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
