// Package bump implements the bump/bump# texture-baking pipeline: the
// channel assembler, the residual assembler, and the driver that
// orchestrates them with the mipchain and bc3 packages.
package bump

import (
	"fmt"

	"github.com/iorange/bumpbake/pkg/bc3"
	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/dds"
	"github.com/iorange/bumpbake/pkg/mipchain"
	"github.com/iorange/bumpbake/pkg/pixel"
	"github.com/iorange/bumpbake/pkg/texture"
)

// Inputs holds the already-decoded raster inputs to one pipeline run.
// Gloss and Height may be nil: the driver treats a nil or
// dimension-mismatched auxiliary map as absent.
type Inputs struct {
	Normal *bitmap.Bitmap[pixel.Pixel]
	Gloss  *bitmap.Bitmap[pixel.Pixel]
	Height *bitmap.Bitmap[pixel.Pixel]
}

// Options configures one pipeline run.
type Options struct {
	LinearGloss bool
	Tier        bc3.Tier
	// Warn receives a formatted message for every recoverable
	// (AuxiliaryMissing) condition. May be nil.
	Warn func(format string, args ...interface{})
}

// Result holds the two encoded DDS files a successful run produces.
type Result struct {
	BumpDDS     []byte
	ResidualDDS []byte
}

func (o Options) warn(format string, args ...interface{}) {
	if o.Warn != nil {
		o.Warn(format, args...)
	}
}

// Run executes the fixed nine-step pipeline: validate, load/synthesize
// auxiliary maps, build mipchains, assemble the bump texture, encode
// it, assemble the residual texture from the encoded bump, encode
// that, and write both DDS payloads.
func Run(in Inputs, opts Options) (*Result, error) {
	normal := in.Normal
	if normal == nil {
		return nil, newError(InputMissing, "load normal map", nil)
	}
	w, h := normal.Width(), normal.Height()
	if !bitmap.IsPowerOfTwo(w, h) {
		return nil, newError(InputInvalid, "validate normal map", fmt.Errorf("%dx%d is not power-of-two", w, h))
	}

	gloss := in.Gloss
	if gloss != nil && (gloss.Width() != w || gloss.Height() != h) {
		opts.warn("gloss map %dx%d does not match normal map %dx%d, ignoring", gloss.Width(), gloss.Height(), w, h)
		gloss = nil
	}

	height := in.Height
	if height != nil && (height.Width() != w || height.Height() != h) {
		opts.warn("height map %dx%d does not match normal map %dx%d, synthesizing neutral", height.Width(), height.Height(), w, h)
		height = nil
	}
	if height == nil {
		opts.warn("no height map supplied, synthesizing neutral")
		height = neutralHeight(w, h)
	}

	normalTex := texture.New[pixel.Pixel](w, h)
	normalTex.SetMip0(normal)
	mipchain.BuildMipchain(normalTex, true)

	var glossTex *texture.Texture[pixel.Pixel]
	if gloss != nil {
		glossTex = texture.New[pixel.Pixel](w, h)
		glossTex.SetMip0(gloss)
		mipchain.BuildMipchain(glossTex, false)
	}

	heightTex := texture.New[pixel.Pixel](w, h)
	heightTex.SetMip0(height)
	mipchain.BuildMipchain(heightTex, false)

	AssembleBump(normalTex, glossTex, opts.LinearGloss)

	bumpPayloads := encodeMips(normalTex, opts.Tier)

	residualTex := AssembleResidual(normalTex, bumpPayloads, heightTex)
	residualPayloads := encodeMips(residualTex, opts.Tier)

	bumpDDS, err := dds.EncodeBC3(w, h, bumpPayloads)
	if err != nil {
		return nil, newError(OutputFailure, "encode bump dds", err)
	}
	residualDDS, err := dds.EncodeBC3(w, h, residualPayloads)
	if err != nil {
		return nil, newError(OutputFailure, "encode bump# dds", err)
	}

	return &Result{BumpDDS: bumpDDS, ResidualDDS: residualDDS}, nil
}

func neutralHeight(w, h uint32) *bitmap.Bitmap[pixel.Pixel] {
	bm := bitmap.New[pixel.Pixel](w, h)
	for i := range bm.Pixels() {
		bm.Pixels()[i] = pixel.NewMono(128)
	}
	return bm
}

func encodeMips(tex *texture.Texture[pixel.Pixel], tier bc3.Tier) [][]byte {
	payloads := make([][]byte, tex.Len())
	for i := 0; i < tex.Len(); i++ {
		payloads[i] = bc3.EncodeBitmap(tex.Mip(i), tier)
	}
	return payloads
}
