package bump

import (
	"math"
	"testing"

	"github.com/iorange/bumpbake/pkg/bc3"
	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/pixel"
)

func flat(w, h uint32, r, g, b, a uint8) *bitmap.Bitmap[pixel.Pixel] {
	bm := bitmap.New[pixel.Pixel](w, h)
	for i := range bm.Pixels() {
		bm.Pixels()[i] = pixel.NewRGBA(r, g, b, a)
	}
	return bm
}

func flatMono(w, h uint32, v uint8) *bitmap.Bitmap[pixel.Pixel] {
	bm := bitmap.New[pixel.Pixel](w, h)
	for i := range bm.Pixels() {
		bm.Pixels()[i] = pixel.NewMono(v)
	}
	return bm
}

func TestGlossCurve(t *testing.T) {
	if got := glossCurve(64, true); got != 64 {
		t.Errorf("linear gloss = %d, want 64", got)
	}
	want := uint8(math.Round(math.Sqrt(64.0/255) * 255))
	if got := glossCurve(64, false); got != want {
		t.Errorf("log gloss = %d, want %d", got, want)
	}
	if want != 128 {
		t.Fatalf("sanity: sqrt(64/255)*255 rounded should be 128, computed %d", want)
	}
}

func TestNeutralNormalAbsentGlossAbsentHeight(t *testing.T) {
	normal := flat(8, 8, 128, 128, 255, 0)
	res, err := Run(Inputs{Normal: normal}, Options{Tier: bc3.TierFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.BumpDDS) == 0 || len(res.ResidualDDS) == 0 {
		t.Fatal("expected non-empty DDS payloads")
	}

	payload := res.BumpDDS[128:]
	decoded := bc3.Decompress(payload[:8*8], 8, 8)
	p := decoded.At(0, 0)
	if p.A != 128 {
		t.Errorf("bump alpha (Nx) = %d, want 128", p.A)
	}
	if p.B != 128 {
		t.Errorf("bump blue (Ny) = %d, want 128", p.B)
	}
	// Nz=255 is not RGB565-representable (g6=63 expands back to 252, not
	// 255), so the decoded green channel lands one quantization step
	// below the idealized value.
	if p.G != 252 {
		t.Errorf("bump green (Nz) = %d, want 252", p.G)
	}

	resPayload := res.ResidualDDS[128:]
	resDecoded := bc3.Decompress(resPayload[:8*8], 8, 8)
	rp := resDecoded.At(0, 0)
	if rp.A != 128 {
		t.Errorf("residual alpha (synthesized height) = %d, want 128", rp.A)
	}
}

func TestLinearVsLogGloss(t *testing.T) {
	normal := flat(8, 8, 128, 128, 255, 0)
	gloss := flatMono(8, 8, 64)

	linear, err := Run(Inputs{Normal: normal, Gloss: gloss}, Options{Tier: bc3.TierFast, LinearGloss: true})
	if err != nil {
		t.Fatalf("Run(linear): %v", err)
	}
	log, err := Run(Inputs{Normal: normal, Gloss: gloss}, Options{Tier: bc3.TierFast, LinearGloss: false})
	if err != nil {
		t.Fatalf("Run(log): %v", err)
	}

	linearDecoded := bc3.Decompress(linear.BumpDDS[128:128+8*8], 8, 8)
	logDecoded := bc3.Decompress(log.BumpDDS[128:128+8*8], 8, 8)

	if got := linearDecoded.At(0, 0).R; got != 64 {
		t.Errorf("linear gloss bump red = %d, want 64", got)
	}
	if got := logDecoded.At(0, 0).R; got != 128 {
		t.Errorf("log gloss bump red = %d, want 128", got)
	}
}

func TestMipCountScenario(t *testing.T) {
	normal := flat(256, 128, 10, 20, 30, 40)
	res, err := Run(Inputs{Normal: normal}, Options{Tier: bc3.TierFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	mipMapCount := uint32(res.BumpDDS[28]) | uint32(res.BumpDDS[29])<<8 | uint32(res.BumpDDS[30])<<16 | uint32(res.BumpDDS[31])<<24
	if mipMapCount != 7 {
		t.Errorf("dwMipMapCount = %d, want 7", mipMapCount)
	}
}

func TestResidualFloorOnFlatBlock(t *testing.T) {
	// Nx=96 (5-bit fixed point), Ny=64 (5-bit fixed point), Nz=128
	// (6-bit fixed point): the assembled bump channels these map to
	// (alpha, blue, green respectively) all round-trip through BC3
	// exactly, so the residual floors to 128 on every channel with no
	// quantization error to account for.
	normal := flat(8, 8, 96, 64, 128, 255)
	res, err := Run(Inputs{Normal: normal}, Options{Tier: bc3.TierBest})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	decoded := bc3.Decompress(res.ResidualDDS[128:128+8*8], 8, 8)
	p := decoded.At(0, 0)
	if p.R != 128 || p.G != 128 || p.B != 128 {
		t.Errorf("residual RGB on an exactly-encodable flat block = %+v, want all 128", p)
	}
}

func TestBadNormalDimensionsIsFatal(t *testing.T) {
	normal := flat(100, 100, 1, 2, 3, 4)
	_, err := Run(Inputs{Normal: normal}, Options{Tier: bc3.TierFast})
	if err == nil {
		t.Fatal("expected a fatal error for non-power-of-two input")
	}
	var be *Error
	if !isErrorKind(err, &be) || be.Kind != InputInvalid {
		t.Errorf("expected InputInvalid, got %v", err)
	}
}

func TestMissingNormalMapIsFatal(t *testing.T) {
	_, err := Run(Inputs{}, Options{Tier: bc3.TierFast})
	var be *Error
	if !isErrorKind(err, &be) || be.Kind != InputMissing {
		t.Errorf("expected InputMissing, got %v", err)
	}
}

func TestMismatchedGlossWarnsAndIsIgnored(t *testing.T) {
	normal := flat(8, 8, 128, 128, 255, 0)
	gloss := flatMono(4, 4, 200)
	var warned bool
	_, err := Run(Inputs{Normal: normal, Gloss: gloss}, Options{
		Tier: bc3.TierFast,
		Warn: func(string, ...interface{}) { warned = true },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !warned {
		t.Error("expected a warning for size-mismatched gloss map")
	}
}

func TestDDSMagicBytes(t *testing.T) {
	normal := flat(8, 8, 1, 2, 3, 4)
	res, err := Run(Inputs{Normal: normal}, Options{Tier: bc3.TierFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, payload := range [][]byte{res.BumpDDS, res.ResidualDDS} {
		if string(payload[0:4]) != "DDS " {
			t.Errorf("magic = %q, want \"DDS \"", payload[0:4])
		}
		if string(payload[84:88]) != "DXT5" {
			t.Errorf("fourCC = %q, want \"DXT5\"", payload[84:88])
		}
	}
}

func isErrorKind(err error, target **Error) bool {
	be, ok := err.(*Error)
	if ok {
		*target = be
	}
	return ok
}
