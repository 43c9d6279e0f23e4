// Command bumpbake bakes a tangent-space normal map, with optional
// gloss and height maps, into a "bump"/"bump#" DDS pair using the
// S.T.A.L.K.E.R. / Metro 2033 b375 channel convention.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/iorange/bumpbake/internal/imageio"
	"github.com/iorange/bumpbake/pkg/bc3"
	"github.com/iorange/bumpbake/pkg/bitmap"
	"github.com/iorange/bumpbake/pkg/bump"
	"github.com/iorange/bumpbake/pkg/pixel"
)

const version = "bumpbake v0.4"

const usage = `Usage: bumpbake -n:path_to_normalmap [-g:path_to_glossmap] [-h:path_to_heightmap] [-l:g] [-q:quality] [-o:output]

  -n:PATH   tangent-space normal map (required)
  -g:PATH   gloss map (optional)
  -h:PATH   height map (optional)
  -l:g      store gloss linearly instead of the default log curve
  -q:N      quality tier: 0 fast, 1 balanced, 2 best (default 2)
  -o:PATH   output stem; outputs are PATH_bump.dds and PATH_bump#.dds
  -preview  also write a PNG thumbnail of the decoded bump mip 0 next to the stem
  -v        print the version and exit
  -help     print this message
`

// exit codes: 0 success, 1 fatal pipeline error, 2 usage error.
const (
	exitOK = iota
	exitFatal
	exitUsage
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(argv) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}

	var paramN, paramG, paramH, paramO, paramL, paramQ string
	preview := false

	for i, arg := range argv {
		switch {
		case arg == "-help":
			fmt.Fprint(os.Stderr, usage)
			return exitOK
		case arg == "-v":
			fmt.Println(version)
			return exitOK
		case arg == "-preview":
			preview = true
		case len(arg) > 3 && arg[0] == '-' && arg[2] == ':':
			val := arg[3:]
			switch arg[1] {
			case 'n':
				paramN = val
			case 'g':
				paramG = val
			case 'h':
				paramH = val
			case 'o':
				paramO = val
			case 'l':
				paramL = val
			case 'q':
				paramQ = val
			default:
				log.Warn().Int("arg", i).Str("value", arg).Msg("unknown parameter")
			}
		default:
			log.Warn().Int("arg", i).Str("value", arg).Msg("unrecognized argument")
		}
	}

	if paramN == "" {
		fmt.Fprintln(os.Stderr, "no normal map provided, nothing to do")
		fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}

	linearGloss := strings.HasPrefix(paramL, "g")
	quality := 2
	if paramQ != "" {
		q, err := strconv.Atoi(paramQ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -q value %q\n", paramQ)
			return exitUsage
		}
		quality = q
	}
	tier := bc3.Tier(quality)
	log.Info().Int("quality", quality).Msg("using quality tier")

	outStem := paramO
	if outStem == "" {
		ext := filepath.Ext(paramN)
		outStem = strings.TrimSuffix(paramN, ext)
		log.Info().Str("stem", outStem).Msg("no output option provided, using source name")
	} else if info, err := os.Stat(outStem); err == nil && info.IsDir() {
		ext := filepath.Ext(paramN)
		outStem = filepath.Join(outStem, strings.TrimSuffix(filepath.Base(paramN), ext))
	}

	normal, err := imageio.Load(paramN)
	if err != nil {
		log.Error().Err(err).Msg("couldn't load normal map")
		return exitFatal
	}

	var gloss, height *bitmap.Bitmap[pixel.Pixel]
	if paramG != "" {
		g, err := imageio.Load(paramG)
		if err != nil {
			log.Warn().Err(err).Msg("couldn't load gloss map, omitting")
		} else {
			gloss = g
		}
	}
	if paramH != "" {
		h, err := imageio.Load(paramH)
		if err != nil {
			log.Warn().Err(err).Msg("couldn't load height map, using neutral default")
		} else {
			height = h
		}
	}

	in := bump.Inputs{Normal: normal, Gloss: gloss, Height: height}

	res, err := bump.Run(in, bump.Options{
		LinearGloss: linearGloss,
		Tier:        tier,
		Warn:        func(format string, args ...interface{}) { log.Warn().Msg(fmt.Sprintf(format, args...)) },
	})
	if err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		return exitFatal
	}

	bumpPath := outStem + "_bump.dds"
	residualPath := outStem + "_bump#.dds"

	if err := os.WriteFile(bumpPath, res.BumpDDS, 0o644); err != nil {
		log.Error().Err(err).Str("path", bumpPath).Msg("failed to write bump texture")
		return exitFatal
	}
	log.Info().Str("path", bumpPath).Msg("wrote bump texture")

	if err := os.WriteFile(residualPath, res.ResidualDDS, 0o644); err != nil {
		log.Error().Err(err).Str("path", residualPath).Msg("failed to write bump# texture")
		return exitFatal
	}
	log.Info().Str("path", residualPath).Msg("wrote bump# texture")

	if preview {
		if err := writePreviews(outStem, res); err != nil {
			log.Warn().Err(err).Msg("preview dump failed")
		}
	}

	return exitOK
}

// writePreviews decodes the assembled bump.dds mip 0 back to a raster
// and writes a thumbnail PNG next to the output stem, using
// golang.org/x/image/draw for the resize instead of hand-rolling one
// more scaler purely for this debug convenience.
func writePreviews(outStem string, res *bump.Result) error {
	payload := res.BumpDDS[128:]
	w := int(res.BumpDDS[16]) | int(res.BumpDDS[17])<<8 | int(res.BumpDDS[18])<<16 | int(res.BumpDDS[19])<<24
	h := int(res.BumpDDS[12]) | int(res.BumpDDS[13])<<8 | int(res.BumpDDS[14])<<16 | int(res.BumpDDS[15])<<24

	decoded := bc3.Decompress(payload[:(w/4)*(h/4)*16], uint32(w), uint32(h))
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := decoded.At(uint32(x), uint32(y))
			src.Set(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: p.A})
		}
	}

	thumbW, thumbH := w, h
	if thumbW > 256 {
		thumbH = thumbH * 256 / thumbW
		thumbW = 256
	}
	dst := image.NewRGBA(image.Rect(0, 0, thumbW, thumbH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(outStem + "_bump_preview.png")
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, dst)
}
