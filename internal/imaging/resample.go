package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
	"github.com/ironsheep/true-iso/internal/geometry"
)

// WarpParams controls Warp.
type WarpParams struct {
	// Despeckle clears faint isolated pixels left by the bicubic kernel's
	// negative lobes after warping.
	Despeckle bool

	// DespeckleAlpha is the exclusive alpha limit below which a pixel is a
	// despeckle candidate.
	DespeckleAlpha uint8
}

// DefaultWarpParams returns the settings used by the command line tool.
func DefaultWarpParams() WarpParams {
	return WarpParams{Despeckle: true, DespeckleAlpha: 32}
}

// Warp applies the linear map lin to src and returns a new image on a
// canvas that exactly holds the transformed source rectangle, together with
// the full forward transform (linear part plus the centring translation).
//
// Each destination pixel centre is mapped back into the source with the
// inverse transform and sampled with a Catmull-Rom bicubic kernel over a
// 4×4 neighbourhood. Interpolation runs on premultiplied colour so that the
// arbitrary RGB stored in transparent pixels never bleeds into the sprite;
// taps that fall outside the source are fully transparent.
//
// Rows are computed concurrently. src is only read.
//
// # Errors
//
// Returns an error wrapping geometry.ErrSingular when lin is not invertible.
func Warp(src *image.NRGBA, lin geometry.Matrix2, params WarpParams) (*image.NRGBA, geometry.Affine, error) {
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()

	forward, size := geometry.FitCanvas(lin, width, height)
	inverse, err := forward.Invert()
	if err != nil {
		return nil, geometry.Affine{}, fmt.Errorf("cannot invert correction %v: %w", lin, err)
	}

	pre := premultiply(src)
	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))

	parallel.Line(size.Y, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+size.X*4]
			for x := 0; x < size.X; x++ {
				sx, sy := inverse.Apply(float64(x)+0.5, float64(y)+0.5)
				// Continuous pixel centres sit at i+0.5.
				u, v := sx-0.5, sy-0.5
				if u < -2 || v < -2 || u > float64(width)+1 || v > float64(height)+1 {
					continue
				}
				sample := bicubic(pre, width, height, u, v)
				storeUnpremultiplied(row[x*4:x*4+4:x*4+4], sample)
			}
		}
	})

	if params.Despeckle {
		dst = Despeckle(dst, params.DespeckleAlpha)
	}
	return dst, forward, nil
}

// premultiply converts an NRGBA buffer into float RGBA in 0-1 with colour
// scaled by alpha.
func premultiply(img *image.NRGBA) []float64 {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	out := make([]float64, width*height*4)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			a := float64(p[3]) / 255
			i := (y*width + x) * 4
			out[i+0] = float64(p[0]) / 255 * a
			out[i+1] = float64(p[1]) / 255 * a
			out[i+2] = float64(p[2]) / 255 * a
			out[i+3] = a
		}
	}
	return out
}

// storeUnpremultiplied writes a premultiplied float sample as NRGBA.
// Colour is divided by the unclamped alpha so kernel overshoot cannot shift
// the hue; both are clamped only afterwards.
func storeUnpremultiplied(d []uint8, s [4]float64) {
	a := s[3]
	if a < 0.5/255 {
		d[0], d[1], d[2], d[3] = 0, 0, 0, 0
		return
	}
	for c := 0; c < 3; c++ {
		v := math.Min(math.Max(s[c]/a, 0), 1)
		d[c] = uint8(math.Round(v * 255))
	}
	d[3] = uint8(math.Round(math.Min(a, 1) * 255))
}

func cubicWeights(t float64) [4]float64 {
	t2 := t * t
	t3 := t2 * t
	return [4]float64{
		-0.5*t3 + t2 - 0.5*t,
		1.5*t3 - 2.5*t2 + 1,
		-1.5*t3 + 2*t2 + 0.5*t,
		0.5*t3 - 0.5*t2,
	}
}

// bicubic samples the premultiplied buffer at pixel-index coordinates
// (u, v). Taps outside the buffer contribute transparent black.
func bicubic(pre []float64, width, height int, u, v float64) [4]float64 {
	x0 := int(math.Floor(u))
	y0 := int(math.Floor(v))
	wx := cubicWeights(u - float64(x0))
	wy := cubicWeights(v - float64(y0))

	var out [4]float64
	for j := 0; j < 4; j++ {
		py := y0 + j - 1
		if py < 0 || py >= height || wy[j] == 0 {
			continue
		}
		for i := 0; i < 4; i++ {
			px := x0 + i - 1
			if px < 0 || px >= width || wx[i] == 0 {
				continue
			}
			w := wx[i] * wy[j]
			k := (py*width + px) * 4
			out[0] += pre[k+0] * w
			out[1] += pre[k+1] * w
			out[2] += pre[k+2] * w
			out[3] += pre[k+3] * w
		}
	}
	return out
}

// Despeckle returns a copy of img in which faint pixels (0 < alpha <
// maxAlpha) that have at least three fully transparent 4-neighbours are
// cleared. Neighbours outside the image count as transparent.
func Despeckle(img *image.NRGBA, maxAlpha uint8) *image.NRGBA {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	out := imaging.Clone(img)

	alphaAt := func(x, y int) uint8 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return img.Pix[y*img.Stride+x*4+3]
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := alphaAt(x, y)
			if a == 0 || a >= maxAlpha {
				continue
			}
			transparent := 0
			for _, n := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				if alphaAt(x+n[0], y+n[1]) == 0 {
					transparent++
				}
			}
			if transparent >= 3 {
				i := y*out.Stride + x*4
				out.Pix[i+0], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = 0, 0, 0, 0
			}
		}
	}
	return out
}
