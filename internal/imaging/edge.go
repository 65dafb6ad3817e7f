package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/lucasb-eyer/go-colorful"
)

// LuminanceModel selects how a pixel's colour is reduced to a single
// intensity before edge detection.
type LuminanceModel int

const (
	// LumaBT601 uses ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
	LumaBT601 LuminanceModel = iota

	// LightnessLab uses CIE L* (perceptual lightness), which separates
	// dark hues that share a BT.601 luma.
	LightnessLab
)

func (m LuminanceModel) String() string {
	switch m {
	case LumaBT601:
		return "bt601"
	case LightnessLab:
		return "lab"
	default:
		return "unknown"
	}
}

// EdgeParams controls BuildEdgeMap.
type EdgeParams struct {
	// ThresholdLow and ThresholdHigh are the hysteresis thresholds on a 0-255
	// gradient scale. Gradients above ThresholdHigh are strong edges; those
	// between the two are kept only when touching a strong edge.
	ThresholdLow  float64
	ThresholdHigh float64

	// BlurRadius is the radius handed to the Gaussian pre-blur. Integer
	// values keep the kernel symmetric. Zero disables blurring.
	BlurRadius float64

	// Background is the intensity (0-1) that transparent pixels blend
	// towards. The default of 0 makes fully transparent pixels zero-signal.
	Background float64

	Luminance LuminanceModel
}

// DefaultEdgeParams returns the thresholds tuned for clean pixel-art sprites.
func DefaultEdgeParams() EdgeParams {
	return EdgeParams{
		ThresholdLow:  30,
		ThresholdHigh: 100,
		BlurRadius:    1,
		Background:    0,
		Luminance:     LumaBT601,
	}
}

// EdgeMap is a binary edge image. Pix is row-major with stride Width.
type EdgeMap struct {
	Width  int
	Height int
	Pix    []bool
}

// NewEdgeMap allocates an empty edge map.
func NewEdgeMap(width, height int) *EdgeMap {
	return &EdgeMap{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether (x, y) is an edge pixel. Out of range coordinates are
// never edges.
func (m *EdgeMap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as an edge pixel.
func (m *EdgeMap) Set(x, y int, v bool) {
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of edge pixels.
func (m *EdgeMap) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Image renders the map as grayscale: edges are white (255), the rest black.
func (m *EdgeMap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

// BuildEdgeMap performs alpha-masked Canny edge detection on a sprite.
//
// Each pixel is reduced to an intensity using params.Luminance and blended
// with params.Background by its alpha, so pixels outside the silhouette carry
// no signal of their own. Without the mask the colour stored in transparent
// pixels (often black or garbage) would create edges along the canvas
// rectangle and drown the projection angles in 0° and 90° lines.
//
// # Algorithm
//
//  1. Masked intensity: I = L(r,g,b)*a + Background*(1-a)
//  2. Gaussian blur (bild) with params.BlurRadius
//  3. Sobel gradients, magnitude = sqrt(Gx² + Gy²) scaled to 0-255 units
//  4. Non-maximum suppression along the quantised gradient direction
//  5. Double threshold and hysteresis: weak edges survive only when
//     8-connected (transitively) to a strong edge
func BuildEdgeMap(img *image.NRGBA, params EdgeParams) *EdgeMap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	edges := NewEdgeMap(width, height)
	if width == 0 || height == 0 {
		return edges
	}

	// Content may touch the buffer edge, as it does after CropToContent.
	// Everything beyond the buffer reads as Background, so the detector
	// runs on a plane padded wide enough for the blur and Sobel taps.
	pad := int(math.Ceil(params.BlurRadius)) + 2
	pw, ph := width+2*pad, height+2*pad

	signal := maskedIntensity(img, params, pad)
	if params.BlurRadius > 0 {
		signal = blurIntensity(signal, pw, ph, params.BlurRadius)
	}

	magnitude := make([]float64, pw*ph)
	direction := make([]float64, pw*ph)
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := signal[clamp(y+ky, 0, ph-1)*pw+clamp(x+kx, 0, pw-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			// Sobel on a 0-1 signal peaks at 4 for a full step.
			magnitude[y*pw+x] = math.Sqrt(gx*gx+gy*gy) * 255 / 4
			direction[y*pw+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := nonMaxSuppress(magnitude, direction, pw, ph)
	padded := NewEdgeMap(pw, ph)
	hysteresis(padded, suppressed, params.ThresholdLow, params.ThresholdHigh)

	for y := 0; y < height; y++ {
		copy(edges.Pix[y*width:(y+1)*width], padded.Pix[(y+pad)*pw+pad:(y+pad)*pw+pad+width])
	}
	return edges
}

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// maskedIntensity returns the alpha-blended intensity of every pixel in the
// range 0-1, surrounded by pad pixels of params.Background.
func maskedIntensity(img *image.NRGBA, params EdgeParams, pad int) []float64 {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	pw := width + 2*pad
	out := make([]float64, pw*(height+2*pad))
	for i := range out {
		out[i] = params.Background
	}
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		base := (y+pad)*pw + pad
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			a := float64(p[3]) / 255
			if a == 0 {
				continue
			}
			l := luminance(p[0], p[1], p[2], params.Luminance)
			out[base+x] = l*a + params.Background*(1-a)
		}
	}
	return out
}

func luminance(r, g, b uint8, model LuminanceModel) float64 {
	if model == LightnessLab {
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		l, _, _ := c.Lab()
		return math.Min(math.Max(l, 0), 1)
	}
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

// blurIntensity runs the bild Gaussian blur over an intensity plane.
func blurIntensity(signal []float64, width, height int, radius float64) []float64 {
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for i, v := range signal {
		gray.Pix[i] = uint8(math.Round(math.Min(math.Max(v, 0), 1) * 255))
	}
	blurred := blur.Gaussian(gray, radius)

	out := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y*width+x] = float64(blurred.Pix[y*blurred.Stride+x*4]) / 255
		}
	}
	return out
}

// nonMaxSuppress keeps only gradient magnitudes that are local maxima along
// the gradient direction. The outermost ring is suppressed; BuildEdgeMap
// keeps it inside the padding.
func nonMaxSuppress(magnitude, direction []float64, width, height int) []float64 {
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := direction[i]
			mag := magnitude[i]
			if mag == 0 {
				continue
			}

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[i-1], magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[i-width-1], magnitude[i+width+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[i-width], magnitude[i+width]
			default:
				n1, n2 = magnitude[i-width+1], magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}
	return suppressed
}

// hysteresis marks strong edges and grows them through connected weak edges.
func hysteresis(edges *EdgeMap, suppressed []float64, low, high float64) {
	width, height := edges.Width, edges.Height
	stack := make([]int, 0, 64)
	for i, v := range suppressed {
		if v >= high && !edges.Pix[i] {
			edges.Pix[i] = true
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				nx, ny := x+kx, y+ky
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if !edges.Pix[j] && suppressed[j] >= low {
					edges.Pix[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
