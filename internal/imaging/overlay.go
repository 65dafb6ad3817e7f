package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayLine is one annotation drawn by DrawOverlay, in source pixel
// coordinates.
type OverlayLine struct {
	X0, Y0 int
	X1, Y1 int
	Color  color.RGBA
	Label  string // drawn next to the midpoint; empty for none
}

// DrawOverlay renders lines over img for visual inspection of detection
// results. The sprite is scaled up by an integer factor with nearest
// neighbour sampling so thin edges stay visible, then composited over a
// dark background so transparent areas read as such.
//
// scale < 1 is treated as 1.
func DrawOverlay(img *image.NRGBA, lines []OverlayLine, scale int) *image.NRGBA {
	if scale < 1 {
		scale = 1
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	base := imaging.New(w*scale, h*scale, color.NRGBA{32, 32, 32, 255})
	if w > 0 && h > 0 {
		scaled := imaging.Resize(img, w*scale, h*scale, imaging.NearestNeighbor)
		base = imaging.Overlay(base, scaled, image.Point{}, 1.0)
	}

	for _, l := range lines {
		drawLine(base, l.X0*scale+scale/2, l.Y0*scale+scale/2, l.X1*scale+scale/2, l.Y1*scale+scale/2, l.Color)
	}
	for _, l := range lines {
		if l.Label == "" {
			continue
		}
		mx := (l.X0+l.X1)*scale/2 + scale
		my := (l.Y0+l.Y1)*scale/2 + scale
		drawLabel(base, mx, my, l.Label, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
	}
	return base
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length %d, want 6 or 8 digits", len(hex))
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLine plots a Bresenham line, clipped to the image.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	b := img.Bounds()
	for {
		if image.Pt(x0, y0).In(b) {
			img.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawLabel draws text with its top-left corner at (x, y) on a filled box.
// Labels running off the image are clipped.
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.RGBA) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	box := image.Rect(x-1, y-1, x+width+1, y+face.Height+1)
	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
