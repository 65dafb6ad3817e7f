package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ResizeToFit scales img so that its longer side equals size-2*margin and
// centres it on a transparent canvas whose longer side is exactly size.
// The aspect ratio is preserved up to rounding of the shorter side.
//
// Scaling uses the Catmull-Rom filter of github.com/disintegration/imaging,
// which weights every tap by its alpha (premultiplied resampling), so the
// colour of transparent pixels does not leak into the edges of the sprite.
// The margin keeps every border pixel of the result transparent.
//
// # Errors
//
//   - size must leave at least one pixel after subtracting both margins
//   - img must not be empty
func ResizeToFit(img *image.NRGBA, size, margin int) (*image.NRGBA, error) {
	if margin < 0 {
		return nil, fmt.Errorf("margin must not be negative, got %d", margin)
	}
	inner := size - 2*margin
	if inner < 1 {
		return nil, fmt.Errorf("output size %d is too small for a %d px margin", size, margin)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("cannot resize an empty %dx%d image", width, height)
	}

	scale := float64(inner) / float64(max(width, height))
	newWidth := max(1, int(math.Round(float64(width)*scale)))
	newHeight := max(1, int(math.Round(float64(height)*scale)))
	if width >= height {
		newWidth = inner
	} else {
		newHeight = inner
	}

	resized := imaging.Resize(img, newWidth, newHeight, imaging.CatmullRom)
	if margin == 0 {
		return resized, nil
	}

	canvas := imaging.New(newWidth+2*margin, newHeight+2*margin, color.NRGBA{})
	return imaging.Paste(canvas, resized, image.Pt(margin, margin)), nil
}
