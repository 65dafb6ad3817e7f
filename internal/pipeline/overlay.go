package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/true-iso/internal/detection"
	"github.com/ironsheep/true-iso/internal/imaging"
)

// OverlayColors picks the colour of each segment class in an overlay.
type OverlayColors struct {
	Left    color.RGBA
	Right   color.RGBA
	Ignored color.RGBA
}

// DefaultOverlayColors draws left edges red, right edges blue and
// unclassified segments grey.
var DefaultOverlayColors = OverlayColors{
	Left:    color.RGBA{255, 64, 64, 255},
	Right:   color.RGBA{64, 128, 255, 255},
	Ignored: color.RGBA{160, 160, 160, 255},
}

// overlayTarget is the longest side an overlay is scaled up towards.
const overlayTarget = 512

// Overlay renders the detected segments over the cropped input. Classified
// segments carry their angle as a label.
func (r *Result) Overlay(colors OverlayColors) *image.NRGBA {
	if r.Cropped == nil {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}

	lines := make([]imaging.OverlayLine, 0, len(r.Segments))
	for _, s := range r.Segments {
		line := imaging.OverlayLine{
			X0: s.Start.X, Y0: s.Start.Y,
			X1: s.End.X, Y1: s.End.Y,
			Color: colors.Ignored,
		}
		if class, ok := detection.Classify(s.AngleDegrees); ok {
			line.Color = colors.Left
			if class == detection.Right {
				line.Color = colors.Right
			}
			line.Label = fmt.Sprintf("%.1f", s.AngleDegrees)
		}
		lines = append(lines, line)
	}

	longest := max(r.Cropped.Bounds().Dx(), r.Cropped.Bounds().Dy())
	scale := 1
	if longest > 0 {
		scale = max(1, overlayTarget/longest)
	}
	return imaging.DrawOverlay(r.Cropped, lines, scale)
}
