package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultAlphaThreshold is the minimum alpha (0-255) for a pixel to count as
// sprite content. Anti-aliased fringes below it are treated as background.
const DefaultAlphaThreshold uint8 = 10

// BoundingBox is an inclusive pixel rectangle.
//
// Unlike image.Rectangle, MaxX and MaxY are the coordinates of the last
// content column and row, so a single pixel at (3,4) has MinX == MaxX == 3.
type BoundingBox struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width returns the number of columns covered by the box.
func (b BoundingBox) Width() int { return b.MaxX - b.MinX + 1 }

// Height returns the number of rows covered by the box.
func (b BoundingBox) Height() int { return b.MaxY - b.MinY + 1 }

// Rect converts the box to a half-open image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX+1, b.MaxY+1)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d) %dx%d", b.MinX, b.MinY, b.MaxX, b.MaxY, b.Width(), b.Height())
}

// EmptyImageError reports that no pixel reached the content alpha threshold.
type EmptyImageError struct {
	Width          int
	Height         int
	AlphaThreshold uint8
}

func (e *EmptyImageError) Error() string {
	return fmt.Sprintf("no sprite content in %dx%d image: every pixel has alpha below %d",
		e.Width, e.Height, e.AlphaThreshold)
}

// FindContentBounds returns the tight bounding box of all pixels whose alpha
// is at least alphaThreshold.
//
// Coordinates in the returned box are relative to img.Bounds().Min, so the
// box can be used directly on images whose origin is not (0,0).
//
// # Errors
//
//   - *EmptyImageError if no pixel qualifies (including zero-sized images)
func FindContentBounds(img *image.NRGBA, alphaThreshold uint8) (BoundingBox, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	minX, minY := width, height
	maxX, maxY := -1, -1

	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			if row[x*4+3] < alphaThreshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}

	if maxX < 0 {
		return BoundingBox{}, &EmptyImageError{Width: width, Height: height, AlphaThreshold: alphaThreshold}
	}
	return BoundingBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// CropToContent extracts the content bounding box of img into a new buffer
// whose origin is (0,0). The input is not modified.
func CropToContent(img *image.NRGBA, alphaThreshold uint8) (*image.NRGBA, BoundingBox, error) {
	box, err := FindContentBounds(img, alphaThreshold)
	if err != nil {
		return nil, BoundingBox{}, err
	}
	rect := box.Rect().Add(img.Bounds().Min)
	return imaging.Crop(img, rect), box, nil
}

// Pad returns a copy of img centred on a transparent canvas that is n pixels
// larger on every side.
func Pad(img *image.NRGBA, n int) *image.NRGBA {
	if n <= 0 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*n, b.Dy()+2*n, color.NRGBA{})
	return imaging.Paste(canvas, img, image.Pt(n, n))
}
