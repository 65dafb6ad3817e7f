package geometry

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// Affine is a 2D affine transform stored as the top two rows of a 3×3
// matrix, in the layout used by golang.org/x/image/draw:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Affine struct {
	m f64.Aff3
}

// NewAffine combines a linear part with a translation.
func NewAffine(lin Matrix2, tx, ty float64) Affine {
	return Affine{m: f64.Aff3{lin.A, lin.B, tx, lin.C, lin.D, ty}}
}

// Aff3 returns the raw matrix.
func (a Affine) Aff3() f64.Aff3 { return a.m }

// Linear returns the 2×2 part of the transform.
func (a Affine) Linear() Matrix2 {
	return Matrix2{A: a.m[0], B: a.m[1], C: a.m[3], D: a.m[4]}
}

// Translation returns the offset added after the linear part.
func (a Affine) Translation() (tx, ty float64) { return a.m[2], a.m[5] }

// Apply maps the point (x, y).
func (a Affine) Apply(x, y float64) (float64, float64) {
	return a.m[0]*x + a.m[1]*y + a.m[2], a.m[3]*x + a.m[4]*y + a.m[5]
}

// Invert returns the inverse transform, or ErrSingular.
func (a Affine) Invert() (Affine, error) {
	inv, err := a.Linear().Inverse()
	if err != nil {
		return Affine{}, err
	}
	tx, ty := inv.Apply(-a.m[2], -a.m[5])
	return NewAffine(inv, tx, ty), nil
}

// FitCanvas returns the transform that applies lin to a width×height
// rectangle and translates the result so its bounding box starts at the
// origin, together with the canvas size that holds the whole result.
//
// The canvas is the ceiling of the transformed extent, so it never clips
// and adds at most one pixel of slack per axis.
func FitCanvas(lin Matrix2, width, height int) (Affine, image.Point) {
	w, h := float64(width), float64(height)
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := lin.Apply(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	// Snap away float noise so an identity map of 64 px stays 64 px wide.
	size := image.Point{
		X: int(math.Ceil(maxX - minX - 1e-9)),
		Y: int(math.Ceil(maxY - minY - 1e-9)),
	}
	if size.X < 1 {
		size.X = 1
	}
	if size.Y < 1 {
		size.Y = 1
	}
	// Centre the content inside the rounded-up canvas.
	tx := -minX + (float64(size.X)-(maxX-minX))/2
	ty := -minY + (float64(size.Y)-(maxY-minY))/2
	return NewAffine(lin, tx, ty), size
}
