// Package pipeline runs the full sprite correction: crop, detect, decide,
// warp and resize.
package pipeline

import (
	"fmt"
	"image"
	"io"
	"log"

	"github.com/ironsheep/true-iso/internal/detection"
	"github.com/ironsheep/true-iso/internal/geometry"
	"github.com/ironsheep/true-iso/internal/imaging"
)

// Options configures a Corrector. Start from DefaultOptions.
type Options struct {
	Ratio          geometry.IsoRatio
	Size           int     // longest side of the output, in pixels
	Margin         int     // transparent border kept inside Size
	Tolerance      float64 // degrees per axis left uncorrected
	AlphaThreshold uint8

	Edge  imaging.EdgeParams
	Lines detection.LineParams
	Warp  imaging.WarpParams

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns a 2:1 correction to 256 px.
func DefaultOptions() Options {
	return Options{
		Ratio:          geometry.DefaultRatio,
		Size:           256,
		Margin:         1,
		Tolerance:      geometry.DefaultTolerance,
		AlphaThreshold: imaging.DefaultAlphaThreshold,
		Edge:           imaging.DefaultEdgeParams(),
		Lines:          detection.DefaultLineParams(),
		Warp:           imaging.DefaultWarpParams(),
	}
}

// Result is everything a run produced.
type Result struct {
	Image    *image.NRGBA
	Decision geometry.Decision
	Angles   detection.Angles
	Segments []detection.Segment
	Bounds   imaging.BoundingBox // content box in the input image
	Cropped  *image.NRGBA        // input trimmed to Bounds plus cropPadding; edges and segments refer to it
	EdgeMap  *imaging.EdgeMap

	// Matrix is the linear correction; identity when Decision.Apply is false.
	Matrix geometry.Matrix2
	// Transform is the full forward warp including translation.
	Transform geometry.Affine
}

// cropPadding is the transparent border put back around the cropped sprite
// so that edge pixels on both sides of the silhouette are kept.
const cropPadding = 4

// Corrector corrects isometric sprites. It holds no per-image state and may
// be reused.
type Corrector struct {
	opts Options
	log  *log.Logger
}

// New validates opts and returns a Corrector.
func New(opts Options) (*Corrector, error) {
	if err := opts.Ratio.Validate(); err != nil {
		return nil, err
	}
	if opts.Size-2*opts.Margin < 1 {
		return nil, fmt.Errorf("output size %d leaves no room inside a %d px margin", opts.Size, opts.Margin)
	}
	if low, high := opts.Edge.ThresholdLow, opts.Edge.ThresholdHigh; low <= 0 || low > high {
		return nil, fmt.Errorf("edge thresholds must satisfy 0 < low <= high, got low %g, high %g", low, high)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Corrector{opts: opts, log: logger}, nil
}

// Run corrects img. The input is not modified.
//
// Errors are wrapped with the stage that failed; use errors.As to recover
// *imaging.EmptyImageError, *detection.InsufficientEdgesError or
// *geometry.DegenerateBasisError. Once the edge map exists, a failed run
// still returns the partial Result alongside the error.
func (c *Corrector) Run(img image.Image) (*Result, error) {
	src := imaging.ToNRGBA(img)
	res := &Result{Matrix: geometry.Identity2}

	cropped, box, err := imaging.CropToContent(src, c.opts.AlphaThreshold)
	if err != nil {
		return nil, fmt.Errorf("extract bounds: %w", err)
	}
	cropped = imaging.Pad(cropped, cropPadding)
	res.Bounds = box
	res.Cropped = cropped
	c.log.Printf("Sprite bounds: %v (input %dx%d)", box, src.Bounds().Dx(), src.Bounds().Dy())

	res.EdgeMap = imaging.BuildEdgeMap(cropped, c.opts.Edge)
	c.log.Printf("Edge map: %d edge pixels (thresholds %.0f/%.0f)",
		res.EdgeMap.Count(), c.opts.Edge.ThresholdLow, c.opts.Edge.ThresholdHigh)

	res.Segments = detection.DetectLines(res.EdgeMap, c.opts.Lines)
	c.log.Printf("Detected %d line segments", len(res.Segments))

	angles, err := detection.EstimateAngles(res.Segments)
	if err != nil {
		return res, fmt.Errorf("classify angles: %w", err)
	}
	res.Angles = angles
	c.log.Printf("Left angle: %.2f° from %d segment(s), weight %.0f",
		angles.Left.AngleDegrees, angles.Left.Segments, angles.Left.Weight)
	c.log.Printf("Right angle: %.2f° from %d segment(s), weight %.0f",
		angles.Right.AngleDegrees, angles.Right.Segments, angles.Right.Weight)

	res.Decision = geometry.Decide(angles.Left.AngleDegrees, angles.Right.AngleDegrees, c.opts.Ratio, c.opts.Tolerance)
	c.log.Printf("Decision: %v", res.Decision)

	corrected := cropped
	res.Transform = geometry.NewAffine(geometry.Identity2, 0, 0)
	if res.Decision.Apply {
		m, err := geometry.CorrectionMatrix(angles.Left.AngleDegrees, angles.Right.AngleDegrees, c.opts.Ratio)
		if err != nil {
			return res, fmt.Errorf("build correction: %w", err)
		}
		res.Matrix = m
		c.log.Printf("Correction matrix: %v", m)

		corrected, res.Transform, err = imaging.Warp(cropped, m, c.opts.Warp)
		if err != nil {
			return res, fmt.Errorf("resample: %w", err)
		}
		c.log.Printf("Transform: %dx%d -> %dx%d",
			cropped.Bounds().Dx(), cropped.Bounds().Dy(), corrected.Bounds().Dx(), corrected.Bounds().Dy())
	}

	trimmed, _, err := imaging.CropToContent(corrected, c.opts.AlphaThreshold)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	if trimmed.Bounds() != corrected.Bounds() {
		c.log.Printf("Cropped: %dx%d -> %dx%d",
			corrected.Bounds().Dx(), corrected.Bounds().Dy(), trimmed.Bounds().Dx(), trimmed.Bounds().Dy())
	}

	res.Image, err = imaging.ResizeToFit(trimmed, c.opts.Size, c.opts.Margin)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	c.log.Printf("Resized: %dx%d -> %dx%d (target %d)",
		trimmed.Bounds().Dx(), trimmed.Bounds().Dy(), res.Image.Bounds().Dx(), res.Image.Bounds().Dy(), c.opts.Size)

	return res, nil
}
