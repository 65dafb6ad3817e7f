package geometry

import (
	"fmt"
	"math"
)

// DefaultTolerance is the largest per-axis deviation, in degrees, that is
// left uncorrected.
const DefaultTolerance = 2.0

// Decision records whether a sprite needs correcting and why.
type Decision struct {
	Apply         bool
	DetectedLeft  float64
	DetectedRight float64
	TargetLeft    float64
	TargetRight   float64
	Tolerance     float64
}

// Decide compares detected axis angles with the targets of ratio. Apply is
// false only when both axes are within tolerance degrees of their target.
func Decide(left, right float64, ratio IsoRatio, tolerance float64) Decision {
	tl, tr := ratio.Targets()
	d := Decision{
		DetectedLeft:  left,
		DetectedRight: right,
		TargetLeft:    tl,
		TargetRight:   tr,
		Tolerance:     tolerance,
	}
	d.Apply = math.Abs(d.LeftDeviation()) > tolerance || math.Abs(d.RightDeviation()) > tolerance
	return d
}

// LeftDeviation is DetectedLeft - TargetLeft.
func (d Decision) LeftDeviation() float64 { return d.DetectedLeft - d.TargetLeft }

// RightDeviation is DetectedRight - TargetRight.
func (d Decision) RightDeviation() float64 { return d.DetectedRight - d.TargetRight }

func (d Decision) String() string {
	verdict := "within tolerance, no correction"
	if d.Apply {
		verdict = "correction required"
	}
	return fmt.Sprintf("left %.2f° (target %.3f°, Δ %+.2f°), right %.2f° (target %.3f°, Δ %+.2f°): %s",
		d.DetectedLeft, d.TargetLeft, d.LeftDeviation(),
		d.DetectedRight, d.TargetRight, d.RightDeviation(), verdict)
}
