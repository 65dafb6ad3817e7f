package detection

import (
	"fmt"
	"sort"
)

// AngleClass identifies one of the two isometric projection axes.
type AngleClass int

const (
	// Left covers edges rising to the right in image coordinates,
	// angles in [-60°, -15°).
	Left AngleClass = iota
	// Right covers edges falling to the right, angles in (15°, 60°].
	Right
)

func (c AngleClass) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("AngleClass(%d)", int(c))
	}
}

// Range returns the bounds of the class in degrees. Left is [lo, hi) and
// Right is (lo, hi].
func (c AngleClass) Range() (lo, hi float64) {
	if c == Left {
		return -60, -15
	}
	return 15, 60
}

// Classify assigns an angle to Left or Right. Angles outside both ranges
// (near-horizontal, near-vertical, or steeper than 60°) report false.
func Classify(angle float64) (AngleClass, bool) {
	switch {
	case angle >= -60 && angle < -15:
		return Left, true
	case angle > 15 && angle <= 60:
		return Right, true
	default:
		return 0, false
	}
}

// Estimate is the representative angle of one class.
type Estimate struct {
	Class        AngleClass
	AngleDegrees float64
	Segments     int     // number of segments in the class
	Weight       float64 // total length of those segments
}

// Angles holds the estimate for both axes.
type Angles struct {
	Left  Estimate
	Right Estimate
}

// InsufficientEdgesError reports that no segment fell into a class.
type InsufficientEdgesError struct {
	Class      AngleClass
	Candidates int // segments examined
}

func (e *InsufficientEdgesError) Error() string {
	lo, hi := e.Class.Range()
	return fmt.Sprintf("no %s-sloping edges found: none of %d detected line(s) lies between %.0f° and %.0f°",
		e.Class, e.Candidates, lo, hi)
}

// Partition splits segments by class, dropping unclassified ones.
func Partition(segments []Segment) (left, right []Segment) {
	for _, s := range segments {
		class, ok := Classify(s.AngleDegrees)
		if !ok {
			continue
		}
		if class == Left {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

// WeightedMedian returns the length-weighted median angle of segments:
// segments are sorted by angle and the first angle at which the cumulative
// length reaches half the total is returned. Long structural edges therefore
// outvote any number of short noisy ones.
//
// It reports false for an empty input or one without positive weight.
// The input slice is not reordered.
func WeightedMedian(segments []Segment) (float64, bool) {
	var total float64
	for _, s := range segments {
		if s.Length > 0 {
			total += s.Length
		}
	}
	if total <= 0 {
		return 0, false
	}

	sorted := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.Length > 0 {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AngleDegrees < sorted[j].AngleDegrees
	})

	half := total / 2
	var cumulative float64
	for _, s := range sorted {
		cumulative += s.Length
		if cumulative >= half {
			return s.AngleDegrees, true
		}
	}
	// Unreachable with positive weights, kept for float rounding.
	return sorted[len(sorted)-1].AngleDegrees, true
}

// EstimateAngles reduces detected segments to one angle per axis.
//
// # Errors
//
//   - *InsufficientEdgesError naming the first class with no segments
func EstimateAngles(segments []Segment) (Angles, error) {
	left, right := Partition(segments)

	var angles Angles
	for _, c := range []struct {
		class AngleClass
		group []Segment
		dst   *Estimate
	}{
		{Left, left, &angles.Left},
		{Right, right, &angles.Right},
	} {
		median, ok := WeightedMedian(c.group)
		if !ok {
			return Angles{}, &InsufficientEdgesError{Class: c.class, Candidates: len(segments)}
		}
		var weight float64
		for _, s := range c.group {
			weight += s.Length
		}
		*c.dst = Estimate{
			Class:        c.class,
			AngleDegrees: median,
			Segments:     len(c.group),
			Weight:       weight,
		}
	}
	return angles, nil
}
