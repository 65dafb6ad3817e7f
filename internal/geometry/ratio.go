package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IsoRatio is a horizontal:vertical pixel ratio, e.g. 2:1 for classic
// isometric pixel art.
type IsoRatio struct {
	Horizontal uint32
	Vertical   uint32
}

// DefaultRatio is the 2:1 ratio used by most isometric tile sets.
var DefaultRatio = IsoRatio{Horizontal: 2, Vertical: 1}

// TargetAngle returns atan(V/H) in degrees. For 2:1 this is about 26.565°.
func (r IsoRatio) TargetAngle() float64 {
	return math.Atan(float64(r.Vertical)/float64(r.Horizontal)) * rad2Deg
}

// Targets returns the signed (left, right) axis angles for this ratio.
func (r IsoRatio) Targets() (left, right float64) {
	a := r.TargetAngle()
	return -a, a
}

func (r IsoRatio) String() string {
	return fmt.Sprintf("%d:%d", r.Horizontal, r.Vertical)
}

// Validate reports whether both components are positive.
func (r IsoRatio) Validate() error {
	if r.Horizontal == 0 || r.Vertical == 0 {
		return &InvalidRatioError{Input: r.String(), Reason: "values must be greater than zero"}
	}
	return nil
}

// InvalidRatioError reports a malformed or zero-valued ratio.
type InvalidRatioError struct {
	Input  string
	Reason string
}

func (e *InvalidRatioError) Error() string {
	return fmt.Sprintf("invalid ratio %q: %s", e.Input, e.Reason)
}

// ParseRatio parses "H:V" where both parts are positive integers.
func ParseRatio(s string) (IsoRatio, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return IsoRatio{}, &InvalidRatioError{Input: s, Reason: "expected H:V, e.g. 2:1"}
	}

	h, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return IsoRatio{}, &InvalidRatioError{Input: s, Reason: fmt.Sprintf("horizontal value %q is not a positive integer", parts[0])}
	}
	v, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return IsoRatio{}, &InvalidRatioError{Input: s, Reason: fmt.Sprintf("vertical value %q is not a positive integer", parts[1])}
	}

	r := IsoRatio{Horizontal: uint32(h), Vertical: uint32(v)}
	if err := r.Validate(); err != nil {
		return IsoRatio{}, &InvalidRatioError{Input: s, Reason: "values must be greater than zero"}
	}
	return r, nil
}
