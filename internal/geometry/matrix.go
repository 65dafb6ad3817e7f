package geometry

import (
	"errors"
	"fmt"
	"math"
)

const (
	deg2Rad = math.Pi / 180
	rad2Deg = 180 / math.Pi
)

// DegenerateEpsilon is the smallest |det| accepted for a basis matrix.
// Two unit columns closer than about 0.00006° to each other fall below it.
const DegenerateEpsilon = 1e-6

// Matrix2 is a row-major 2×2 matrix:
//
//	| A B |
//	| C D |
type Matrix2 struct {
	A, B float64
	C, D float64
}

// Identity2 is the 2×2 identity.
var Identity2 = Matrix2{A: 1, D: 1}

// Det returns the determinant.
func (m Matrix2) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// Mul returns m · n.
func (m Matrix2) Mul(n Matrix2) Matrix2 {
	return Matrix2{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
	}
}

// Apply returns m · (x, y).
func (m Matrix2) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y, m.C*x + m.D*y
}

// Inverse returns the closed-form inverse. A determinant with magnitude below
// DegenerateEpsilon yields ErrSingular.
func (m Matrix2) Inverse() (Matrix2, error) {
	det := m.Det()
	if math.Abs(det) < DegenerateEpsilon || math.IsNaN(det) {
		return Matrix2{}, ErrSingular
	}
	inv := 1 / det
	return Matrix2{
		A: m.D * inv, B: -m.B * inv,
		C: -m.C * inv, D: m.A * inv,
	}, nil
}

func (m Matrix2) String() string {
	return fmt.Sprintf("[%8.4f %8.4f; %8.4f %8.4f]", m.A, m.B, m.C, m.D)
}

// ErrSingular is returned when a matrix cannot be inverted.
var ErrSingular = errors.New("matrix is singular")

// Basis builds the matrix whose columns are unit vectors at leftDeg and
// rightDeg from the +X axis.
func Basis(leftDeg, rightDeg float64) Matrix2 {
	l := leftDeg * deg2Rad
	r := rightDeg * deg2Rad
	return Matrix2{
		A: math.Cos(l), B: math.Cos(r),
		C: math.Sin(l), D: math.Sin(r),
	}
}

// DegenerateBasisError reports detected axes that do not span the plane,
// which means detection picked the same direction for both axes.
type DegenerateBasisError struct {
	Left  float64
	Right float64
	Det   float64
}

func (e *DegenerateBasisError) Error() string {
	return fmt.Sprintf("degenerate basis: left %.3f° and right %.3f° are (nearly) parallel, |det| = %.2e",
		e.Left, e.Right, math.Abs(e.Det))
}

// CorrectionMatrix returns M = B_target · B_current⁻¹, the linear map taking
// the detected left/right axes onto the target axes of ratio.
//
// # Errors
//
//   - *DegenerateBasisError when the detected axes are parallel
//   - *InvalidRatioError when ratio has a zero component
func CorrectionMatrix(left, right float64, ratio IsoRatio) (Matrix2, error) {
	if err := ratio.Validate(); err != nil {
		return Matrix2{}, err
	}
	current := Basis(left, right)
	inv, err := current.Inverse()
	if err != nil {
		return Matrix2{}, &DegenerateBasisError{Left: left, Right: right, Det: current.Det()}
	}
	tl, tr := ratio.Targets()
	return Basis(tl, tr).Mul(inv), nil
}

// MapAngle returns the angle, in degrees normalised to (-90, 90], of the
// direction at deg after applying m.
func MapAngle(m Matrix2, deg float64) float64 {
	x, y := m.Apply(math.Cos(deg*deg2Rad), math.Sin(deg*deg2Rad))
	return NormalizeAngle(math.Atan2(y, x) * rad2Deg)
}

// NormalizeAngle folds a line direction in degrees into (-90, 90].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 180)
	if deg <= -90 {
		deg += 180
	} else if deg > 90 {
		deg -= 180
	}
	return deg
}
