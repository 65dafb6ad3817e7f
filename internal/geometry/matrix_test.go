package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatrixEqual(t *testing.T, want, got Matrix2, delta float64) {
	t.Helper()
	assert.InDelta(t, want.A, got.A, delta, "A")
	assert.InDelta(t, want.B, got.B, delta, "B")
	assert.InDelta(t, want.C, got.C, delta, "C")
	assert.InDelta(t, want.D, got.D, delta, "D")
}

func TestMatrix2_Inverse(t *testing.T) {
	m := Matrix2{A: 2, B: 1, C: -0.5, D: 3}

	inv, err := m.Inverse()
	require.NoError(t, err)
	assertMatrixEqual(t, Identity2, m.Mul(inv), 1e-12)
	assertMatrixEqual(t, Identity2, inv.Mul(m), 1e-12)
	assert.InDelta(t, 6.5, m.Det(), 1e-12)
}

func TestMatrix2_InverseSingular(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix2
	}{
		{"zero", Matrix2{}},
		{"parallel columns", Matrix2{A: 1, B: 2, C: 2, D: 4}},
		{"below epsilon", Matrix2{A: 1e-4, D: 1e-3}},
		{"nan", Matrix2{A: math.NaN(), D: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Inverse()
			assert.ErrorIs(t, err, ErrSingular)
		})
	}
}

func TestBasis(t *testing.T) {
	b := Basis(-26.565051177, 26.565051177)

	// Columns are unit vectors along each axis.
	assert.InDelta(t, 1, math.Hypot(b.A, b.C), 1e-12)
	assert.InDelta(t, 1, math.Hypot(b.B, b.D), 1e-12)
	assert.InDelta(t, 2/math.Sqrt(5), b.A, 1e-9)
	assert.InDelta(t, -1/math.Sqrt(5), b.C, 1e-9)
	assert.InDelta(t, 1/math.Sqrt(5), b.D, 1e-9)
}

func TestCorrectionMatrix_MapsDetectedOntoTarget(t *testing.T) {
	tests := []struct {
		name        string
		left, right float64
		ratio       IsoRatio
	}{
		{"steep left shallow right", -20, 30, DefaultRatio},
		{"both too shallow", -22, 22, DefaultRatio},
		{"both too steep", -35, 31, DefaultRatio},
		{"3:2 target", -28, 40, IsoRatio{3, 2}},
		{"1:1 target", -50, 41, IsoRatio{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := CorrectionMatrix(tt.left, tt.right, tt.ratio)
			require.NoError(t, err)

			targetLeft, targetRight := tt.ratio.Targets()
			assert.InDelta(t, targetLeft, MapAngle(m, tt.left), 0.01)
			assert.InDelta(t, targetRight, MapAngle(m, tt.right), 0.01)
		})
	}
}

func TestCorrectionMatrix_IdentityWhenAlreadyCorrect(t *testing.T) {
	left, right := DefaultRatio.Targets()

	m, err := CorrectionMatrix(left, right, DefaultRatio)
	require.NoError(t, err)
	assertMatrixEqual(t, Identity2, m, 1e-9)
}

func TestCorrectionMatrix_Degenerate(t *testing.T) {
	tests := []struct {
		name        string
		left, right float64
	}{
		{"identical", 30, 30},
		{"opposite directions", -30, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CorrectionMatrix(tt.left, tt.right, DefaultRatio)
			require.Error(t, err)

			var degenerate *DegenerateBasisError
			require.True(t, errors.As(err, &degenerate), "expected *DegenerateBasisError, got %T", err)
			assert.Equal(t, tt.left, degenerate.Left)
			assert.Equal(t, tt.right, degenerate.Right)
			assert.Less(t, math.Abs(degenerate.Det), DegenerateEpsilon)
		})
	}
}

func TestCorrectionMatrix_InvalidRatio(t *testing.T) {
	_, err := CorrectionMatrix(-20, 30, IsoRatio{0, 1})
	var invalid *InvalidRatioError
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{-90, 90},
		{91, -89},
		{180, 0},
		{-180, 0},
		{270, 90},
		{-26.5, -26.5},
		{153.5, -26.5},
		{-153.5, 26.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeAngle(tt.in), 1e-9, "NormalizeAngle(%v)", tt.in)
	}
}

func TestMapAngle_Identity(t *testing.T) {
	for _, a := range []float64{-60, -26.565, 0, 15, 45, 89} {
		assert.InDelta(t, a, MapAngle(Identity2, a), 1e-9)
	}
}
