package geometry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		left, right float64
		wantApply   bool
	}{
		{"exact", -26.565, 26.565, false},
		{"inside tolerance", -25.0, 28.0, false},
		{"just inside tolerance", -24.6, 28.5, false},
		{"left outside", -20, 26.5, true},
		{"right outside", -26.5, 30, true},
		{"both outside", -20, 30, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.left, tt.right, DefaultRatio, DefaultTolerance)
			assert.Equal(t, tt.wantApply, d.Apply)
			assert.Equal(t, tt.left, d.DetectedLeft)
			assert.Equal(t, tt.right, d.DetectedRight)
			assert.InDelta(t, -26.565, d.TargetLeft, 1e-3)
			assert.InDelta(t, 26.565, d.TargetRight, 1e-3)
		})
	}
}

func TestDecide_Deviation(t *testing.T) {
	d := Decide(-20, 30, DefaultRatio, DefaultTolerance)

	assert.InDelta(t, 6.565, d.LeftDeviation(), 1e-3)
	assert.InDelta(t, 3.435, d.RightDeviation(), 1e-3)
}

func TestDecide_ZeroTolerance(t *testing.T) {
	left, right := DefaultRatio.Targets()

	assert.False(t, Decide(left, right, DefaultRatio, 0).Apply)
	assert.True(t, Decide(left+0.01, right, DefaultRatio, 0).Apply)
}

func TestDecision_String(t *testing.T) {
	apply := Decide(-20, 30, DefaultRatio, DefaultTolerance).String()
	assert.True(t, strings.Contains(apply, "correction required"), apply)

	skip := Decide(-26.5, 26.5, DefaultRatio, DefaultTolerance).String()
	assert.True(t, strings.Contains(skip, "no correction"), skip)
}
