package detection

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(angle, length float64) Segment {
	return Segment{AngleDegrees: angle, Length: length}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		angle  float64
		want   AngleClass
		wantOK bool
	}{
		{-60, Left, true},
		{-26.565, Left, true},
		{-15.001, Left, true},
		{-15, 0, false},
		{-60.01, 0, false},
		{0, 0, false},
		{15, 0, false},
		{15.001, Right, true},
		{26.565, Right, true},
		{60, Right, true},
		{60.01, 0, false},
		{90, 0, false},
	}

	for _, tt := range tests {
		got, ok := Classify(tt.angle)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Classify(%v) = %v, %v; want %v, %v", tt.angle, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPartition(t *testing.T) {
	segments := []Segment{seg(-26, 10), seg(0, 50), seg(27, 20), seg(90, 40), seg(-30, 5)}

	left, right := Partition(segments)
	assert.Equal(t, []Segment{seg(-26, 10), seg(-30, 5)}, left)
	assert.Equal(t, []Segment{seg(27, 20)}, right)
}

func TestWeightedMedian(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     float64
	}{
		{"single", []Segment{seg(-25, 3)}, -25},
		{"heavy middle", []Segment{seg(-30, 10), seg(-26, 100), seg(-20, 10)}, -26},
		{"long edge outvotes short noise", []Segment{
			seg(-20, 5), seg(-21, 5), seg(-19, 5), seg(-22, 5), seg(-18, 5), seg(-27, 30),
		}, -27},
		{"even split takes the lower", []Segment{seg(-20, 10), seg(-30, 10)}, -30},
		{"zero lengths ignored", []Segment{seg(-40, 0), seg(-25, 1)}, -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WeightedMedian(tt.segments)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeightedMedian_NoWeight(t *testing.T) {
	_, ok := WeightedMedian(nil)
	assert.False(t, ok)

	_, ok = WeightedMedian([]Segment{seg(-25, 0)})
	assert.False(t, ok)
}

func TestWeightedMedian_DoesNotReorder(t *testing.T) {
	segments := []Segment{seg(-20, 1), seg(-30, 1), seg(-25, 1)}
	_, _ = WeightedMedian(segments)
	assert.Equal(t, []Segment{seg(-20, 1), seg(-30, 1), seg(-25, 1)}, segments)
}

func TestEstimateAngles(t *testing.T) {
	segments := []Segment{
		seg(-26, 60), seg(-24, 10), seg(-27, 55),
		seg(25, 40), seg(31, 45),
		seg(0, 200), seg(90, 150),
	}

	angles, err := EstimateAngles(segments)
	require.NoError(t, err)

	assert.Equal(t, Estimate{Class: Left, AngleDegrees: -26, Segments: 3, Weight: 125}, angles.Left)
	assert.Equal(t, Estimate{Class: Right, AngleDegrees: 31, Segments: 2, Weight: 85}, angles.Right)
}

func TestEstimateAngles_InsufficientEdges(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     AngleClass
	}{
		{"nothing detected", nil, Left},
		{"only right", []Segment{seg(26, 40), seg(0, 10)}, Left},
		{"only left", []Segment{seg(-26, 40), seg(90, 10)}, Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateAngles(tt.segments)
			require.Error(t, err)

			var insufficient *InsufficientEdgesError
			require.True(t, errors.As(err, &insufficient), "expected *InsufficientEdgesError, got %T", err)
			assert.Equal(t, tt.want, insufficient.Class)
			assert.Equal(t, len(tt.segments), insufficient.Candidates)
			assert.True(t, strings.Contains(err.Error(), tt.want.String()), err.Error())
		})
	}
}

func TestAngleClass_String(t *testing.T) {
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "right", Right.String())
	assert.Equal(t, "AngleClass(7)", AngleClass(7).String())
}
