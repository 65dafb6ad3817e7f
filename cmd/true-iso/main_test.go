package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/true-iso/internal/detection"
	"github.com/ironsheep/true-iso/internal/geometry"
	"github.com/ironsheep/true-iso/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSkewedSprite saves a parallelogram with edges at -20° and +30° and
// returns its path.
func writeSkewedSprite(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	u := [2]float64{30 * math.Cos(-20*math.Pi/180), 30 * math.Sin(-20*math.Pi/180)}
	v := [2]float64{30 * math.Cos(30*math.Pi/180), 30 * math.Sin(30*math.Pi/180)}
	det := u[0]*v[1] - u[1]*v[0]
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			px, py := float64(x)+0.5-5, float64(y)+0.5-25
			s := (px*v[1] - py*v[0]) / det
			r := (u[0]*py - u[1]*px) / det
			if s >= 0 && s <= 1 && r >= 0 && r <= 1 {
				img.SetNRGBA(x, y, color.NRGBA{200, 180, 120, 255})
			}
		}
	}

	path := filepath.Join(dir, "tile.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func execute(args ...string) (stdout, stderr string, err error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_CorrectsSprite(t *testing.T) {
	dir := t.TempDir()
	input := writeSkewedSprite(t, dir)
	output := filepath.Join(dir, "out.png")
	edges := filepath.Join(dir, "edges.png")
	overlay := filepath.Join(dir, "overlay.png")

	stdout, stderr, err := execute(input, "-o", output, "-s", "64", "--verbose",
		"--edges", edges, "--overlay", overlay)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Saved corrected image: "+output)
	assert.Contains(t, stdout, "Detected angles:")
	assert.Contains(t, stderr, "Loaded image:")
	assert.Contains(t, stderr, "Decision:")

	img, err := imaging.Load(output)
	require.NoError(t, err)
	assert.Equal(t, 64, max(img.Bounds().Dx(), img.Bounds().Dy()))

	for _, p := range []string{edges, overlay} {
		_, err := os.Stat(p)
		assert.NoError(t, err, "diagnostic %s", p)
	}
}

func TestRootCmd_DefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := writeSkewedSprite(t, dir)

	_, _, err := execute(input, "--size", "32")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "tile_corrected.png"))
	assert.NoError(t, err)
}

func TestRootCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeSkewedSprite(t, dir)

	tests := []struct {
		name   string
		args   []string
		target any
	}{
		{"bad ratio", []string{input, "-r", "2-1"}, new(*geometry.InvalidRatioError)},
		{"zero ratio", []string{input, "-r", "0:1"}, new(*geometry.InvalidRatioError)},
		{"missing input", []string{filepath.Join(dir, "missing.png")}, new(*imaging.CodecError)},
		{"unreachable edge thresholds", []string{input, "--canny-low", "900", "--canny-high", "900"}, new(*detection.InsufficientEdgesError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(tt.args...)
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "got %T: %v", err, err)
		})
	}
}

func TestRootCmd_Usage(t *testing.T) {
	_, _, err := execute()
	assert.Error(t, err, "INPUT is required")

	_, _, err = execute("a.png", "b.png")
	assert.Error(t, err, "only one INPUT is accepted")
}

func TestRootCmd_BadOverlayColor(t *testing.T) {
	dir := t.TempDir()
	input := writeSkewedSprite(t, dir)

	_, _, err := execute(input, "--overlay", filepath.Join(dir, "o.png"), "--left-color", "#12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--left-color")
}

func TestRootCmd_BadThresholds(t *testing.T) {
	dir := t.TempDir()
	input := writeSkewedSprite(t, dir)

	for _, args := range [][]string{
		{"--canny-low", "0"},
		{"--canny-low", "120", "--canny-high", "100"},
	} {
		_, _, err := execute(append([]string{input}, args...)...)
		require.Error(t, err, "args %v", args)
		assert.Contains(t, err.Error(), "edge thresholds")
	}
}

func TestRootCmd_DarkSpriteHint(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	for y := 8; y < 40; y++ {
		for x := 8; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{20, 20, 20, 255})
		}
	}
	input := filepath.Join(dir, "dark.png")
	require.NoError(t, imaging.Save(img, input))

	_, _, err := execute(input)
	require.Error(t, err)

	var edges *detection.InsufficientEdgesError
	require.True(t, errors.As(err, &edges), "got %T: %v", err, err)
	assert.Contains(t, describe(err), "--edge-background 1")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		hint string
	}{
		{fmt.Errorf("extract bounds: %w", &imaging.EmptyImageError{Width: 4, Height: 4}), "transparent"},
		{fmt.Errorf("classify angles: %w", &detection.InsufficientEdgesError{Class: detection.Right}), "--edge-background 1"},
		{fmt.Errorf("build correction: %w", &geometry.DegenerateBasisError{Left: 30, Right: 30}), "--edges"},
		{errors.New("plain"), "plain"},
	}

	for _, tt := range tests {
		got := describe(tt.err)
		assert.True(t, strings.Contains(got, tt.hint), "describe(%v) = %q, want hint %q", tt.err, got, tt.hint)
	}
}
