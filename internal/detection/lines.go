package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/true-iso/internal/geometry"
	"github.com/ironsheep/true-iso/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Segment is a straight run of edge pixels.
//
// AngleDegrees is measured from the +X axis in image coordinates (Y down)
// and lies in (-90, 90]. Length is the number of edge pixels supporting the
// line and is used as the segment's weight.
type Segment struct {
	AngleDegrees float64 `json:"angle_degrees"`
	Length       float64 `json:"length"`
	Votes        int     `json:"votes"`
	Start        Point   `json:"start"`
	End          Point   `json:"end"`
}

// LineParams tunes the Hough transform used by DetectLines.
type LineParams struct {
	// VoteThreshold is the minimum accumulator count for a peak.
	VoteThreshold int

	// SuppressionRadius is the half-size, in accumulator cells, of the
	// window a peak must dominate.
	SuppressionRadius int

	// InlierDistance is the largest perpendicular distance, in pixels, of an
	// edge pixel that supports a line.
	InlierDistance float64

	// RefineIterations is the number of least-squares refits per peak.
	RefineIterations int

	// EndTrim is how far, in pixels along the line, the refits ignore
	// inliers at each end. Near a corner the adjacent edge also lies within
	// InlierDistance and would tilt the fit towards it.
	EndTrim float64

	// MinLength drops segments supported by fewer edge pixels.
	MinLength float64

	// MaxLines caps the number of peaks examined, strongest first.
	MaxLines int
}

// DefaultLineParams returns settings that suit sprites from 32 to 1024 px.
func DefaultLineParams() LineParams {
	return LineParams{
		VoteThreshold:     16,
		SuppressionRadius: 8,
		InlierDistance:    1.5,
		RefineIterations:  3,
		EndTrim:           4,
		MinLength:         12,
		MaxLines:          64,
	}
}

const numAngles = 180 // 1° accumulator bins

// DetectLines finds straight segments in an edge map using a Hough
// transform.
//
// # Algorithm
//
//  1. Every edge pixel votes for all (rho, theta) lines through it, with
//     theta in 1° steps over [0°, 180°) and rho rounded to whole pixels.
//  2. Peaks are cells with at least VoteThreshold votes that dominate a
//     window of ±SuppressionRadius cells. Theta wraps, mirroring rho.
//  3. Each peak is refined: edge pixels within InlierDistance of the line
//     are collected and a total least squares fit replaces the line.
//     This recovers sub-degree angles that the 1° bins cannot express.
//     The fit skips inliers within EndTrim of either end, where the
//     neighbouring edge of a corner crowds in.
//  4. Refined lines supported by fewer than MinLength pixels are dropped,
//     as are near-duplicates of a stronger line.
//
// The result is unordered.
func DetectLines(edges *imaging.EdgeMap, params LineParams) []Segment {
	points := edgePoints(edges)
	if len(points) == 0 {
		return nil
	}

	maxDist := int(math.Ceil(math.Hypot(float64(edges.Width), float64(edges.Height))))
	numRho := 2*maxDist + 1

	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for t := 0; t < numAngles; t++ {
		a := float64(t) * math.Pi / 180
		cosT[t] = math.Cos(a)
		sinT[t] = math.Sin(a)
	}

	// Vote in Hough space
	accumulator := make([]int, numRho*numAngles)
	for _, p := range points {
		for t := 0; t < numAngles; t++ {
			rho := float64(p.X)*cosT[t] + float64(p.Y)*sinT[t]
			accumulator[(int(math.Round(rho))+maxDist)*numAngles+t]++
		}
	}

	peaks := findPeaks(accumulator, numRho, numAngles, maxDist, params)
	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})
	if params.MaxLines > 0 && len(peaks) > params.MaxLines {
		peaks = peaks[:params.MaxLines]
	}

	segments := make([]Segment, 0, len(peaks))
	fitted := make([]fittedLine, 0, len(peaks))
	for _, peak := range peaks {
		line := fittedLine{nx: cosT[peak.theta], ny: sinT[peak.theta], rho: float64(peak.rho)}
		inliers := line.inliers(points, params.InlierDistance)
		for i := 0; i < params.RefineIterations && len(inliers) >= 2; i++ {
			refined, ok := fitLine(line.trimEnds(inliers, params.EndTrim))
			if !ok {
				break
			}
			line = refined
			inliers = line.inliers(points, params.InlierDistance)
		}

		if len(inliers) < 2 || float64(len(inliers)) < params.MinLength {
			continue
		}
		if isDuplicate(line, fitted) {
			continue
		}
		fitted = append(fitted, line)

		start, end := line.extent(inliers)
		segments = append(segments, Segment{
			AngleDegrees: line.angle(),
			Length:       float64(len(inliers)),
			Votes:        peak.votes,
			Start:        start,
			End:          end,
		})
	}

	return segments
}

type peak struct {
	rho   int
	theta int
	votes int
}

func findPeaks(acc []int, numRho, numTheta, maxDist int, params LineParams) []peak {
	r := params.SuppressionRadius
	peaks := make([]peak, 0)

	for rhoIdx := 0; rhoIdx < numRho; rhoIdx++ {
		for theta := 0; theta < numTheta; theta++ {
			votes := acc[rhoIdx*numTheta+theta]
			if votes < params.VoteThreshold || votes == 0 {
				continue
			}

			isMax := true
			for dt := -r; dt <= r && isMax; dt++ {
				nt := theta + dt
				mirrored := false
				if nt < 0 {
					nt += numTheta
					mirrored = true
				} else if nt >= numTheta {
					nt -= numTheta
					mirrored = true
				}
				for dr := -r; dr <= r && isMax; dr++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					if mirrored {
						// (rho, theta±180°) is the same line as (-rho, theta).
						nr = 2*maxDist - nr
					}
					if nr < 0 || nr >= numRho {
						continue
					}
					other := acc[nr*numTheta+nt]
					// Ties go to the earlier cell so a plateau yields one peak.
					if other > votes || (other == votes && nr*numTheta+nt < rhoIdx*numTheta+theta) {
						isMax = false
					}
				}
			}

			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxDist, theta: theta, votes: votes})
			}
		}
	}
	return peaks
}

func edgePoints(edges *imaging.EdgeMap) []Point {
	points := make([]Point, 0, edges.Width+edges.Height)
	for y := 0; y < edges.Height; y++ {
		for x := 0; x < edges.Width; x++ {
			if edges.Pix[y*edges.Width+x] {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}

// fittedLine is the line {p : p·n = rho} with unit normal n.
type fittedLine struct {
	nx, ny float64
	rho    float64
}

func (l fittedLine) distance(p Point) float64 {
	return math.Abs(float64(p.X)*l.nx + float64(p.Y)*l.ny - l.rho)
}

func (l fittedLine) inliers(points []Point, maxDist float64) []Point {
	out := make([]Point, 0)
	for _, p := range points {
		if l.distance(p) <= maxDist {
			out = append(out, p)
		}
	}
	return out
}

// angle returns the direction of the line in degrees, in (-90, 90].
func (l fittedLine) angle() float64 {
	// The direction is the normal rotated by -90°: (ny, -nx).
	return geometry.NormalizeAngle(math.Atan2(-l.nx, l.ny) * 180 / math.Pi)
}

// extent returns the inliers with the smallest and largest projection onto
// the line direction.
func (l fittedLine) extent(inliers []Point) (Point, Point) {
	dx, dy := l.ny, -l.nx
	minP, maxP := inliers[0], inliers[0]
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, p := range inliers {
		d := float64(p.X)*dx + float64(p.Y)*dy
		if d < minD {
			minD, minP = d, p
		}
		if d > maxD {
			maxD, maxP = d, p
		}
	}
	return minP, maxP
}

// trimEnds drops inliers projecting within trim of either end of the run.
// Runs too short to lose that much are returned whole.
func (l fittedLine) trimEnds(inliers []Point, trim float64) []Point {
	if trim <= 0 || len(inliers) < 4 {
		return inliers
	}
	dx, dy := l.ny, -l.nx
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, p := range inliers {
		d := float64(p.X)*dx + float64(p.Y)*dy
		minD = math.Min(minD, d)
		maxD = math.Max(maxD, d)
	}

	core := make([]Point, 0, len(inliers))
	for _, p := range inliers {
		d := float64(p.X)*dx + float64(p.Y)*dy
		if d >= minD+trim && d <= maxD-trim {
			core = append(core, p)
		}
	}
	if len(core) < 2 || 2*len(core) < len(inliers) {
		return inliers
	}
	return core
}

// fitLine returns the total least squares line through points.
func fitLine(points []Point) (fittedLine, bool) {
	n := float64(len(points))
	var mx, my float64
	for _, p := range points {
		mx += float64(p.X)
		my += float64(p.Y)
	}
	mx /= n
	my /= n

	var sxx, syy, sxy float64
	for _, p := range points {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx+syy == 0 {
		return fittedLine{}, false
	}

	// Principal axis of the scatter matrix.
	phi := 0.5 * math.Atan2(2*sxy, sxx-syy)
	nx, ny := -math.Sin(phi), math.Cos(phi)
	return fittedLine{nx: nx, ny: ny, rho: mx*nx + my*ny}, true
}

// isDuplicate reports whether l matches an already accepted line to within
// half a degree and two pixels.
func isDuplicate(l fittedLine, accepted []fittedLine) bool {
	for _, a := range accepted {
		dot := l.nx*a.nx + l.ny*a.ny
		rho := l.rho
		if dot < 0 {
			dot, rho = -dot, -rho
		}
		if dot > math.Cos(0.5*math.Pi/180) && math.Abs(rho-a.rho) <= 2 {
			return true
		}
	}
	return false
}
