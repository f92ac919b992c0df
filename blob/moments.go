package blob

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Moments of a pixel mask. Index [p][q] is the moment of x^p * y^q.
type Moments struct {
	// Raw moments
	M [3][3]float64
	// Central moments
	Mu [3][3]float64
	// Central moments divided by Mu[0][0]
	Nu [3][3]float64

	Center Point
	Angle  float64

	ready bool
}

// Ready reports whether values were computed
func (m *Moments) Ready() bool {
	return m.ready
}

// PrincipalAxes returns full lengths of the major and minor axis of the ellipse with
// the same second moments
func (m *Moments) PrincipalAxes() (major, minor float64, err error) {
	if !m.ready {
		return 0, 0, errors.New("moments are not computed")
	}
	cov := mat.NewSymDense(2, []float64{
		m.Nu[2][0], m.Nu[1][1],
		m.Nu[1][1], m.Nu[0][2],
	})
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, false); !ok {
		return 0, 0, errors.New("Can't factorize moment covariance")
	}
	values := eig.Values(nil) // ascending
	lo := math.Max(values[0], 0)
	hi := math.Max(values[1], 0)
	return 4 * math.Sqrt(hi), 4 * math.Sqrt(lo), nil
}

// Eccentricity returns eccentricity of the moment ellipse (0 for a circle)
func (m *Moments) Eccentricity() (float64, error) {
	major, minor, err := m.PrincipalAxes()
	if err != nil {
		return 0, err
	}
	if major == 0 {
		return 0, nil
	}
	return math.Sqrt(math.Max(0, 1-(minor*minor)/(major*major))), nil
}

// GetMoments computes moments if needed and returns them
func (blob *Blob) GetMoments() Moments {
	blob.CalculateMoments()
	return blob.moments
}

// GetOrientation returns the angle (radians) of the major moment axis
func (blob *Blob) GetOrientation() float64 {
	blob.CalculateMoments()
	return blob.moments.Angle
}

// CalculateMoments computes raw, central and normalized moments in two passes.
// Lines are split into contiguous chunks summed on separate goroutines and
// both passes use the same chunks.
func (blob *Blob) CalculateMoments() {
	if blob.moments.ready {
		return
	}
	blob.CalculateProperties()
	var moments Moments
	if len(blob.lines) == 0 {
		moments.ready = true
		blob.moments = moments
		return
	}

	chunks := momentChunks(len(blob.lines), blob.opts.MomentChunkLines)
	moments.M = blob.sumMoments(chunks, 0, 0)
	m00 := moments.M[0][0]
	moments.Center = Point{X: moments.M[1][0] / m00, Y: moments.M[0][1] / m00}

	moments.Mu = blob.sumMoments(chunks, moments.Center.X, moments.Center.Y)
	mu00 := moments.Mu[0][0]
	for p := 0; p < 3; p++ {
		for q := 0; q < 3; q++ {
			moments.Nu[p][q] = moments.Mu[p][q] / mu00
		}
	}
	moments.Angle = 0.5 * math.Atan2(2*moments.Nu[1][1], moments.Nu[2][0]-moments.Nu[0][2])
	moments.ready = true
	blob.moments = moments
}

// momentChunks returns chunk boundaries: min(4, max(1, n/perChunk)) chunks
func momentChunks(n, perChunk int) []int {
	count := minInt(maxMomentChunks, maxInt(1, n/perChunk))
	bounds := make([]int, count+1)
	for i := range bounds {
		bounds[i] = i * n / count
	}
	return bounds
}

// sumMoments sums (x-cx)^p * (y-cy)^q over all pixels, one goroutine per chunk
func (blob *Blob) sumMoments(chunks []int, cx, cy float64) [3][3]float64 {
	partial := make([][3][3]float64, len(chunks)-1)
	var g errgroup.Group
	g.SetLimit(blob.opts.MomentWorkers)
	for i := range partial {
		lines := blob.lines[chunks[i]:chunks[i+1]]
		sum := &partial[i]
		g.Go(func() error {
			*sum = lineMoments(lines, cx, cy)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	var total [3][3]float64
	for i := range partial {
		for p := 0; p < 3; p++ {
			for q := 0; q < 3; q++ {
				total[p][q] += partial[i][p][q]
			}
		}
	}
	return total
}

func lineMoments(lines []HorizontalLine, cx, cy float64) [3][3]float64 {
	var m [3][3]float64
	for _, line := range lines {
		sx := powerSums(float64(line.X0)-cx, float64(line.Width()))
		y := float64(line.Y) - cy
		sy := [3]float64{1, y, y * y}
		for p := 0; p < 3; p++ {
			for q := 0; q < 3; q++ {
				m[p][q] += sx[p] * sy[q]
			}
		}
	}
	return m
}

// powerSums returns Σ(a+k)^p for k in [0, n) and p = 0, 1, 2
func powerSums(a, n float64) [3]float64 {
	k1 := n * (n - 1) / 2
	k2 := (n - 1) * n * (2*n - 1) / 6
	return [3]float64{
		n,
		n*a + k1,
		n*a*a + 2*a*k1 + k2,
	}
}
