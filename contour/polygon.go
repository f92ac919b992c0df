package contour

import (
	"math"

	"github.com/LdDl/pvblob/blob"
	"gonum.org/v1/gonum/floats"
)

const collinearEps = 1e-9

// Perimeter returns the length of the closed polygon
func Perimeter(polygon []blob.Point) float64 {
	if len(polygon) < 2 {
		return 0
	}
	segments := make([]float64, len(polygon))
	for i, p := range polygon {
		segments[i] = p.Distance(polygon[(i+1)%len(polygon)])
	}
	return floats.Sum(segments)
}

// SimplifyCollinear drops vertices lying on the straight segment between their neighbors
func SimplifyCollinear(polygon []blob.Point) []blob.Point {
	n := len(polygon)
	if n < 4 {
		return append([]blob.Point(nil), polygon...)
	}
	out := make([]blob.Point, 0, n)
	for i, p := range polygon {
		prev := polygon[(i-1+n)%n]
		next := polygon[(i+1)%n]
		cross := (p.X-prev.X)*(next.Y-p.Y) - (p.Y-prev.Y)*(next.X-p.X)
		if math.Abs(cross) < collinearEps {
			continue
		}
		out = append(out, p)
	}
	return out
}
