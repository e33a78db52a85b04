package geometry

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// Normalize translates a point set to its centroid, then scales x and y
// independently so that the mean absolute deviation along each axis is 1.
// It returns the normalized points and the 3x3 similarity T mapping
// original coordinates to normalized ones.
func Normalize(pts []r2.Point) ([]r2.Point, *mat.Dense) {
	n := float64(len(pts))
	var meanX, meanY float64
	for _, p := range pts {
		meanX += p.X
		meanY += p.Y
	}
	meanX /= n
	meanY /= n

	var madX, madY float64
	for _, p := range pts {
		madX += abs(p.X - meanX)
		madY += abs(p.Y - meanY)
	}
	madX /= n
	madY /= n
	if madX == 0 {
		madX = 1
	}
	if madY == 0 {
		madY = 1
	}
	sx, sy := 1/madX, 1/madY

	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = r2.Point{X: sx * (p.X - meanX), Y: sy * (p.Y - meanY)}
	}

	t := mat.NewDense(3, 3, []float64{
		sx, 0, -sx * meanX,
		0, sy, -sy * meanY,
		0, 0, 1,
	})
	return out, t
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
