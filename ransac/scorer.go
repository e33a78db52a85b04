// Package ransac scores candidate two-view geometry models against a set
// of correspondences and drives the deterministic, seeded RANSAC search
// used to pick a homography or fundamental matrix.
package ransac

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// Chi-square 95% thresholds: 2 DoF for the homography's symmetric transfer
// error, 1 DoF for the fundamental's point-to-epipolar-line error. thScore
// is used as the score offset for both models so their scores are directly
// comparable.
const (
	thHomography  = 5.991
	thFundamental = 3.841
	thScore       = 5.991
)

func applyHomogeneous(m *mat.Dense, p r2.Point) (x, y, w float64) {
	x = m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)
	y = m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)
	w = m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)
	return x, y, w
}

// ScoreHomography scores a candidate homography H (mapping pts1 -> pts2)
// against invH (mapping pts2 -> pts1) using the symmetric transfer error in
// both directions. A correspondence is an inlier only if both directions
// pass the chi-square test.
func ScoreHomography(pts1, pts2 []r2.Point, h, invH *mat.Dense, sigma2 float64) (score float64, inliers []bool) {
	n := len(pts1)
	inliers = make([]bool, n)

	for i := 0; i < n; i++ {
		in := true

		x1in2, y1in2, w1in2 := applyHomogeneous(h, pts1[i])
		if w1in2 == 0 {
			inliers[i] = false
			continue
		}
		dx := pts2[i].X - x1in2/w1in2
		dy := pts2[i].Y - y1in2/w1in2
		chi1 := (dx*dx + dy*dy) / sigma2
		if chi1 > thHomography {
			in = false
		} else {
			score += thScore - chi1
		}

		x2in1, y2in1, w2in1 := applyHomogeneous(invH, pts2[i])
		if w2in1 == 0 {
			inliers[i] = false
			continue
		}
		dx2 := pts1[i].X - x2in1/w2in1
		dy2 := pts1[i].Y - y2in1/w2in1
		chi2 := (dx2*dx2 + dy2*dy2) / sigma2
		if chi2 > thHomography {
			in = false
		} else {
			score += thScore - chi2
		}

		inliers[i] = in
	}
	return score, inliers
}

// ScoreFundamental scores a candidate fundamental matrix f against pts1,
// pts2 using point-to-epipolar-line squared distance in both directions.
func ScoreFundamental(pts1, pts2 []r2.Point, f *mat.Dense, sigma2 float64) (score float64, inliers []bool) {
	n := len(pts1)
	inliers = make([]bool, n)
	ft := mat.DenseCopyOf(f.T())

	for i := 0; i < n; i++ {
		in := true

		a1, b1, c1 := applyHomogeneous(f, pts1[i])
		num2 := a1*pts2[i].X + b1*pts2[i].Y + c1
		den2 := a1*a1 + b1*b1
		if den2 == 0 {
			inliers[i] = false
			continue
		}
		chi1 := (num2 * num2 / den2) / sigma2
		if chi1 > thFundamental {
			in = false
		} else {
			score += thScore - chi1
		}

		a2, b2, c2 := applyHomogeneous(ft, pts2[i])
		num1 := a2*pts1[i].X + b2*pts1[i].Y + c2
		den1 := a2*a2 + b2*b2
		if den1 == 0 {
			inliers[i] = false
			continue
		}
		chi2 := (num1 * num1 / den1) / sigma2
		if chi2 > thFundamental {
			in = false
		} else {
			score += thScore - chi2
		}

		inliers[i] = in
	}
	return score, inliers
}
