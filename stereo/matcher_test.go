package stereo

import (
	"testing"

	"go.viam.com/test"
)

// TestMatchRejectsCandidateWhoseSADWindowDoesNotFitImage pins the
// iniu/endu window-fit bound: a candidate near the image border, whose
// 11x11 sliding SAD window would run off the left edge of the image, must
// be rejected before any pixel is sampled, never after. leftPyr/rightPyr
// panic on any out-of-range access, so a bug that lets the candidate
// through would fail this test with a panic rather than a bad assertion.
func TestMatchRejectsCandidateWhoseSADWindowDoesNotFitImage(t *testing.T) {
	const (
		fx = 2000.0
		b  = 0.1
	)
	bf := fx * b

	// Near-edge candidate: the right column sits at x=3, so the sliding
	// window's iniu = 3 - scanRange - patchHalf = -7 < 0.
	left := []Keypoint{{X: 8, Y: 50, Octave: 0}}
	right := []Keypoint{{X: 3, Y: 50, Octave: 0}}
	desc := Descriptor{1, 2, 3, 4}

	pyr := &spikePyramid{width: 200, height: 300, spacing: 1000, spikeHeight: 1000, strict: true}

	// A strict pyramid panics on any out-of-range At call, so simply
	// reaching this assertion without crashing proves the window-fit
	// check rejected the candidate before sampling any pixel.
	res := Match(left, right, []Descriptor{desc}, []Descriptor{desc}, singleLevelScales(), pyr, pyr, fx, bf, b, 300)
	test.That(t, res.RightU[0], test.ShouldEqual, -1.0)
	test.That(t, res.Depth[0], test.ShouldEqual, -1.0)
}

// TestMatchAcceptsCandidateAwayFromImageBorder checks the window-fit bound
// added above does not reject a legitimate, well-inside-the-image
// candidate: the sibling case to the rejection test.
func TestMatchAcceptsCandidateAwayFromImageBorder(t *testing.T) {
	const (
		spacing   = 1000
		spikeH    = 1000
		disparity = 20
		fx        = 2000.0
		b         = 0.1
	)
	bf := fx * b

	left := []Keypoint{{X: 1000, Y: 150, Octave: 0}}
	right := []Keypoint{{X: 1000 - disparity, Y: 150, Octave: 0}}
	desc := Descriptor{1, 2, 3, 4}

	leftPyr := &spikePyramid{width: 2000, height: 300, spacing: spacing, spikeHeight: spikeH, strict: true}
	rightPyr := &spikePyramid{width: 2000, height: 300, spacing: spacing, spikeHeight: spikeH, disparity: disparity, strict: true}

	res := Match(left, right, []Descriptor{desc}, []Descriptor{desc}, singleLevelScales(), leftPyr, rightPyr, fx, bf, b, 300)
	test.That(t, res.RightU[0], test.ShouldNotEqual, -1.0)
	test.That(t, res.Depth[0], test.ShouldNotEqual, -1.0)
}
