// Package stereo implements block-matching stereo correspondence and RGB-D
// virtual-stereo synthesis over a pair of undistorted keypoint sets.
package stereo

import "math/bits"

// Keypoint is an undistorted image-plane feature location at a pyramid
// octave, plus the detector's response strength and dominant orientation.
// Response and Angle are carried through extraction and matching but no
// operation in this package currently reads them; a future descriptor
// re-scoring or loop-closure pass would.
type Keypoint struct {
	X, Y     float64
	Octave   int
	Response float64
	Angle    float64
}

// Descriptor is a 256-bit binary feature descriptor, compared by Hamming
// distance.
type Descriptor [4]uint64

// HammingDistance returns the number of differing bits between d and other.
func (d Descriptor) HammingDistance(other Descriptor) int {
	dist := 0
	for i := range d {
		dist += bits.OnesCount64(d[i] ^ other[i])
	}
	return dist
}

// PyramidScaleTable holds the per-level scale factors a feature extractor
// exposes, shared read-only by the stereo matcher after extraction joins.
type PyramidScaleTable struct {
	Levels          int
	ScaleFactor     float64
	ScaleFactors    []float64
	InvScaleFactors []float64
	LevelSigma2     []float64
	InvLevelSigma2  []float64
}

// PyramidImage exposes per-level pixel intensity, matching the extractor
// collaborator's image_pyramid[level] buffer. Width/Height report that
// level's extent so callers can reject a patch before it walks off the
// image instead of relying on At to handle out-of-range coordinates.
type PyramidImage interface {
	At(level, x, y int) int
	Width(level int) int
	Height(level int) int
}
