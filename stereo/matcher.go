package stereo

import (
	"math"

	"go.viam.com/slamcore/slamlog"
	"go.viam.com/slamcore/utils"
)

// thHigh and thLow are the same descriptor-distance acceptance/rejection
// thresholds ORB-SLAM2's ORBmatcher uses for binary descriptors of this
// size; the pre-selection threshold is their midpoint.
const (
	thHigh = 100
	thLow  = 50

	patchHalf = 5 // 11x11 SAD patch, half-width w=5
	scanRange = 5 // integer disparity search range +-5 around the candidate
)

// Result carries the per-left-keypoint stereo match outputs. Unmatched
// keypoints leave RightU and Depth at -1.
type Result struct {
	RightU []float64
	Depth  []float64
}

// Match implements the row-indexed, descriptor-preselected, SAD-refined
// stereo correspondence search. leftKps/rightKps and their descriptors are
// parallel arrays; scales is the shared pyramid table; leftPyramid and
// rightPyramid give per-level pixel access post-extraction-join; fx, bf and
// b are the calibration's focal length, baseline-times-focal, and baseline;
// imageHeight bounds the row index.
func Match(
	leftKps, rightKps []Keypoint,
	leftDesc, rightDesc []Descriptor,
	scales PyramidScaleTable,
	leftPyramid, rightPyramid PyramidImage,
	fx, bf, b float64,
	imageHeight int,
) Result {
	res := Result{
		RightU: make([]float64, len(leftKps)),
		Depth:  make([]float64, len(leftKps)),
	}
	for i := range res.RightU {
		res.RightU[i] = -1
		res.Depth[i] = -1
	}

	rowIndex := buildRowIndex(rightKps, scales, imageHeight)

	type sadSample struct {
		leftIdx int
		sad     float64
	}
	var samples []sadSample

	for i, kL := range leftKps {
		minZ := b
		if minZ <= 0 {
			continue
		}
		maxU := kL.X
		minU := kL.X - fx*b/minZ
		if maxU < 0 {
			continue
		}

		row := int(math.Round(kL.Y))
		if row < 0 || row >= imageHeight {
			continue
		}
		candidates := rowIndex[row]
		if len(candidates) == 0 {
			continue
		}

		bestDist := math.MaxInt32
		bestCand := -1
		for _, j := range candidates {
			kR := rightKps[j]
			if kR.Octave < kL.Octave-1 || kR.Octave > kL.Octave+1 {
				continue
			}
			if kR.X < minU || kR.X > maxU {
				continue
			}
			dist := leftDesc[i].HammingDistance(rightDesc[j])
			if dist < bestDist {
				bestDist = dist
				bestCand = j
			}
		}
		if bestCand < 0 || float64(bestDist) >= float64(thHigh+thLow)/2 {
			continue
		}

		level := kL.Octave
		invScale := scales.InvScaleFactors[level]
		scale := scales.ScaleFactors[level]

		scaledUL := kL.X * invScale
		scaledVL := kL.Y * invScale
		scaledUR0 := rightKps[bestCand].X * invScale

		if !windowFits(leftPyramid, rightPyramid, level, scaledUL, scaledVL, scaledUR0) {
			slamlog.Global().Debugw("dropping stereo candidate, SAD window does not fit image", "left", i, "right", bestCand)
			continue
		}

		sad := make([]float64, 2*scanRange+1)
		for d := -scanRange; d <= scanRange; d++ {
			sad[d+scanRange] = patchSAD(leftPyramid, rightPyramid, level, scaledUL, scaledVL, scaledUR0+float64(d))
		}

		bestShift := -scanRange
		bestSAD := sad[0]
		for d := -scanRange + 1; d <= scanRange; d++ {
			if sad[d+scanRange] < bestSAD {
				bestSAD = sad[d+scanRange]
				bestShift = d
			}
		}
		if bestShift == -scanRange || bestShift == scanRange {
			continue
		}

		dMinus := sad[bestShift-1+scanRange]
		d0 := sad[bestShift+scanRange]
		dPlus := sad[bestShift+1+scanRange]
		denom := 2 * (dMinus + dPlus - 2*d0)
		if denom == 0 {
			continue
		}
		delta := (dMinus - dPlus) / denom
		if math.Abs(delta) > 1 {
			continue
		}

		finalU := scale * (scaledUR0 + float64(bestShift) + delta)
		disparity := kL.X - finalU
		if disparity < 0.01 {
			disparity = 0.01
		}
		if disparity < 0 || disparity >= fx {
			slamlog.Global().Debugw("dropping stereo candidate, disparity out of range", "left", i, "disparity", disparity, "fx", fx)
			continue
		}

		res.RightU[i] = finalU
		res.Depth[i] = bf / disparity
		samples = append(samples, sadSample{leftIdx: i, sad: bestSAD})
	}

	if len(samples) == 0 {
		return res
	}
	vals := make([]float64, len(samples))
	for k, s := range samples {
		vals[k] = s.sad
	}
	median := utils.Median(vals...)
	threshold := 1.5 * 1.4 * median
	for _, s := range samples {
		// A zero-SAD match (an exact patch copy) is never treated as an
		// outlier, even when the median SAD is itself zero.
		if s.sad > 0 && s.sad >= threshold {
			slamlog.Global().Debugw("dropping stereo candidate, SAD outlier", "left", s.leftIdx, "sad", s.sad, "threshold", threshold)
			res.RightU[s.leftIdx] = -1
			res.Depth[s.leftIdx] = -1
		}
	}
	return res
}

// buildRowIndex inserts each right keypoint into every image row within
// +-2 scale-factors of its own row, widening the search band proportional
// to scale uncertainty.
func buildRowIndex(rightKps []Keypoint, scales PyramidScaleTable, imageHeight int) [][]int {
	rows := make([][]int, imageHeight)
	for idx, kR := range rightKps {
		s := scales.ScaleFactors[kR.Octave]
		minRow := int(math.Floor(kR.Y - 2*s))
		maxRow := int(math.Ceil(kR.Y + 2*s))
		if minRow < 0 {
			minRow = 0
		}
		if maxRow > imageHeight-1 {
			maxRow = imageHeight - 1
		}
		for r := minRow; r <= maxRow; r++ {
			rows[r] = append(rows[r], idx)
		}
	}
	return rows
}

// windowFits reports whether every pixel patchSAD will touch across the
// full +-scanRange slide stays inside both pyramid levels. The sliding
// window's valid range is iniu = scaledUR0-L-w, endu = scaledUR0+L+w+1;
// a shift is only tried at all once the whole [iniu,endu) span fits the
// right image, and the (non-sliding) left patch fits the left image.
func windowFits(leftPyramid, rightPyramid PyramidImage, level int, scaledUL, scaledVL, scaledUR0 float64) bool {
	const w = patchHalf
	const l = scanRange

	iniu := scaledUR0 - l - w
	endu := scaledUR0 + l + w + 1
	rightW, rightH := float64(rightPyramid.Width(level)), float64(rightPyramid.Height(level))
	if iniu < 0 || endu >= rightW {
		return false
	}
	if scaledVL-w < 0 || scaledVL+w >= rightH {
		return false
	}

	leftW, leftH := float64(leftPyramid.Width(level)), float64(leftPyramid.Height(level))
	if scaledUL-w < 0 || scaledUL+w >= leftW {
		return false
	}
	if scaledVL-w < 0 || scaledVL+w >= leftH {
		return false
	}
	return true
}

// patchSAD computes the sum of absolute differences between the 11x11
// patch centered at (leftU,leftV) in the left pyramid and the patch
// centered at (rightU,leftV) in the right pyramid, both at the given
// level, after subtracting each patch's own center pixel from every pixel
// in it (local illumination normalization).
func patchSAD(leftPyramid, rightPyramid PyramidImage, level int, leftU, leftV, rightU float64) float64 {
	lx := int(math.Round(leftU))
	ly := int(math.Round(leftV))
	rx := int(math.Round(rightU))

	leftCenter := leftPyramid.At(level, lx, ly)
	rightCenter := rightPyramid.At(level, rx, ly)

	sad := 0.0
	for dy := -patchHalf; dy <= patchHalf; dy++ {
		for dx := -patchHalf; dx <= patchHalf; dx++ {
			lp := leftPyramid.At(level, lx+dx, ly+dy) - leftCenter
			rp := rightPyramid.At(level, rx+dx, ly+dy) - rightCenter
			diff := lp - rp
			if diff < 0 {
				diff = -diff
			}
			sad += float64(diff)
		}
	}
	return sad
}
