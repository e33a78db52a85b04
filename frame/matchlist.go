package frame

import (
	"gonum.org/v1/gonum/floats"
)

// Match pairs a descriptor index from one frame's set with the index of
// its best correspondent in another's.
type Match struct {
	Idx1, Idx2 int
}

// MatchList is the ordered set of correspondences MatchKeypoints returns,
// nearest match first. It is a distinct type from initmap.MatchList, which
// Initializer.Initialize takes.
type MatchList []Match

// MatchingConfig controls MatchKeypoints' acceptance rules.
type MatchingConfig struct {
	DoCrossCheck bool
	MaxDist      int
}

// MatchKeypoints finds, for each descriptor in desc1, its nearest neighbor
// in desc2 by Hamming distance, optionally enforcing a mutual
// nearest-neighbor cross-check and a maximum-distance cutoff, and returns
// the surviving pairs sorted by ascending distance.
func MatchKeypoints(desc1, desc2 []Descriptor, cfg MatchingConfig) MatchList {
	if len(desc1) == 0 || len(desc2) == 0 {
		return nil
	}

	best2 := make([]int, len(desc1))
	bestDist := make([]int, len(desc1))
	for i, d1 := range desc1 {
		min := d1.HammingDistance(desc2[0])
		minIdx := 0
		for j := 1; j < len(desc2); j++ {
			dist := d1.HammingDistance(desc2[j])
			if dist < min {
				min = dist
				minIdx = j
			}
		}
		best2[i] = minIdx
		bestDist[i] = min
	}

	keep := make([]bool, len(desc1))
	for i := range keep {
		keep[i] = true
	}

	if cfg.DoCrossCheck {
		best1 := make([]int, len(desc2))
		for j, d2 := range desc2 {
			min := d2.HammingDistance(desc1[0])
			minIdx := 0
			for i := 1; i < len(desc1); i++ {
				dist := d2.HammingDistance(desc1[i])
				if dist < min {
					min = dist
					minIdx = i
				}
			}
			best1[j] = minIdx
		}
		for i := range keep {
			if best1[best2[i]] != i {
				keep[i] = false
			}
		}
	}

	if cfg.MaxDist > 0 {
		for i := range keep {
			if bestDist[i] >= cfg.MaxDist {
				keep[i] = false
			}
		}
	}

	var idx1, idx2 []int
	var dist []float64
	for i := range desc1 {
		if keep[i] {
			idx1 = append(idx1, i)
			idx2 = append(idx2, best2[i])
			dist = append(dist, float64(bestDist[i]))
		}
	}

	order := make([]int, len(dist))
	floats.Argsort(dist, order)

	out := make(MatchList, len(order))
	for i, o := range order {
		out[i] = Match{Idx1: idx1[o], Idx2: idx2[o]}
	}
	return out
}
