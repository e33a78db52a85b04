package ransac

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DrawMinimalSets pre-draws, for each of iters iterations, a set of m
// distinct indices from [0,n) using replace-with-last-then-pop over a
// deterministic seeded source: the same seed always yields the same
// samples, which both the homography and fundamental RANSACs need if they
// are to share draw structure and be reproducible across runs and
// languages.
func DrawMinimalSets(n, m, iters int, seed uint64) [][]int {
	src := rand.NewSource(seed)
	unif := distuv.Uniform{Min: 0, Max: 1, Src: src}

	sets := make([][]int, iters)
	for it := 0; it < iters; it++ {
		available := make([]int, n)
		for i := range available {
			available[i] = i
		}
		sample := make([]int, m)
		for i := 0; i < m && len(available) > 0; i++ {
			k := len(available)
			idx := int(unif.Rand() * float64(k))
			if idx >= k {
				idx = k - 1
			}
			sample[i] = available[idx]
			available[idx] = available[k-1]
			available = available[:k-1]
		}
		sets[it] = sample
	}
	return sets
}

// ModelFunc builds a candidate model from a minimal set of correspondence
// indices, returning ok=false if the set is degenerate.
type ModelFunc func(sampleIdx []int) (model *mat.Dense, ok bool)

// ScoreFunc scores a candidate model against the full correspondence set.
type ScoreFunc func(model *mat.Dense) (score float64, inliers []bool)

// Engine runs a fixed number of RANSAC iterations over a pre-drawn table of
// minimal sets, keeping the highest-scoring model.
type Engine struct {
	N              int
	MinimalSetSize int
	MaxIters       int
	minimalSets    [][]int
}

// NewEngine builds an Engine and pre-draws its minimal-set table.
func NewEngine(n, minimalSetSize, maxIters int, seed uint64) *Engine {
	return &Engine{
		N:              n,
		MinimalSetSize: minimalSetSize,
		MaxIters:       maxIters,
		minimalSets:    DrawMinimalSets(n, minimalSetSize, maxIters, seed),
	}
}

// NewEngineFromSets builds an Engine over an already-drawn minimal-set
// table, letting two engines (homography, fundamental) share one draw.
func NewEngineFromSets(n, minimalSetSize int, sets [][]int) *Engine {
	return &Engine{N: n, MinimalSetSize: minimalSetSize, MaxIters: len(sets), minimalSets: sets}
}

// Run executes every pre-drawn iteration, returning the best-scoring model,
// its inlier mask, and its score. Iterations whose minimal set produces a
// degenerate model are skipped.
func (e *Engine) Run(modelFn ModelFunc, scoreFn ScoreFunc) (bestModel *mat.Dense, bestInliers []bool, bestScore float64) {
	for _, sample := range e.minimalSets {
		model, ok := modelFn(sample)
		if !ok {
			continue
		}
		score, inliers := scoreFn(model)
		if bestModel == nil || score > bestScore {
			bestModel = model
			bestInliers = inliers
			bestScore = score
		}
	}
	return bestModel, bestInliers, bestScore
}
