package ml

import (
	"math"
	"math/rand"
)

// Forest is an isolation-forest ensemble. Points isolated by short paths get
// low sample scores; the decision score subtracts an offset placed at the
// contamination quantile of the training scores, so Score < 0 means outlier.
type Forest struct {
	trees     []*isolationTree
	subsample int
	offset    float64
}

type isolationTree struct {
	feature int
	split   float64
	left    *isolationTree
	right   *isolationTree
	size    int
	leaf    bool
}

func fitForest(p Params, x [][]float64, rng *rand.Rand) (*Forest, error) {
	sub := p.SubsampleSize
	if sub > len(x) {
		sub = len(x)
	}

	f := &Forest{
		trees:     make([]*isolationTree, 0, p.Trees),
		subsample: sub,
	}
	// Standard depth limit: ceil(log2(subsample)).
	maxDepth := int(math.Ceil(math.Log2(float64(sub) + 1)))

	for i := 0; i < p.Trees; i++ {
		sample := subsample(x, sub, rng)
		f.trees = append(f.trees, buildTree(sample, 0, maxDepth, rng))
	}

	scores := make([]float64, len(x))
	for i, row := range x {
		scores[i] = f.sampleScore(row)
	}
	f.offset = quantile(scores, p.Contamination)

	return f, nil
}

func (f *Forest) Score(x []float64) float64 {
	return f.sampleScore(x) - f.offset
}

func (f *Forest) Predict(x []float64) int {
	if f.Score(x) < 0 {
		return -1
	}
	return 1
}

// sampleScore is -2^(-E[h(x)]/c(n)), in (-1, 0); higher means more normal.
func (f *Forest) sampleScore(x []float64) float64 {
	total := 0.0
	for _, tree := range f.trees {
		total += pathLength(tree, x, 0)
	}
	avg := total / float64(len(f.trees))
	return -math.Pow(2, -avg/averagePathLength(f.subsample))
}

func subsample(x [][]float64, size int, rng *rand.Rand) [][]float64 {
	shuffled := make([][]float64, len(x))
	copy(shuffled, x)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:size]
}

func buildTree(data [][]float64, depth, maxDepth int, rng *rand.Rand) *isolationTree {
	if len(data) <= 1 || depth >= maxDepth || allIdentical(data) {
		return &isolationTree{size: len(data), leaf: true}
	}

	feature := rng.Intn(len(data[0]))
	minVal, maxVal := featureRange(data, feature)
	if minVal == maxVal {
		return &isolationTree{size: len(data), leaf: true}
	}
	split := minVal + rng.Float64()*(maxVal-minVal)

	var left, right [][]float64
	for _, row := range data {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isolationTree{size: len(data), leaf: true}
	}

	return &isolationTree{
		feature: feature,
		split:   split,
		left:    buildTree(left, depth+1, maxDepth, rng),
		right:   buildTree(right, depth+1, maxDepth, rng),
		size:    len(data),
	}
}

func pathLength(tree *isolationTree, x []float64, depth int) float64 {
	if tree.leaf {
		return float64(depth) + averagePathLength(tree.size)
	}
	if x[tree.feature] < tree.split {
		return pathLength(tree.left, x, depth+1)
	}
	return pathLength(tree.right, x, depth+1)
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// search in a binary search tree of n nodes.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + 0.5772156649
	return 2*h - 2*float64(n-1)/float64(n)
}

func allIdentical(data [][]float64) bool {
	first := data[0]
	for i := 1; i < len(data); i++ {
		for j := range first {
			if math.Abs(data[i][j]-first[j]) > 1e-10 {
				return false
			}
		}
	}
	return true
}

func featureRange(data [][]float64, feature int) (float64, float64) {
	minVal, maxVal := data[0][feature], data[0][feature]
	for _, row := range data {
		v := row[feature]
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}
