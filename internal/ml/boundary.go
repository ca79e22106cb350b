package ml

import "math"

// Boundary is a one-class kernel method: a point's mean RBF similarity to the
// training set is compared against a threshold placed at the nu quantile of
// the training set's own similarities. Score < 0 means outlier.
type Boundary struct {
	support   [][]float64
	gamma     float64
	threshold float64
}

func fitBoundary(p Params, x [][]float64) (*Boundary, error) {
	gamma := p.Gamma
	if gamma <= 0 {
		gamma = scaleGamma(x)
	}
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, ErrNumericInstability
	}

	b := &Boundary{support: x, gamma: gamma}

	sims := make([]float64, len(x))
	for i, row := range x {
		sims[i] = b.similarity(row)
	}
	b.threshold = quantile(sims, p.Nu)

	return b, nil
}

func (b *Boundary) Score(x []float64) float64 {
	return b.similarity(x) - b.threshold
}

func (b *Boundary) Predict(x []float64) int {
	if b.Score(x) < 0 {
		return -1
	}
	return 1
}

func (b *Boundary) similarity(x []float64) float64 {
	total := 0.0
	for _, s := range b.support {
		d2 := 0.0
		for j := range x {
			d := x[j] - s[j]
			d2 += d * d
		}
		total += math.Exp(-b.gamma * d2)
	}
	return total / float64(len(b.support))
}

// scaleGamma mirrors the common "scale" heuristic: 1 / (dim * overall variance).
func scaleGamma(x [][]float64) float64 {
	dim := len(x[0])
	n := float64(len(x) * dim)

	mean := 0.0
	for _, row := range x {
		for _, v := range row {
			mean += v
		}
	}
	mean /= n

	variance := 0.0
	for _, row := range x {
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
	}
	variance /= n

	if variance == 0 {
		return 1
	}
	return 1 / (float64(dim) * variance)
}
