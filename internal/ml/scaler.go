package ml

import (
	"errors"
	"math"
)

// ErrNumericInstability is returned when the training matrix is empty or
// contains non-finite values and no model can be fitted from it.
var ErrNumericInstability = errors.New("numeric instability in training data")

// Scaler is a per-feature zero-mean/unit-variance transform fitted on
// training data and applied identically at inference time.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-feature mean and standard deviation. Features with
// zero variance keep a scale of 1 so transformed values stay finite.
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, ErrNumericInstability
	}

	dim := len(x[0])
	mean := make([]float64, dim)
	std := make([]float64, dim)

	for _, row := range x {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, ErrNumericInstability
			}
			mean[j] += v
		}
	}
	n := float64(len(x))
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &Scaler{Mean: mean, Std: std}, nil
}

// Transform rescales a single vector.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll rescales every row of a matrix.
func (s *Scaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}
