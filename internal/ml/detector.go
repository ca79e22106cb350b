package ml

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/structeye/internal/models"
)

// Detector is a fitted outlier model. Predict returns +1 for inliers and -1
// for outliers; Score is the signed decision value where more negative means
// more anomalous.
type Detector interface {
	Predict(x []float64) int
	Score(x []float64) float64
}

// Params carries the caller-supplied hyperparameters for a training run.
// Zero values fall back to the defaults below.
type Params struct {
	Contamination float64 `json:"contamination,omitempty"`
	Trees         int     `json:"trees,omitempty"`
	SubsampleSize int     `json:"subsample_size,omitempty"`
	Nu            float64 `json:"nu,omitempty"`
	Gamma         float64 `json:"gamma,omitempty"` // 0 means 1/(dim*var)
	Seed          int64   `json:"seed,omitempty"`
}

const (
	defaultContamination = 0.1
	defaultTrees         = 100
	defaultSubsample     = 256
	defaultNu            = 0.1
	defaultSeed          = 42
)

func (p Params) withDefaults() Params {
	if p.Contamination <= 0 || p.Contamination >= 1 {
		p.Contamination = defaultContamination
	}
	if p.Trees <= 0 {
		p.Trees = defaultTrees
	}
	if p.SubsampleSize <= 0 {
		p.SubsampleSize = defaultSubsample
	}
	if p.Nu <= 0 || p.Nu >= 1 {
		p.Nu = defaultNu
	}
	if p.Seed == 0 {
		p.Seed = defaultSeed
	}
	return p
}

// Fit trains an outlier detector of the requested kind on the given feature
// matrix. The matrix is expected to be scaled already.
func Fit(kind models.ClassifierKind, p Params, x [][]float64) (Detector, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, ErrNumericInstability
	}
	p = p.withDefaults()
	rng := rand.New(rand.NewSource(p.Seed))

	switch kind {
	case models.KindIsolationForest:
		return fitForest(p, x, rng)
	case models.KindOneClassBoundary:
		return fitBoundary(p, x)
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
}

// quantile returns the q-th quantile of values (0 <= q <= 1), computed on a
// sorted copy. Used to place decision offsets at the contamination/nu level.
func quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
