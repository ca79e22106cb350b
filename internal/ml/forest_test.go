package ml

import (
	"math/rand"
	"testing"

	"github.com/structeye/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusteredData builds a tight cluster around the origin.
func clusteredData(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([][]float64, n)
	for i := range data {
		data[i] = []float64{
			rng.NormFloat64() * 0.5,
			rng.NormFloat64() * 0.5,
		}
	}
	return data
}

func TestForestSeparatesOutliers(t *testing.T) {
	data := clusteredData(200, 1)

	det, err := Fit(models.KindIsolationForest, Params{Seed: 42}, data)
	require.NoError(t, err)

	inlier := []float64{0, 0}
	outlier := []float64{10, 10}

	assert.Equal(t, -1, det.Predict(outlier))
	assert.Less(t, det.Score(outlier), det.Score(inlier))
	assert.Negative(t, det.Score(outlier))
}

func TestForestReproducibleWithSeed(t *testing.T) {
	data := clusteredData(100, 2)
	point := []float64{3, -3}

	a, err := Fit(models.KindIsolationForest, Params{Seed: 7}, data)
	require.NoError(t, err)
	b, err := Fit(models.KindIsolationForest, Params{Seed: 7}, data)
	require.NoError(t, err)

	assert.Equal(t, a.Score(point), b.Score(point))
	assert.Equal(t, a.Predict(point), b.Predict(point))
}

func TestForestContaminationBoundsTrainingOutliers(t *testing.T) {
	data := clusteredData(200, 3)

	det, err := Fit(models.KindIsolationForest, Params{Contamination: 0.1, Seed: 42}, data)
	require.NoError(t, err)

	flagged := 0
	for _, row := range data {
		if det.Predict(row) == -1 {
			flagged++
		}
	}
	// The offset sits at the contamination quantile of training scores, so
	// roughly 10% of the training set lands below it.
	assert.InDelta(t, 20, flagged, 10)
}

func TestForestIdenticalPoints(t *testing.T) {
	data := make([][]float64, 60)
	for i := range data {
		data[i] = []float64{1, 1}
	}

	det, err := Fit(models.KindIsolationForest, Params{Seed: 42}, data)
	require.NoError(t, err)

	// Degenerate but must not panic or produce NaN.
	score := det.Score([]float64{1, 1})
	assert.False(t, score != score, "score must not be NaN")
}

func TestFitRejectsEmptyMatrix(t *testing.T) {
	_, err := Fit(models.KindIsolationForest, Params{}, nil)
	assert.ErrorIs(t, err, ErrNumericInstability)
}

func TestFitRejectsUnknownKind(t *testing.T) {
	_, err := Fit(models.ClassifierKind("perceptron"), Params{}, [][]float64{{1}})
	assert.Error(t, err)
}
