package features

import (
	"testing"
	"time"

	"github.com/structeye/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVector(t *testing.T) {
	// Wednesday 2024-01-03 14:30 UTC
	ts := time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC)
	r := &models.SensorReading{
		Timestamp:   ts,
		Vibration:   1.2,
		Strain:      0.4,
		Temperature: 25.5,
	}

	v := Vector(r)

	assert.Len(t, v, Dim)
	assert.Equal(t, []float64{1.2, 0.4, 25.5, 14, 3}, v)
}

func TestVectorConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	r := &models.SensorReading{
		Timestamp: time.Date(2024, 1, 3, 2, 0, 0, 0, loc), // 21:00 UTC the day before
	}

	v := Vector(r)

	assert.Equal(t, 21.0, v[3])
	assert.Equal(t, float64(time.Tuesday), v[4])
}

func TestVectorDeterministic(t *testing.T) {
	r := &models.SensorReading{
		Timestamp:   time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Vibration:   2.0,
		Strain:      0.1,
		Temperature: 30,
	}

	assert.Equal(t, Vector(r), Vector(r))
}

func TestMatrix(t *testing.T) {
	readings := []models.SensorReading{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Vibration: 1},
		{Timestamp: time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), Vibration: 2},
	}

	m := Matrix(readings)

	assert.Len(t, m, 2)
	assert.Equal(t, 1.0, m[0][0])
	assert.Equal(t, 2.0, m[1][0])
	assert.Equal(t, 12.0, m[1][3])
}
