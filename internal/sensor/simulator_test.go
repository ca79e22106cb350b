package sensor

import (
	"testing"
	"time"

	"github.com/structeye/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGenerateBounds(t *testing.T) {
	sim := NewSimulator(1)
	now := time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		r := sim.Generate(now.Add(time.Duration(i) * time.Minute))

		assert.GreaterOrEqual(t, r.Vibration, 0.1)
		assert.GreaterOrEqual(t, r.Strain, 0.0)
		assert.LessOrEqual(t, r.Strain, 0.8)
		assert.GreaterOrEqual(t, r.Temperature, 20.0)
		assert.LessOrEqual(t, r.Temperature, 40.0)
		assert.Equal(t, models.AlertLevelNormal, r.AlertLevel)
	}
}

func TestGenerateStampsUTC(t *testing.T) {
	sim := NewSimulator(1)
	loc := time.FixedZone("UTC+5", 5*3600)

	r := sim.Generate(time.Date(2024, 1, 3, 14, 0, 0, 0, loc))

	assert.Equal(t, time.UTC, r.Timestamp.Location())
}

func TestGenerateReproducibleWithSeed(t *testing.T) {
	now := time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC)

	a := NewSimulator(7).Generate(now)
	b := NewSimulator(7).Generate(now)

	assert.Equal(t, a.Vibration, b.Vibration)
	assert.Equal(t, a.Strain, b.Strain)
	assert.Equal(t, a.Temperature, b.Temperature)
}
