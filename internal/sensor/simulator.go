package sensor

import (
	"math"
	"math/rand"
	"time"

	"github.com/structeye/internal/models"
)

// Simulator manufactures demo readings with realistic structure: temperature
// follows a daily curve, vibration correlates with temperature (thermal
// expansion), strain is noise.
type Simulator struct {
	rng *rand.Rand
}

func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces one reading stamped at the given time (UTC).
func (s *Simulator) Generate(now time.Time) *models.SensorReading {
	now = now.UTC()
	hour := float64(now.Hour())

	tempBase := 25 + 10*math.Abs(hour-12)/12
	temperature := round(tempBase+s.rng.Float64()*10-5, 1)

	vibrationBase := 0.5 + (temperature-20)*0.05
	vibration := round(math.Max(0.1, vibrationBase+s.rng.Float64()*2-0.5), 2)

	strain := round(s.rng.Float64()*0.8, 3)

	return &models.SensorReading{
		Timestamp:   now,
		Vibration:   vibration,
		Strain:      strain,
		Temperature: temperature,
		AlertLevel:  models.AlertLevelNormal,
	}
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
