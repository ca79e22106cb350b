package alert

import (
	"fmt"

	"github.com/structeye/internal/models"
)

// Band holds the warning and critical floors for one metric.
type Band struct {
	Warning  float64
	Critical float64
}

// Thresholds is the immutable threshold table supplied at startup.
type Thresholds struct {
	Vibration   Band
	Strain      Band
	Temperature Band
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Vibration:   Band{Warning: 2.0, Critical: 2.5},
		Strain:      Band{Warning: 0.5, Critical: 0.7},
		Temperature: Band{Warning: 35.0, Critical: 40.0},
	}
}

// Evaluator is the stateless rule engine mapping raw values to an alert
// level and breach messages.
type Evaluator struct {
	thresholds Thresholds
}

func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks every metric against its floors and collects all qualifying
// breach messages. Critical on any metric dominates warning on any other.
func (e *Evaluator) Evaluate(r *models.SensorReading) (models.AlertLevel, []string) {
	level := models.AlertLevelNormal
	messages := []string{}

	checks := []struct {
		name  string
		value float64
		band  Band
	}{
		{"Vibration", r.Vibration, e.thresholds.Vibration},
		{"Strain", r.Strain, e.thresholds.Strain},
		{"Temperature", r.Temperature, e.thresholds.Temperature},
	}

	for _, c := range checks {
		if c.value >= c.band.Critical {
			level = models.AlertLevelCritical
			messages = append(messages, fmt.Sprintf("%s critical: %g >= %g", c.name, c.value, c.band.Critical))
		} else if c.value >= c.band.Warning && level != models.AlertLevelCritical {
			level = models.AlertLevelWarning
			messages = append(messages, fmt.Sprintf("%s warning: %g >= %g", c.name, c.value, c.band.Warning))
		}
	}

	return level, messages
}
