package features

import "github.com/structeye/internal/models"

// Dim is the fixed length of every feature vector.
const Dim = 5

// Vector maps a reading to [vibration, strain, temperature, hour, weekday].
// Hour and weekday come from the UTC timestamp so the classifier can pick up
// diurnal and weekly patterns.
func Vector(r *models.SensorReading) []float64 {
	ts := r.Timestamp.UTC()
	return []float64{
		r.Vibration,
		r.Strain,
		r.Temperature,
		float64(ts.Hour()),
		float64(ts.Weekday()),
	}
}

// Matrix vectorizes a batch of readings in order.
func Matrix(readings []models.SensorReading) [][]float64 {
	out := make([][]float64, len(readings))
	for i := range readings {
		out[i] = Vector(&readings[i])
	}
	return out
}
