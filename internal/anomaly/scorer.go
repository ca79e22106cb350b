package anomaly

import (
	"errors"
	"log"

	"github.com/structeye/internal/classifier"
	"github.com/structeye/internal/features"
	"github.com/structeye/internal/ml"
	"github.com/structeye/internal/models"
)

// ModelSource is what the scorer needs from the classifier store. Training is
// part of the contract because the scorer bootstraps a model on first use.
type ModelSource interface {
	ActiveModel(kind models.ClassifierKind) (*classifier.Handle, error)
	Train(kind models.ClassifierKind, params ml.Params) (*models.ClassifierSnapshot, error)
}

// Scorer labels readings using the active model of its configured kind.
type Scorer struct {
	source ModelSource
	kind   models.ClassifierKind
}

func NewScorer(source ModelSource, kind models.ClassifierKind) *Scorer {
	return &Scorer{source: source, kind: kind}
}

// Score returns (isAnomaly, decision score) for a reading. Anomaly detection
// is advisory: if no model exists and the bootstrap train fails, it degrades
// to (false, 0) so the raw threshold checks still run.
//
// The handle is read once per call, so a concurrent retrain never mixes an
// old scaler with a new detector.
func (s *Scorer) Score(r *models.SensorReading) (bool, float64) {
	handle, err := s.source.ActiveModel(s.kind)
	if errors.Is(err, classifier.ErrNotTrained) {
		if _, trainErr := s.source.Train(s.kind, ml.Params{}); trainErr != nil {
			log.Printf("Could not bootstrap %s model for scoring: %v", s.kind, trainErr)
			return false, 0
		}
		handle, err = s.source.ActiveModel(s.kind)
	}
	if err != nil {
		log.Printf("Error loading active %s model: %v", s.kind, err)
		return false, 0
	}

	x := handle.Scaler.Transform(features.Vector(r))
	return handle.Detector.Predict(x) == -1, handle.Detector.Score(x)
}
