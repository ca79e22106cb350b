package engine

import (
	"context"
	"log"
	"time"

	"github.com/structeye/internal/alert"
	"github.com/structeye/internal/anomaly"
	"github.com/structeye/internal/classifier"
	"github.com/structeye/internal/ml"
	"github.com/structeye/internal/models"
	"gorm.io/gorm"
)

// Engine is the in-process surface the web layer and CLI consume: score,
// evaluate, dispatch, plus model lifecycle and audit queries.
type Engine struct {
	db         *gorm.DB
	scorer     *anomaly.Scorer
	evaluator  *alert.Evaluator
	dispatcher *alert.Dispatcher
	store      *classifier.Store
}

func New(db *gorm.DB, scorer *anomaly.Scorer, evaluator *alert.Evaluator, dispatcher *alert.Dispatcher, store *classifier.Store) *Engine {
	return &Engine{
		db:         db,
		scorer:     scorer,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		store:      store,
	}
}

// ProcessedReading is a reading enriched with the breach messages and the
// dispatch outcome of one processing pass.
type ProcessedReading struct {
	models.SensorReading
	Messages []string     `json:"alert_messages"`
	Dispatch alert.Status `json:"dispatch_status"`
}

// ProcessReading runs scorer, evaluator and dispatcher over one reading and
// always returns a result. Scoring and dispatch failures degrade to logged
// defaults; the threshold path is never skipped because of them.
func (e *Engine) ProcessReading(ctx context.Context, r *models.SensorReading) *ProcessedReading {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.AlertLevel == "" {
		r.AlertLevel = models.AlertLevelNormal
	}
	if r.ID == 0 {
		if err := e.db.Create(r).Error; err != nil {
			log.Printf("Error saving sensor reading: %v", err)
		}
	}

	isAnomaly, score := e.scorer.Score(r)
	r.IsAnomaly = isAnomaly
	r.AnomalyScore = score
	if r.ID != 0 {
		if err := e.db.Model(r).Updates(map[string]interface{}{
			"is_anomaly":    isAnomaly,
			"anomaly_score": score,
		}).Error; err != nil {
			log.Printf("Error updating reading %d with prediction: %v", r.ID, err)
		}
	}

	level, messages := e.evaluator.Evaluate(r)
	// Only ever upgrade the stored level.
	if level.Rank() > r.AlertLevel.Rank() {
		r.AlertLevel = level
		if r.ID != 0 {
			if err := e.db.Model(r).Update("alert_level", level).Error; err != nil {
				log.Printf("Error updating reading %d alert level: %v", r.ID, err)
			}
		}
	}

	result, err := e.dispatcher.Dispatch(ctx, r, level, messages)
	if err != nil {
		log.Printf("Error dispatching alert for reading %d: %v", r.ID, err)
		result = &alert.Result{Status: alert.StatusNoAlert}
	}

	return &ProcessedReading{
		SensorReading: *r,
		Messages:      messages,
		Dispatch:      result.Status,
	}
}

// TrainModel fits a new model of the given kind with caller-supplied params.
func (e *Engine) TrainModel(kind models.ClassifierKind, params ml.Params) (*models.ClassifierSnapshot, error) {
	return e.store.Train(kind, params)
}

// ModelInfo returns the active snapshot for a kind.
func (e *Engine) ModelInfo(kind models.ClassifierKind) (*models.ClassifierSnapshot, error) {
	return e.store.Info(kind)
}

// AlertHistory returns the most recent delivery attempts, newest first.
func (e *Engine) AlertHistory(limit int) ([]models.AlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.AlertRecord
	if err := e.db.Order("sent_at desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
