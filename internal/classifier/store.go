package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/structeye/internal/features"
	"github.com/structeye/internal/ml"
	"github.com/structeye/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientData means too few readings qualified for the training
	// window; callers should retry later or widen the lookback.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrNotTrained means no fitted model is held for the requested kind.
	ErrNotTrained = errors.New("no trained model available")
	// ErrNotFound means no snapshot row exists for the requested kind.
	ErrNotFound = errors.New("classifier snapshot not found")
)

// Handle pairs a fitted detector with the scaler it was trained with and the
// snapshot describing both. Handles are immutable once published.
type Handle struct {
	Snapshot models.ClassifierSnapshot
	Detector ml.Detector
	Scaler   *ml.Scaler
}

type Config struct {
	WindowSize      int
	Lookback        time.Duration
	MinSamples      int
	RetrainInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		WindowSize:      1000,
		Lookback:        7 * 24 * time.Hour,
		MinSamples:      50,
		RetrainInterval: 24 * time.Hour,
	}
}

// Action is the outcome of a RetrainIfDue call.
type Action string

const (
	ActionTrained  Action = "trained"
	ActionUpToDate Action = "up-to-date"
)

// Store owns the active model handle per classifier kind. The handle slot is
// an atomic pointer so scoring always sees a consistent (detector, scaler)
// pair while training swaps it out.
type Store struct {
	db      *gorm.DB
	cfg     Config
	mu      sync.Mutex // serializes training runs
	handles map[models.ClassifierKind]*atomic.Pointer[Handle]
}

func NewStore(db *gorm.DB, cfg Config) *Store {
	return &Store{
		db:  db,
		cfg: cfg,
		handles: map[models.ClassifierKind]*atomic.Pointer[Handle]{
			models.KindIsolationForest:  {},
			models.KindOneClassBoundary: {},
		},
	}
}

// Train selects the most recent readings inside the lookback horizon, fits a
// scaler plus detector, and persists a new active snapshot. Deactivating the
// prior snapshot and inserting the new one happen in one transaction.
func (s *Store) Train(kind models.ClassifierKind, params ml.Params) (*models.ClassifierSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-s.cfg.Lookback)
	var readings []models.SensorReading
	if err := s.db.Where("timestamp >= ?", cutoff).
		Order("timestamp desc").
		Limit(s.cfg.WindowSize).
		Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("failed to load training window: %w", err)
	}

	if len(readings) < s.cfg.MinSamples {
		return nil, fmt.Errorf("%w: %d readings, need %d", ErrInsufficientData, len(readings), s.cfg.MinSamples)
	}

	matrix := features.Matrix(readings)
	scaler, err := ml.FitScaler(matrix)
	if err != nil {
		return nil, fmt.Errorf("failed to fit scaler: %w", err)
	}

	detector, err := ml.Fit(kind, params, scaler.TransformAll(matrix))
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s: %w", kind, err)
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize params: %w", err)
	}

	snapshot := models.ClassifierSnapshot{
		Name:             fmt.Sprintf("%s_%s", kind, time.Now().UTC().Format("20060102_150405")),
		Kind:             kind,
		TrainingDataSize: len(readings),
		IsActive:         true,
		Params:           string(paramsJSON),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClassifierSnapshot{}).
			Where("kind = ? AND is_active = ?", kind, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&snapshot).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	s.handles[kind].Store(&Handle{
		Snapshot: snapshot,
		Detector: detector,
		Scaler:   scaler,
	})

	log.Printf("Trained %s with %d samples (snapshot %s)", kind, len(readings), snapshot.Name)
	return &snapshot, nil
}

// RetrainIfDue trains when no active snapshot exists or the active one is
// older than the retrain interval. Meant for a periodic scheduler.
func (s *Store) RetrainIfDue(kind models.ClassifierKind) (Action, error) {
	snapshot, err := s.Info(kind)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("No active %s snapshot, training new one", kind)
			if _, err := s.Train(kind, ml.Params{}); err != nil {
				return ActionUpToDate, err
			}
			return ActionTrained, nil
		}
		return ActionUpToDate, err
	}

	age := time.Since(snapshot.CreatedAt)
	if age <= s.cfg.RetrainInterval {
		return ActionUpToDate, nil
	}

	log.Printf("Active %s snapshot is %s old, retraining", kind, age.Round(time.Minute))
	if _, err := s.Train(kind, ml.Params{}); err != nil {
		return ActionUpToDate, err
	}
	return ActionTrained, nil
}

// ActiveModel returns the in-memory fitted model for scoring. Never touches
// the database; after a restart the slot is empty until the next train.
func (s *Store) ActiveModel(kind models.ClassifierKind) (*Handle, error) {
	slot, ok := s.handles[kind]
	if !ok {
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
	h := slot.Load()
	if h == nil {
		return nil, ErrNotTrained
	}
	return h, nil
}

// Info returns the active snapshot metadata for a kind.
func (s *Store) Info(kind models.ClassifierKind) (*models.ClassifierSnapshot, error) {
	var snapshot models.ClassifierSnapshot
	err := s.db.Where("kind = ? AND is_active = ?", kind, true).
		Order("created_at desc").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snapshot, nil
}
