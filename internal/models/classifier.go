package models

import "time"

type ClassifierKind string

const (
	KindIsolationForest  ClassifierKind = "isolation-forest"
	KindOneClassBoundary ClassifierKind = "one-class-boundary"
)

// ClassifierSnapshot records metadata for one trained model version.
// At most one snapshot per kind is active; the fitted artifact itself lives
// only in the classifier store's in-memory slot and is never serialized.
type ClassifierSnapshot struct {
	ID               uint           `json:"id" gorm:"primarykey"`
	Name             string         `json:"name" gorm:"not null"`
	Kind             ClassifierKind `json:"kind" gorm:"index;not null"`
	TrainingDataSize int            `json:"training_data_size" gorm:"not null"`
	CreatedAt        time.Time      `json:"created_at"`
	IsActive         bool           `json:"is_active" gorm:"index"`
	Params           string         `json:"params"` // hyperparameters as JSON
}
