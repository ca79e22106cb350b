package models

import "time"

type AlertLevel string

const (
	AlertLevelNormal   AlertLevel = "normal"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

// Rank orders alert levels so that a reading's level can be upgraded but
// never downgraded within a single evaluation pass.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertLevelCritical:
		return 2
	case AlertLevelWarning:
		return 1
	default:
		return 0
	}
}

// SensorReading is one structural sensor sample. The scorer fills the
// anomaly fields, the dispatcher flips AlertSent; nothing deletes rows.
type SensorReading struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Timestamp   time.Time `json:"timestamp" gorm:"index;not null"`
	Vibration   float64   `json:"vibration" gorm:"not null"`
	Strain      float64   `json:"strain" gorm:"not null"`
	Temperature float64   `json:"temperature" gorm:"not null"`

	IsAnomaly    bool    `json:"is_anomaly" gorm:"index;default:false"`
	AnomalyScore float64 `json:"anomaly_score" gorm:"default:0"`

	AlertLevel AlertLevel `json:"alert_level" gorm:"index;default:normal"`
	AlertSent  bool       `json:"alert_sent" gorm:"default:false"`
}
