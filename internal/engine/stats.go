package engine

import (
	"math"
	"time"

	"github.com/structeye/internal/models"
	"gorm.io/gorm"
)

// countQuery is a small helper for the repetitive windowed counts below.
type countQuery struct {
	db *gorm.DB
}

func (q *countQuery) where(cond string, args ...interface{}) *countQuery {
	q.db = q.db.Where(cond, args...)
	return q
}

func (q *countQuery) count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

// AlertStats summarizes the audit trail over a trailing window.
type AlertStats struct {
	Total       int64                       `json:"total"`
	Succeeded   int64                       `json:"succeeded"`
	Failed      int64                       `json:"failed"`
	ByChannel   map[models.Channel]int64    `json:"by_channel"`
	BySeverity  map[models.AlertLevel]int64 `json:"by_severity"`
	SuccessRate float64                     `json:"success_rate"`
}

// AlertStatistics aggregates delivery attempts over the last windowHours.
func (e *Engine) AlertStatistics(windowHours int) (*AlertStats, error) {
	if windowHours <= 0 {
		windowHours = 24
	}
	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)

	stats := &AlertStats{
		ByChannel:  make(map[models.Channel]int64),
		BySeverity: make(map[models.AlertLevel]int64),
	}

	base := func() *countQuery {
		return &countQuery{db: e.db.Model(&models.AlertRecord{}).Where("sent_at >= ?", since)}
	}

	var err error
	if stats.Total, err = base().count(); err != nil {
		return nil, err
	}
	if stats.Succeeded, err = base().where("success = ?", true).count(); err != nil {
		return nil, err
	}
	stats.Failed = stats.Total - stats.Succeeded

	for _, ch := range []models.Channel{models.ChannelEmail, models.ChannelSMS, models.ChannelSlack} {
		n, err := base().where("channel = ?", ch).count()
		if err != nil {
			return nil, err
		}
		stats.ByChannel[ch] = n
	}
	for _, lvl := range []models.AlertLevel{models.AlertLevelWarning, models.AlertLevelCritical} {
		n, err := base().where("level = ?", lvl).count()
		if err != nil {
			return nil, err
		}
		stats.BySeverity[lvl] = n
	}

	if stats.Total > 0 {
		stats.SuccessRate = math.Round(float64(stats.Succeeded)/float64(stats.Total)*1000) / 10
	}
	return stats, nil
}

// SensorStats summarizes raw readings over the last 24 hours.
type SensorStats struct {
	TotalReadings  int64   `json:"total_readings"`
	Anomalies      int64   `json:"anomalies"`
	Alerts         int64   `json:"alerts"`
	AvgTemperature float64 `json:"avg_temperature"`
	AvgVibration   float64 `json:"avg_vibration"`
	AvgStrain      float64 `json:"avg_strain"`
}

// SensorStatistics computes totals and averages over the trailing day.
func (e *Engine) SensorStatistics() (*SensorStats, error) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	stats := &SensorStats{}

	recent := func() *countQuery {
		return &countQuery{db: e.db.Model(&models.SensorReading{}).Where("timestamp >= ?", since)}
	}

	var err error
	if stats.TotalReadings, err = recent().count(); err != nil {
		return nil, err
	}
	if stats.TotalReadings == 0 {
		return stats, nil
	}
	if stats.Anomalies, err = recent().where("is_anomaly = ?", true).count(); err != nil {
		return nil, err
	}
	if stats.Alerts, err = recent().where("alert_level <> ?", models.AlertLevelNormal).count(); err != nil {
		return nil, err
	}

	type averages struct {
		Temperature float64
		Vibration   float64
		Strain      float64
	}
	var avg averages
	err = e.db.Model(&models.SensorReading{}).
		Where("timestamp >= ?", since).
		Select("AVG(temperature) as temperature, AVG(vibration) as vibration, AVG(strain) as strain").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	stats.AvgTemperature = math.Round(avg.Temperature*10) / 10
	stats.AvgVibration = math.Round(avg.Vibration*100) / 100
	stats.AvgStrain = math.Round(avg.Strain*1000) / 1000

	return stats, nil
}

// Readings returns the latest readings, newest first.
func (e *Engine) Readings(limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = 20
	}
	var readings []models.SensorReading
	if err := e.db.Order("timestamp desc").Limit(limit).Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// ReadingsBetween returns readings with timestamps in [start, end], oldest
// first.
func (e *Engine) ReadingsBetween(start, end time.Time) ([]models.SensorReading, error) {
	var readings []models.SensorReading
	if err := e.db.Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp asc").
		Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// Anomalies returns the latest anomalous readings, newest first.
func (e *Engine) Anomalies(limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = 50
	}
	var readings []models.SensorReading
	if err := e.db.Where("is_anomaly = ?", true).
		Order("timestamp desc").Limit(limit).
		Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}
