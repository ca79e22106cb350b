package alert

import (
	"log"
	"time"

	"github.com/structeye/internal/models"
	"gorm.io/gorm"
)

// FatigueGate rate-limits alerts per severity by counting recent successful
// delivery records in the audit trail. No separate counter state; the window
// query is bounded and the audit table is indexed on sent_at and level.
type FatigueGate struct {
	db     *gorm.DB
	window time.Duration
	cap    int
}

func NewFatigueGate(db *gorm.DB, window time.Duration, cap int) *FatigueGate {
	return &FatigueGate{db: db, window: window, cap: cap}
}

// Allow reports whether another alert of the given severity may be sent.
// The cap-th successful record inside the window denies further sends.
// A failed count query allows the send; suppression must not hide alerts.
func (g *FatigueGate) Allow(level models.AlertLevel) bool {
	since := time.Now().UTC().Add(-g.window)

	var count int64
	err := g.db.Model(&models.AlertRecord{}).
		Where("level = ? AND success = ? AND sent_at >= ?", level, true, since).
		Count(&count).Error
	if err != nil {
		log.Printf("Error counting recent %s alerts: %v", level, err)
		return true
	}

	return count < int64(g.cap)
}
