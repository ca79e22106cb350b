package alert

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/structeye/internal/database"
	"github.com/structeye/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(conn))
	return conn
}

func insertRecord(t *testing.T, db *gorm.DB, level models.AlertLevel, success bool, sentAt time.Time) {
	t.Helper()

	rec := models.AlertRecord{
		ReadingID: 1,
		Channel:   models.ChannelEmail,
		Level:     level,
		Recipient: "ops@example.com",
		SentAt:    sentAt,
		Success:   success,
	}
	require.NoError(t, db.Create(&rec).Error)
}

func TestFatigueGateBoundary(t *testing.T) {
	db := newTestDB(t)
	gate := NewFatigueGate(db, time.Hour, 5)
	now := time.Now().UTC()

	// Four recent successes: the fifth send is still allowed.
	for i := 0; i < 4; i++ {
		insertRecord(t, db, models.AlertLevelCritical, true, now.Add(-time.Minute))
	}
	assert.True(t, gate.Allow(models.AlertLevelCritical))

	// The fifth success closes the window.
	insertRecord(t, db, models.AlertLevelCritical, true, now.Add(-time.Minute))
	assert.False(t, gate.Allow(models.AlertLevelCritical))
}

func TestFatigueGateIgnoresFailedAttempts(t *testing.T) {
	db := newTestDB(t)
	gate := NewFatigueGate(db, time.Hour, 5)
	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		insertRecord(t, db, models.AlertLevelCritical, false, now.Add(-time.Minute))
	}

	assert.True(t, gate.Allow(models.AlertLevelCritical))
}

func TestFatigueGateCountsPerSeverity(t *testing.T) {
	db := newTestDB(t)
	gate := NewFatigueGate(db, time.Hour, 5)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		insertRecord(t, db, models.AlertLevelWarning, true, now.Add(-time.Minute))
	}

	assert.False(t, gate.Allow(models.AlertLevelWarning))
	assert.True(t, gate.Allow(models.AlertLevelCritical))
}

func TestFatigueGateWindowRollsOff(t *testing.T) {
	db := newTestDB(t)
	gate := NewFatigueGate(db, time.Hour, 5)
	now := time.Now().UTC()

	// Old records outside the window no longer count against the cap.
	for i := 0; i < 5; i++ {
		insertRecord(t, db, models.AlertLevelCritical, true, now.Add(-2*time.Hour))
	}

	assert.True(t, gate.Allow(models.AlertLevelCritical))
}
