package engine

import (
	"context"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/structeye/internal/alert"
	"github.com/structeye/internal/anomaly"
	"github.com/structeye/internal/classifier"
	"github.com/structeye/internal/database"
	"github.com/structeye/internal/ml"
	"github.com/structeye/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type captureEmail struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureEmail) Send(ctx context.Context, subject, body, recipient string) error {
	c.mu.Lock()
	c.sent = append(c.sent, recipient)
	c.mu.Unlock()
	return nil
}

type testHarness struct {
	db     *gorm.DB
	engine *Engine
	email  *captureEmail
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	seedNormalReadings(t, db, 80)

	store := classifier.NewStore(db, classifier.DefaultConfig())
	scorer := anomaly.NewScorer(store, models.KindIsolationForest)
	evaluator := alert.NewEvaluator(alert.DefaultThresholds())
	gate := alert.NewFatigueGate(db, time.Hour, 5)
	email := &captureEmail{}
	dispatcher := alert.NewDispatcher(db, gate, email, nil, nil, alert.DispatcherConfig{
		EmailRecipients: []string{"ops@example.com"},
		GatewayTimeout:  time.Second,
	})

	return &testHarness{
		db:     db,
		engine: New(db, scorer, evaluator, dispatcher, store),
		email:  email,
	}
}

func seedNormalReadings(t *testing.T, db *gorm.DB, n int) {
	t.Helper()

	rng := rand.New(rand.NewSource(21))
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		r := models.SensorReading{
			Timestamp:   now.Add(-time.Duration(i+1) * time.Minute),
			Vibration:   1.0 + rng.NormFloat64()*0.2,
			Strain:      0.3 + rng.NormFloat64()*0.05,
			Temperature: 25 + rng.NormFloat64()*2,
			AlertLevel:  models.AlertLevelNormal,
		}
		require.NoError(t, db.Create(&r).Error)
	}
}

func TestProcessReadingNormal(t *testing.T) {
	h := newHarness(t)

	processed := h.engine.ProcessReading(context.Background(), &models.SensorReading{
		Vibration:   1.0,
		Strain:      0.3,
		Temperature: 25,
	})

	assert.Equal(t, models.AlertLevelNormal, processed.AlertLevel)
	assert.Empty(t, processed.Messages)
	assert.Equal(t, alert.StatusNoAlert, processed.Dispatch)
	assert.NotZero(t, processed.ID)
	assert.Empty(t, h.email.sent)
}

func TestProcessReadingCriticalDispatches(t *testing.T) {
	h := newHarness(t)

	processed := h.engine.ProcessReading(context.Background(), &models.SensorReading{
		Vibration:   2.6,
		Strain:      0.3,
		Temperature: 25,
	})

	assert.Equal(t, models.AlertLevelCritical, processed.AlertLevel)
	assert.Equal(t, []string{"Vibration critical: 2.6 >= 2.5"}, processed.Messages)
	assert.Equal(t, alert.StatusDispatched, processed.Dispatch)
	assert.True(t, processed.AlertSent)
	assert.Equal(t, []string{"ops@example.com"}, h.email.sent)

	// The persisted row carries the enriched fields.
	var stored models.SensorReading
	require.NoError(t, h.db.First(&stored, processed.ID).Error)
	assert.Equal(t, models.AlertLevelCritical, stored.AlertLevel)
	assert.True(t, stored.AlertSent)
}

func TestProcessReadingPersistsPrediction(t *testing.T) {
	h := newHarness(t)

	processed := h.engine.ProcessReading(context.Background(), &models.SensorReading{
		Vibration:   1.0,
		Strain:      0.3,
		Temperature: 25,
	})

	var stored models.SensorReading
	require.NoError(t, h.db.First(&stored, processed.ID).Error)
	assert.Equal(t, processed.IsAnomaly, stored.IsAnomaly)
	assert.InDelta(t, processed.AnomalyScore, stored.AnomalyScore, 1e-9)
}

func TestProcessReadingSuppressedAfterFatigueCap(t *testing.T) {
	h := newHarness(t)

	critical := func() *ProcessedReading {
		return h.engine.ProcessReading(context.Background(), &models.SensorReading{
			Vibration:   2.6,
			Strain:      0.3,
			Temperature: 25,
		})
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, alert.StatusDispatched, critical().Dispatch)
	}

	sixth := critical()
	assert.Equal(t, alert.StatusSuppressed, sixth.Dispatch)
	assert.False(t, sixth.AlertSent)
	assert.Len(t, h.email.sent, 5)
}

func TestTrainModelAndModelInfo(t *testing.T) {
	h := newHarness(t)

	snapshot, err := h.engine.TrainModel(models.KindOneClassBoundary, ml.Params{Nu: 0.05})
	require.NoError(t, err)
	assert.Equal(t, models.KindOneClassBoundary, snapshot.Kind)

	info, err := h.engine.ModelInfo(models.KindOneClassBoundary)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, info.ID)
	assert.True(t, info.IsActive)
}

func TestModelInfoUntrainedKind(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.ModelInfo(models.KindOneClassBoundary)
	assert.ErrorIs(t, err, classifier.ErrNotFound)
}

func TestAlertHistoryNewestFirst(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		rec := models.AlertRecord{
			ReadingID: uint(i + 1),
			Channel:   models.ChannelEmail,
			Level:     models.AlertLevelCritical,
			Recipient: "ops@example.com",
			SentAt:    now.Add(-time.Duration(i) * time.Minute),
			Success:   true,
		}
		require.NoError(t, h.db.Create(&rec).Error)
	}

	records, err := h.engine.AlertHistory(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].SentAt.After(records[1].SentAt))
}

func TestAlertStatistics(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	insert := func(channel models.Channel, level models.AlertLevel, success bool, sentAt time.Time) {
		rec := models.AlertRecord{
			ReadingID: 1,
			Channel:   channel,
			Level:     level,
			Recipient: "ops@example.com",
			SentAt:    sentAt,
			Success:   success,
		}
		require.NoError(t, h.db.Create(&rec).Error)
	}

	insert(models.ChannelEmail, models.AlertLevelCritical, true, now.Add(-time.Minute))
	insert(models.ChannelEmail, models.AlertLevelWarning, true, now.Add(-time.Minute))
	insert(models.ChannelSMS, models.AlertLevelCritical, false, now.Add(-time.Minute))
	// Outside the window, must not count.
	insert(models.ChannelEmail, models.AlertLevelCritical, true, now.Add(-48*time.Hour))

	stats, err := h.engine.AlertStatistics(24)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Failed)
	assert.EqualValues(t, 2, stats.ByChannel[models.ChannelEmail])
	assert.EqualValues(t, 1, stats.ByChannel[models.ChannelSMS])
	assert.EqualValues(t, 2, stats.BySeverity[models.AlertLevelCritical])
	assert.EqualValues(t, 1, stats.BySeverity[models.AlertLevelWarning])
	assert.InDelta(t, 66.7, stats.SuccessRate, 0.01)
}

func TestReadingsBetween(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	readings, err := h.engine.ReadingsBetween(now.Add(-10*time.Minute-30*time.Second), now)
	require.NoError(t, err)

	// Seeded readings are one per minute going back; the window holds ten of
	// them, oldest first.
	require.Len(t, readings, 10)
	assert.True(t, readings[0].Timestamp.Before(readings[9].Timestamp))
}

func TestSensorStatistics(t *testing.T) {
	h := newHarness(t)

	stats, err := h.engine.SensorStatistics()
	require.NoError(t, err)

	assert.EqualValues(t, 80, stats.TotalReadings)
	assert.InDelta(t, 25, stats.AvgTemperature, 2)
	assert.InDelta(t, 1.0, stats.AvgVibration, 0.2)
}
