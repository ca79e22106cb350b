package alert

import (
	"strings"
	"testing"
	"time"

	"github.com/structeye/internal/models"
	"github.com/stretchr/testify/assert"
)

func renderTestReading() *models.SensorReading {
	return &models.SensorReading{
		Timestamp:    time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC),
		Vibration:    2.6,
		Strain:       0.3,
		Temperature:  25,
		IsAnomaly:    true,
		AnomalyScore: -0.123,
	}
}

func TestRenderEmailSubject(t *testing.T) {
	assert.Equal(t, "StructEye Alert - CRITICAL", renderEmailSubject(models.AlertLevelCritical))
	assert.Equal(t, "StructEye Alert - WARNING", renderEmailSubject(models.AlertLevelWarning))
}

func TestRenderEmailBody(t *testing.T) {
	body := renderEmailBody(renderTestReading(), models.AlertLevelCritical,
		[]string{"Vibration critical: 2.6 >= 2.5"})

	assert.Contains(t, body, "Alert Level: CRITICAL")
	assert.Contains(t, body, "Timestamp: 2024-01-03 14:30:00")
	assert.Contains(t, body, "- Vibration: 2.6")
	assert.Contains(t, body, "• Vibration critical: 2.6 >= 2.5")
	assert.Contains(t, body, "- Is Anomaly: true")
	assert.Contains(t, body, "- Anomaly Score: -0.123")
}

func TestRenderSMSBody(t *testing.T) {
	body := renderSMSBody(renderTestReading(), models.AlertLevelCritical,
		[]string{"Vibration critical: 2.6 >= 2.5", "Strain critical: 0.8 >= 0.7"})

	assert.True(t, strings.HasPrefix(body, "STRUCTEYE CRITICAL ALERT at 14:30:"))
	assert.Contains(t, body, "V:2.6 S:0.3 T:25°C")
	// Only the first breach message fits an SMS.
	assert.Contains(t, body, "Vibration critical")
	assert.NotContains(t, body, "Strain critical")
}

func TestRenderSMSBodyTruncated(t *testing.T) {
	long := strings.Repeat("vibration exceeded the configured threshold ", 10)
	body := renderSMSBody(renderTestReading(), models.AlertLevelCritical, []string{long})

	assert.LessOrEqual(t, len(body), smsMaxLength)
}

func TestRenderChatText(t *testing.T) {
	text := renderChatText(renderTestReading(), []string{"Vibration critical: 2.6 >= 2.5"})

	assert.Contains(t, text, "Vibration critical: 2.6 >= 2.5")
	assert.Contains(t, text, "Anomaly: true (score -0.123)")
}
