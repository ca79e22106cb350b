package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.Server.Port)

	assert.Equal(t, 2.0, cfg.Thresholds.Vibration.Warning)
	assert.Equal(t, 2.5, cfg.Thresholds.Vibration.Critical)
	assert.Equal(t, 0.5, cfg.Thresholds.Strain.Warning)
	assert.Equal(t, 0.7, cfg.Thresholds.Strain.Critical)
	assert.Equal(t, 35.0, cfg.Thresholds.Temperature.Warning)
	assert.Equal(t, 40.0, cfg.Thresholds.Temperature.Critical)

	assert.Equal(t, 1000, cfg.Training.WindowSize)
	assert.Equal(t, 7, cfg.Training.LookbackDays)
	assert.Equal(t, 50, cfg.Training.MinSamples)
	assert.Equal(t, 24, cfg.Training.RetrainIntervalHours)
	assert.Equal(t, "isolation-forest", cfg.Training.DefaultKind)

	assert.Equal(t, 5, cfg.Alert.FatigueCap)
	assert.Equal(t, 60, cfg.Alert.FatigueWindowMinutes)
	assert.Equal(t, 10, cfg.Alert.GatewayTimeoutSeconds)
	assert.False(t, cfg.Alert.Email.Enabled)
	assert.False(t, cfg.Alert.SMS.Enabled)
}
