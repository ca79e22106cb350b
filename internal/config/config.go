package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ThresholdBand struct {
	Warning  float64
	Critical float64
}

type Config struct {
	Server struct {
		Port      int
		JWTSecret string
	}
	Database struct {
		Path string
	}
	Thresholds struct {
		Vibration   ThresholdBand
		Strain      ThresholdBand
		Temperature ThresholdBand
	}
	Training struct {
		WindowSize           int
		LookbackDays         int
		MinSamples           int
		RetrainIntervalHours int
		DefaultKind          string
	}
	Alert struct {
		FatigueCap            int
		FatigueWindowMinutes  int
		GatewayTimeoutSeconds int
		Email                 struct {
			Enabled    bool
			SMTPHost   string
			SMTPPort   int
			From       string
			Password   string
			Recipients []string
		}
		SMS struct {
			Enabled    bool
			AccountSID string
			AuthToken  string
			FromNumber string
			Recipients []string
		}
		Slack struct {
			Enabled bool
			Token   string
			Channel string
		}
	}
	Sampling struct {
		Enabled             bool
		IntervalSeconds     int
		RetrainCheckSeconds int
	}
}

// LoadConfig reads config.yaml from the working directory, falling back to
// built-in defaults for anything not set.
func LoadConfig() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		fmt.Printf("Error unmarshaling config: %v\n", err)
	}

	return &config
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.jwtsecret", "structeye-dev-secret")
	viper.SetDefault("database.path", "data/structeye.db")

	viper.SetDefault("thresholds.vibration.warning", 2.0)
	viper.SetDefault("thresholds.vibration.critical", 2.5)
	viper.SetDefault("thresholds.strain.warning", 0.5)
	viper.SetDefault("thresholds.strain.critical", 0.7)
	viper.SetDefault("thresholds.temperature.warning", 35.0)
	viper.SetDefault("thresholds.temperature.critical", 40.0)

	viper.SetDefault("training.windowsize", 1000)
	viper.SetDefault("training.lookbackdays", 7)
	viper.SetDefault("training.minsamples", 50)
	viper.SetDefault("training.retrainintervalhours", 24)
	viper.SetDefault("training.defaultkind", "isolation-forest")

	viper.SetDefault("alert.fatiguecap", 5)
	viper.SetDefault("alert.fatiguewindowminutes", 60)
	viper.SetDefault("alert.gatewaytimeoutseconds", 10)
	viper.SetDefault("alert.email.enabled", false)
	viper.SetDefault("alert.email.smtpport", 587)
	viper.SetDefault("alert.sms.enabled", false)
	viper.SetDefault("alert.slack.enabled", false)

	viper.SetDefault("sampling.enabled", true)
	viper.SetDefault("sampling.intervalseconds", 30)
	viper.SetDefault("sampling.retraincheckseconds", 3600)
}
