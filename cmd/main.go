package main

import (
	"log"
	"time"

	"github.com/structeye/internal/alert"
	"github.com/structeye/internal/anomaly"
	"github.com/structeye/internal/api"
	"github.com/structeye/internal/auth"
	"github.com/structeye/internal/classifier"
	"github.com/structeye/internal/config"
	"github.com/structeye/internal/database"
	"github.com/structeye/internal/engine"
	"github.com/structeye/internal/models"
	"github.com/structeye/internal/monitor"
	"github.com/structeye/internal/notify"
	"github.com/structeye/internal/sensor"
)

func main() {
	cfg := config.LoadConfig()

	if err := database.Initialize(cfg.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	db := database.GetDB()
	auth.Init(cfg.Server.JWTSecret)
	ensureAdminUser()

	thresholds := alert.Thresholds{
		Vibration:   alert.Band(cfg.Thresholds.Vibration),
		Strain:      alert.Band(cfg.Thresholds.Strain),
		Temperature: alert.Band(cfg.Thresholds.Temperature),
	}

	store := classifier.NewStore(db, classifier.Config{
		WindowSize:      cfg.Training.WindowSize,
		Lookback:        time.Duration(cfg.Training.LookbackDays) * 24 * time.Hour,
		MinSamples:      cfg.Training.MinSamples,
		RetrainInterval: time.Duration(cfg.Training.RetrainIntervalHours) * time.Hour,
	})

	kind := models.ClassifierKind(cfg.Training.DefaultKind)
	scorer := anomaly.NewScorer(store, kind)
	evaluator := alert.NewEvaluator(thresholds)

	gatewayTimeout := time.Duration(cfg.Alert.GatewayTimeoutSeconds) * time.Second

	var email notify.EmailGateway
	if cfg.Alert.Email.Enabled {
		email = notify.NewSMTPGateway(cfg.Alert.Email.SMTPHost, cfg.Alert.Email.SMTPPort,
			cfg.Alert.Email.From, cfg.Alert.Email.Password)
	}
	var sms notify.SMSGateway
	if cfg.Alert.SMS.Enabled {
		sms = notify.NewTwilioGateway(cfg.Alert.SMS.AccountSID, cfg.Alert.SMS.AuthToken,
			cfg.Alert.SMS.FromNumber, gatewayTimeout)
	}
	var chat notify.ChatGateway
	slackRecipient := ""
	if cfg.Alert.Slack.Enabled {
		chat = notify.NewSlackGateway(cfg.Alert.Slack.Token, cfg.Alert.Slack.Channel)
		slackRecipient = cfg.Alert.Slack.Channel
	}

	gate := alert.NewFatigueGate(db,
		time.Duration(cfg.Alert.FatigueWindowMinutes)*time.Minute,
		cfg.Alert.FatigueCap)

	dispatcher := alert.NewDispatcher(db, gate, email, sms, chat, alert.DispatcherConfig{
		EmailRecipients: cfg.Alert.Email.Recipients,
		SMSRecipients:   cfg.Alert.SMS.Recipients,
		SlackRecipient:  slackRecipient,
		GatewayTimeout:  gatewayTimeout,
	})

	eng := engine.New(db, scorer, evaluator, dispatcher, store)
	simulator := sensor.NewSimulator(0)

	sampler := monitor.NewSampler(eng, store, simulator, kind,
		time.Duration(cfg.Sampling.IntervalSeconds)*time.Second,
		time.Duration(cfg.Sampling.RetrainCheckSeconds)*time.Second,
		cfg.Sampling.Enabled)
	sampler.Start()
	defer sampler.Stop()

	server := api.NewServer(eng, simulator, thresholds)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminUser bootstraps a default admin account on first run so the API
// is reachable before any user management happens.
func ensureAdminUser() {
	db := database.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Warning: failed to count users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	admin := models.User{
		Username: "admin",
		Role:     models.RoleAdmin,
		Email:    "admin@localhost",
		IsActive: true,
	}
	if err := admin.SetPassword("structeye"); err != nil {
		log.Printf("Warning: failed to hash default admin password: %v", err)
		return
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Warning: failed to create default admin user: %v", err)
		return
	}
	log.Printf("Created default admin user (change the password)")
}
