package alert

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/structeye/internal/models"
	"github.com/structeye/internal/notify"
	"gorm.io/gorm"
)

// Status classifies the outcome of a Dispatch call.
type Status string

const (
	StatusNoAlert     Status = "no_alert"
	StatusAlreadySent Status = "already_sent"
	StatusSuppressed  Status = "suppressed"
	StatusDispatched  Status = "dispatched"
)

// Result reports what a Dispatch call did. Attempts holds one audit record
// per delivery attempt, successful or not.
type Result struct {
	Status   Status               `json:"status"`
	Attempts []models.AlertRecord `json:"attempts,omitempty"`
}

type DispatcherConfig struct {
	EmailRecipients []string
	SMSRecipients   []string
	SlackRecipient  string // channel label for audit records; empty disables
	GatewayTimeout  time.Duration
}

// Dispatcher orchestrates fatigue gating and multi-channel delivery for one
// reading at a time. Gateways left nil are skipped. A per-reading mutex keeps
// concurrent dispatches for the same reading from double-sending; dispatches
// for different readings run in parallel.
type Dispatcher struct {
	db    *gorm.DB
	gate  *FatigueGate
	email notify.EmailGateway
	sms   notify.SMSGateway
	chat  notify.ChatGateway
	cfg   DispatcherConfig

	mu       sync.Mutex
	inflight map[uint]*readingLock
}

type readingLock struct {
	mu   sync.Mutex
	refs int
}

func NewDispatcher(db *gorm.DB, gate *FatigueGate, email notify.EmailGateway, sms notify.SMSGateway, chat notify.ChatGateway, cfg DispatcherConfig) *Dispatcher {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	return &Dispatcher{
		db:       db,
		gate:     gate,
		email:    email,
		sms:      sms,
		chat:     chat,
		cfg:      cfg,
		inflight: make(map[uint]*readingLock),
	}
}

// Dispatch runs the per-reading state machine: normal is a no-op, an already
// sent reading is a no-op, a fatigue denial suppresses without marking sent,
// otherwise every configured channel is attempted and the reading is marked
// sent regardless of individual outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, reading *models.SensorReading, level models.AlertLevel, messages []string) (*Result, error) {
	if level == models.AlertLevelNormal {
		return &Result{Status: StatusNoAlert}, nil
	}

	unlock := d.lockReading(reading.ID)
	defer unlock()

	sent, err := d.alreadySent(reading)
	if err != nil {
		return nil, err
	}
	if sent {
		return &Result{Status: StatusAlreadySent}, nil
	}

	if !d.gate.Allow(level) {
		log.Printf("Alert fatigue: suppressing %s alert for reading %d", level, reading.ID)
		return &Result{Status: StatusSuppressed}, nil
	}

	var attempts []models.AlertRecord

	if d.email != nil {
		subject := renderEmailSubject(level)
		body := renderEmailBody(reading, level, messages)
		for _, recipient := range d.cfg.EmailRecipients {
			attempts = append(attempts, d.attemptEmail(ctx, reading, level, subject, body, recipient))
		}
	}

	if level == models.AlertLevelCritical && d.sms != nil {
		body := renderSMSBody(reading, level, messages)
		for _, recipient := range d.cfg.SMSRecipients {
			attempts = append(attempts, d.attemptSMS(ctx, reading, level, body, recipient))
		}
	}

	if d.chat != nil && d.cfg.SlackRecipient != "" {
		attempts = append(attempts, d.attemptChat(ctx, reading, level, messages))
	}

	// Handled once attempted: gateway outages degrade to logged failures and
	// must not leave the reading eligible for re-dispatch.
	if err := d.db.Model(reading).Update("alert_sent", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark reading %d alert_sent: %w", reading.ID, err)
	}
	reading.AlertSent = true

	return &Result{Status: StatusDispatched, Attempts: attempts}, nil
}

func (d *Dispatcher) attemptEmail(ctx context.Context, reading *models.SensorReading, level models.AlertLevel, subject, body, recipient string) models.AlertRecord {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.GatewayTimeout)
	defer cancel()

	err := d.email.Send(sendCtx, subject, body, recipient)
	if err != nil {
		log.Printf("Error sending email alert to %s for reading %d: %v", recipient, reading.ID, err)
		return d.record(reading.ID, models.ChannelEmail, level, recipient, "", err)
	}

	log.Printf("Email alert sent to %s for reading %d", recipient, reading.ID)
	return d.record(reading.ID, models.ChannelEmail, level, recipient, body, nil)
}

func (d *Dispatcher) attemptSMS(ctx context.Context, reading *models.SensorReading, level models.AlertLevel, body, recipient string) models.AlertRecord {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.GatewayTimeout)
	defer cancel()

	sid, err := d.sms.Send(sendCtx, body, recipient)
	if err != nil {
		log.Printf("Error sending SMS alert to %s for reading %d: %v", recipient, reading.ID, err)
		return d.record(reading.ID, models.ChannelSMS, level, recipient, "", err)
	}

	log.Printf("SMS alert sent to %s for reading %d, sid %s", recipient, reading.ID, sid)
	return d.record(reading.ID, models.ChannelSMS, level, recipient, body, nil)
}

func (d *Dispatcher) attemptChat(ctx context.Context, reading *models.SensorReading, level models.AlertLevel, messages []string) models.AlertRecord {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.GatewayTimeout)
	defer cancel()

	title := renderEmailSubject(level)
	text := renderChatText(reading, messages)
	err := d.chat.Send(sendCtx, level, title, text)
	if err != nil {
		log.Printf("Error posting chat alert for reading %d: %v", reading.ID, err)
		return d.record(reading.ID, models.ChannelSlack, level, d.cfg.SlackRecipient, "", err)
	}

	log.Printf("Chat alert posted to %s for reading %d", d.cfg.SlackRecipient, reading.ID)
	return d.record(reading.ID, models.ChannelSlack, level, d.cfg.SlackRecipient, text, nil)
}

// record appends one attempt to the audit trail. A failed insert is logged,
// never propagated: one recipient's bookkeeping must not block another's
// delivery.
func (d *Dispatcher) record(readingID uint, channel models.Channel, level models.AlertLevel, recipient, message string, sendErr error) models.AlertRecord {
	rec := models.AlertRecord{
		ReadingID: readingID,
		Channel:   channel,
		Level:     level,
		Recipient: recipient,
		Message:   message,
		SentAt:    time.Now().UTC(),
		Success:   sendErr == nil,
	}
	if sendErr != nil {
		rec.ErrorDetail = sendErr.Error()
	}

	if err := d.db.Create(&rec).Error; err != nil {
		log.Printf("Error logging alert record for reading %d: %v", readingID, err)
	}
	return rec
}

// alreadySent re-checks the persisted flag under the per-reading lock so two
// concurrent dispatches cannot both pass the check.
func (d *Dispatcher) alreadySent(reading *models.SensorReading) (bool, error) {
	if reading.AlertSent {
		return true, nil
	}
	if reading.ID == 0 {
		return false, nil
	}

	var fresh models.SensorReading
	if err := d.db.Select("alert_sent").First(&fresh, reading.ID).Error; err != nil {
		return false, fmt.Errorf("failed to check alert state for reading %d: %w", reading.ID, err)
	}
	if fresh.AlertSent {
		reading.AlertSent = true
	}
	return fresh.AlertSent, nil
}

// lockReading serializes dispatches per reading id. Locks are reference
// counted so entries are dropped once the last waiter leaves.
func (d *Dispatcher) lockReading(id uint) func() {
	d.mu.Lock()
	l, ok := d.inflight[id]
	if !ok {
		l = &readingLock{}
		d.inflight[id] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.inflight, id)
		}
		d.mu.Unlock()
	}
}
