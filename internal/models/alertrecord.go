package models

import "time"

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelSlack Channel = "slack"
)

// AlertRecord is one delivery attempt. Append-only audit trail; the fatigue
// gate counts recent successful rows per severity.
type AlertRecord struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	ReadingID   uint       `json:"reading_id" gorm:"index;not null"`
	Channel     Channel    `json:"channel" gorm:"not null"`
	Level       AlertLevel `json:"level" gorm:"index;not null"`
	Recipient   string     `json:"recipient" gorm:"not null"`
	Message     string     `json:"message"`
	SentAt      time.Time  `json:"sent_at" gorm:"index"`
	Success     bool       `json:"success" gorm:"default:false"`
	ErrorDetail string     `json:"error_detail,omitempty"`
}
