package models

import "time"

// Notification is an outbound email waiting in the outbox. Rows are
// written in the same transaction as the lead that triggered them.
type Notification struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind        string     `gorm:"type:varchar(30);not null;index" json:"kind"`
	SourceID    string     `gorm:"type:varchar(32);not null;index" json:"source_id"`
	Recipients  string     `gorm:"type:text;not null" json:"recipients"` // comma separated
	ReplyTo     string     `gorm:"type:varchar(255)" json:"reply_to,omitempty"`
	Subject     string     `gorm:"type:varchar(255);not null" json:"subject"`
	HTMLBody    string     `gorm:"type:text;not null" json:"-"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_notification_status" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time `gorm:"index" json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

func (Notification) TableName() string {
	return "notification_outbox"
}

const (
	NotificationContact    = "contact"
	NotificationBooking    = "booking"
	NotificationNewsletter = "newsletter"
)

// Status constants
const (
	NotificationPending       = "pending"
	NotificationProcessing    = "processing"
	NotificationSent          = "sent"
	NotificationFailed        = "failed"
	NotificationPermanentFail = "permanent_fail"
)

// MaxSendAttempts before a notification is marked permanently failed
const MaxSendAttempts = 5

// NextRetryDelay returns the backoff after the given number of attempts
func NextRetryDelay(attempts int) time.Duration {
	delays := []time.Duration{
		1 * time.Minute,
		5 * time.Minute,
		15 * time.Minute,
		1 * time.Hour,
		4 * time.Hour,
	}

	if attempts < 0 {
		return delays[0]
	}
	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}
