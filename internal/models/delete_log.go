package models

import "time"

// DeleteLog records a lead row that was physically deleted
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"type:varchar(30);not null;index" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(32);not null;index" json:"entity_id"`
	Summary    string    `gorm:"type:text" json:"summary"`
	ClosedAt   time.Time `json:"closed_at"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
}

func (DeleteLog) TableName() string {
	return "delete_logs"
}

const (
	EntityContactInquiry = "contact_inquiry"
	EntityDemoBooking    = "demo_booking"
)

// DeleteReason constants
const (
	DeleteReasonExpired = "retention_expired"
	DeleteReasonManual  = "manual_deletion"
)
