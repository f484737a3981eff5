package models

import (
	"time"

	"gorm.io/gorm"
)

// ContactInquiry is a message sent through the contact form
type ContactInquiry struct {
	ID         string        `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name       string        `gorm:"type:varchar(255);not null" json:"name"`
	Email      string        `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone      string        `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Subject    string        `gorm:"type:varchar(255)" json:"subject,omitempty"`
	Message    string        `gorm:"type:text;not null" json:"message"`
	PropertyID string        `gorm:"type:varchar(32);index" json:"property_id,omitempty"`
	Status     InquiryStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	ClosedAt   *time.Time    `json:"closed_at,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusArchived  InquiryStatus = "archived"
)

func (ContactInquiry) TableName() string {
	return "contact_inquiries"
}

func (i *ContactInquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	if i.Status == "" {
		i.Status = InquiryStatusNew
	}
	return nil
}

// SetStatus moves the inquiry to status, stamping ClosedAt on archive
func (i *ContactInquiry) SetStatus(status InquiryStatus) {
	i.Status = status
	if status == InquiryStatusArchived {
		now := time.Now()
		i.ClosedAt = &now
	} else {
		i.ClosedAt = nil
	}
}

// NewsletterSubscriber is unique by email; unsubscribing keeps the row
type NewsletterSubscriber struct {
	ID             string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name           string     `gorm:"type:varchar(255)" json:"name,omitempty"`
	Active         bool       `gorm:"not null;default:true;index" json:"active"`
	SubscribedAt   time.Time  `gorm:"not null" json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}

func (s *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now()
	}
	return nil
}

// DemoBooking is a request for a demo of one of the studio services
type DemoBooking struct {
	ID            string        `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name          string        `gorm:"type:varchar(255);not null" json:"name"`
	Email         string        `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone         string        `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Company       string        `gorm:"type:varchar(255)" json:"company,omitempty"`
	Service       string        `gorm:"type:varchar(50);not null" json:"service"`
	PreferredDate time.Time     `gorm:"not null" json:"preferred_date"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	Status        BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ClosedAt      *time.Time    `json:"closed_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (DemoBooking) TableName() string {
	return "demo_bookings"
}

func (b *DemoBooking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

// SetStatus moves the booking to status, stamping ClosedAt when it ends
func (b *DemoBooking) SetStatus(status BookingStatus) {
	b.Status = status
	if status == BookingStatusCompleted || status == BookingStatusCancelled {
		now := time.Now()
		b.ClosedAt = &now
	} else {
		b.ClosedAt = nil
	}
}
