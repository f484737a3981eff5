package database

import (
	"errors"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"gorm.io/gorm"
)

// CreateLead stores a lead row and its outbox notifications in one
// transaction, so a notification never exists without its lead.
func (gdb *GormDB) CreateLead(lead any, outbox func(tx *gorm.DB) error) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		if outbox == nil {
			return nil
		}
		return outbox(tx)
	})
}

// SubscribeNewsletter creates the subscriber or reactivates an existing
// one with the same email. created is false when the row already existed.
func (gdb *GormDB) SubscribeNewsletter(sub *models.NewsletterSubscriber, outbox func(tx *gorm.DB) error) (created bool, err error) {
	err = gdb.db.Transaction(func(tx *gorm.DB) error {
		var existing models.NewsletterSubscriber
		result := tx.Where("email = ?", sub.Email).First(&existing)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sub.Active = true
			if err := tx.Create(sub).Error; err != nil {
				return err
			}
			created = true
			if outbox != nil {
				return outbox(tx)
			}
			return nil
		} else if result.Error != nil {
			return result.Error
		}

		if !existing.Active {
			existing.Active = true
			existing.SubscribedAt = time.Now()
			existing.UnsubscribedAt = nil
		}
		if sub.Name != "" {
			existing.Name = sub.Name
		}
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*sub = existing
		return nil
	})
	return created, err
}

// UnsubscribeNewsletter deactivates the subscriber, keeping the row
func (gdb *GormDB) UnsubscribeNewsletter(email string) error {
	now := time.Now()
	result := gdb.db.Model(&models.NewsletterSubscriber{}).
		Where("email = ? AND active = ?", email, true).
		Updates(map[string]interface{}{
			"active":          false,
			"unsubscribed_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListInquiries returns contact inquiries, newest first
func (gdb *GormDB) ListInquiries(status string, limit, offset int) ([]models.ContactInquiry, int64, error) {
	q := gdb.db.Model(&models.ContactInquiry{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var inquiries []models.ContactInquiry
	err := q.Order("created_at DESC").Limit(pageSize(limit)).Offset(max(offset, 0)).Find(&inquiries).Error
	return inquiries, total, err
}

// UpdateInquiryStatus moves an inquiry to status
func (gdb *GormDB) UpdateInquiryStatus(id string, status models.InquiryStatus) (*models.ContactInquiry, error) {
	var inquiry models.ContactInquiry
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&inquiry).Error; err != nil {
			return err
		}
		inquiry.SetStatus(status)
		return tx.Save(&inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// ListSubscribers returns newsletter subscribers. activeOnly hides
// unsubscribed rows.
func (gdb *GormDB) ListSubscribers(activeOnly bool, limit, offset int) ([]models.NewsletterSubscriber, int64, error) {
	q := gdb.db.Model(&models.NewsletterSubscriber{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var subs []models.NewsletterSubscriber
	err := q.Order("subscribed_at DESC").Limit(pageSize(limit)).Offset(max(offset, 0)).Find(&subs).Error
	return subs, total, err
}

// ListBookings returns demo bookings by preferred date
func (gdb *GormDB) ListBookings(status string, limit, offset int) ([]models.DemoBooking, int64, error) {
	q := gdb.db.Model(&models.DemoBooking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookings []models.DemoBooking
	err := q.Order("preferred_date ASC").Order("created_at ASC").Limit(pageSize(limit)).Offset(max(offset, 0)).Find(&bookings).Error
	return bookings, total, err
}

// UpdateBookingStatus moves a booking to status
func (gdb *GormDB) UpdateBookingStatus(id string, status models.BookingStatus) (*models.DemoBooking, error) {
	var booking models.DemoBooking
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
			return err
		}
		booking.SetStatus(status)
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
