// Package history records field-level edits made to listings.
package history

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/media"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"gorm.io/gorm"
)

// Service reads the change history
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DetectChanges compares two versions of a listing. PropertyID is taken
// from next.
func DetectChanges(prev, next *models.Property) []models.PropertyChange {
	var changes []models.PropertyChange
	now := time.Now()
	add := func(changeType, oldVal, newVal string) *models.PropertyChange {
		changes = append(changes, models.PropertyChange{
			PropertyID: next.ID,
			ChangeType: changeType,
			OldValue:   oldVal,
			NewValue:   newVal,
			DetectedAt: now,
		})
		return &changes[len(changes)-1]
	}

	// Price change
	if !int64PtrEqual(prev.Price, next.Price) {
		change := add(models.ChangeTypePrice, formatPrice(prev), formatPrice(next))
		if prev.Price != nil && next.Price != nil {
			magnitude := float64(*next.Price - *prev.Price)
			change.ChangeMagnitude = &magnitude
		}
	}

	if prev.Status != next.Status {
		add(models.ChangeTypeStatus, string(prev.Status), string(next.Status))
	}
	if prev.Title != next.Title {
		add(models.ChangeTypeTitle, prev.Title, next.Title)
	}
	if prev.Developer != next.Developer {
		add(models.ChangeTypeDeveloper, prev.Developer, next.Developer)
	}
	if prev.Category != next.Category {
		add(models.ChangeTypeCategory, prev.Category, next.Category)
	}
	if prev.Featured != next.Featured {
		add(models.ChangeTypeFeatured, strconv.FormatBool(prev.Featured), strconv.FormatBool(next.Featured))
	}

	// Image change, compared by cleaned filename so re-encoding the same
	// list is not a change
	oldImages := media.CleanImageNames(prev.Images)
	newImages := media.CleanImageNames(next.Images)
	if !stringsEqual(oldImages, newImages) {
		add(models.ChangeTypeImages, fmt.Sprintf("%d images", len(oldImages)), fmt.Sprintf("%d images", len(newImages)))
	}

	return changes
}

// NewPropertyChange records a creation or removal of p
func NewPropertyChange(changeType string, p *models.Property) models.PropertyChange {
	change := models.PropertyChange{
		PropertyID: p.ID,
		ChangeType: changeType,
		DetectedAt: time.Now(),
	}
	switch changeType {
	case models.ChangeTypeNew:
		change.NewValue = p.Title
	case models.ChangeTypeRemoved:
		change.OldValue = p.Title
	}
	return change
}

// GetPropertyHistory returns the changes of one listing, newest first
func (s *Service) GetPropertyHistory(propertyID string, limit int) ([]models.PropertyChange, error) {
	if limit <= 0 {
		limit = 30
	}
	var changes []models.PropertyChange
	err := s.db.Where("property_id = ?", propertyID).
		Order("detected_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&changes).Error
	return changes, err
}

// GetRecentChanges returns the latest changes across all listings
func (s *Service) GetRecentChanges(limit int) ([]models.PropertyChange, error) {
	if limit <= 0 {
		limit = 100
	}
	var changes []models.PropertyChange
	err := s.db.Order("detected_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&changes).Error
	return changes, err
}

// CountSince counts changes detected after since
func (s *Service) CountSince(since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.PropertyChange{}).Where("detected_at >= ?", since).Count(&count).Error
	return count, err
}

func formatPrice(p *models.Property) string {
	if p.Price == nil {
		return "nil"
	}
	return fmt.Sprintf("%d %s", *p.Price, p.Currency)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
