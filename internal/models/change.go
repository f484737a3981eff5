package models

import "time"

// PropertyChange is one field-level edit to a listing, recorded when an
// admin updates it.
type PropertyChange struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID      string    `gorm:"type:varchar(32);not null;index" json:"property_id"`
	ChangeType      string    `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue        string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue        string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangeMagnitude *float64  `json:"change_magnitude,omitempty"` // price delta
	DetectedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"detected_at"`
}

func (PropertyChange) TableName() string {
	return "property_changes"
}

// ChangeType constants
const (
	ChangeTypePrice     = "price_changed"
	ChangeTypeStatus    = "status_changed"
	ChangeTypeTitle     = "title_changed"
	ChangeTypeDeveloper = "developer_changed"
	ChangeTypeCategory  = "category_changed"
	ChangeTypeImages    = "images_changed"
	ChangeTypeFeatured  = "featured_changed"
	ChangeTypeNew       = "new_property"
	ChangeTypeRemoved   = "property_removed"
)
