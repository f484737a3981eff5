package models

import (
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/media"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Property is a listing shown on the public properties page. Title is
// unique: the media registries join on it when bindings are built.
type Property struct {
	ID        string `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title     string `gorm:"type:varchar(255);not null;uniqueIndex" json:"title"`
	Developer string `gorm:"type:varchar(100);index" json:"developer,omitempty"`
	Location  string `gorm:"type:varchar(255)" json:"location,omitempty"`

	// featured, residential or commercial
	Category  string   `gorm:"type:varchar(20);not null;default:'residential';index" json:"category"`
	Price     *int64   `gorm:"index" json:"price,omitempty"`
	Currency  string   `gorm:"type:varchar(3);default:'UGX'" json:"currency,omitempty"`
	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
	AreaSqm   *float64 `json:"area_sqm,omitempty"`

	Description string `gorm:"type:text" json:"description,omitempty"`

	// Raw filenames as entered in the admin form. Older rows hold a JSON
	// array, a quoted JSON string, or a bare filename.
	Images datatypes.JSON `json:"images,omitempty"`

	Featured bool           `gorm:"not null;default:false;index" json:"featured"`
	Status   PropertyStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PropertyStatus is the sales state of a listing
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusReserved  PropertyStatus = "reserved"
	PropertyStatusSold      PropertyStatus = "sold"
)

func (Property) TableName() string {
	return "properties"
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.Status == "" {
		p.Status = PropertyStatusAvailable
	}
	if p.Category == "" {
		p.Category = media.CategoryResidential
	}
	return nil
}

// IsAvailable reports whether the listing can still be booked for a viewing
func (p *Property) IsAvailable() bool {
	return p.Status == PropertyStatusAvailable
}
