package models

import "time"

// PropertyMediaBinding ties a registry entry to a row by id, so renaming a
// listing does not silently drop its gallery.
type PropertyMediaBinding struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType   string    `gorm:"type:varchar(20);not null" json:"entity_type"`
	EntityID     string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"entity_id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Developer    string    `gorm:"type:varchar(100)" json:"developer,omitempty"`
	Folder       string    `gorm:"type:varchar(100)" json:"folder,omitempty"`
	VideoEmbedID string    `gorm:"type:varchar(100)" json:"video_embed_id,omitempty"`
	BoundAt      time.Time `gorm:"not null" json:"bound_at"`
}

func (PropertyMediaBinding) TableName() string {
	return "property_media_bindings"
}

const (
	BindingEntityProperty = "property"
	BindingEntityProject  = "project"
)
