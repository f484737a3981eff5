package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a portfolio entry (virtual tour, render, drone shoot...).
type Project struct {
	ID          string         `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null;index" json:"title"`
	Slug        string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Service     string         `gorm:"type:varchar(50);index" json:"service"`
	Client      string         `gorm:"type:varchar(255)" json:"client,omitempty"`
	Location    string         `gorm:"type:varchar(255)" json:"location,omitempty"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Images      datatypes.JSON `json:"images,omitempty"`
	VideoURL    string         `gorm:"type:varchar(500)" json:"video_url,omitempty"`
	TourURL     string         `gorm:"type:varchar(500)" json:"tour_url,omitempty"`
	Featured    bool           `gorm:"not null;default:false" json:"featured"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// Services offered by the studio
const (
	ServiceVirtualTour = "virtual_tour"
	ServiceRender      = "3d_render"
	ServiceDrone       = "drone"
	ServiceVideo       = "video"
	ServicePhotography = "photography"
)

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

// TeamMember is shown on the about page
type TeamMember struct {
	ID        string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Role      string    `gorm:"type:varchar(255)" json:"role,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	Photo     string    `gorm:"type:varchar(500)" json:"photo,omitempty"`
	SortOrder int       `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}
