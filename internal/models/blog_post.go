package models

import (
	"time"

	"gorm.io/gorm"
)

// BlogPost is a news article. Content is markdown; the HTML is rendered
// when the post is served.
type BlogPost struct {
	ID          string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Excerpt     string     `gorm:"type:text" json:"excerpt,omitempty"`
	Content     string     `gorm:"type:text" json:"content"`
	CoverImage  string     `gorm:"type:varchar(500)" json:"cover_image,omitempty"`
	Author      string     `gorm:"type:varchar(255)" json:"author,omitempty"`
	SourceURL   string     `gorm:"type:varchar(500)" json:"source_url,omitempty"`
	Status      PostStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

func (BlogPost) TableName() string {
	return "blog_posts"
}

func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.Status == "" {
		p.Status = PostStatusDraft
	}
	return nil
}

// Publish marks the post as published, keeping the first publish date
func (p *BlogPost) Publish() {
	p.Status = PostStatusPublished
	if p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}
}
