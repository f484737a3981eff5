package search

import (
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
)

// PropertyDocument is the indexed form of a listing
type PropertyDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Developer   string `json:"developer,omitempty"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Price       *int64 `json:"price,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Bedrooms    *int   `json:"bedrooms,omitempty"`
	Featured    bool   `json:"featured"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

// NewPropertyDocument builds the document of p. thumbnail is the resolved
// cover image URL.
func NewPropertyDocument(p *models.Property, thumbnail string) PropertyDocument {
	return PropertyDocument{
		ID:          p.ID,
		Title:       p.Title,
		Developer:   p.Developer,
		Location:    p.Location,
		Category:    p.Category,
		Status:      string(p.Status),
		Price:       p.Price,
		Currency:    p.Currency,
		Bedrooms:    p.Bedrooms,
		Featured:    p.Featured,
		Description: p.Description,
		Thumbnail:   thumbnail,
		CreatedAt:   p.CreatedAt.Unix(),
	}
}

// NewsDocument is the indexed form of a published post
type NewsDocument struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt,omitempty"`
	Content     string `json:"content,omitempty"`
	Author      string `json:"author,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
	PublishedAt int64  `json:"published_at"`
}

// NewNewsDocument builds the document of post
func NewNewsDocument(post *models.BlogPost) NewsDocument {
	doc := NewsDocument{
		ID:         post.ID,
		Slug:       post.Slug,
		Title:      post.Title,
		Excerpt:    post.Excerpt,
		Content:    post.Content,
		Author:     post.Author,
		CoverImage: post.CoverImage,
	}
	if post.PublishedAt != nil {
		doc.PublishedAt = post.PublishedAt.Unix()
	}
	return doc
}
