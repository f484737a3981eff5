package schema

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/content"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"gorm.io/datatypes"
)

// BookingDateLayout is the format of BookingInput.PreferredDate.
const BookingDateLayout = "2006-01-02"

// ContactInput is the public contact form.
type ContactInput struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Subject    string `json:"subject" validate:"max=255"`
	Message    string `json:"message" validate:"required,min=10,max=5000"`
	PropertyID string `json:"property_id" validate:"omitempty,max=32"`
}

func (in *ContactInput) ToModel() *models.ContactInquiry {
	return &models.ContactInquiry{
		Name:       strings.TrimSpace(in.Name),
		Email:      normalizeEmail(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Subject:    strings.TrimSpace(in.Subject),
		Message:    strings.TrimSpace(in.Message),
		PropertyID: in.PropertyID,
	}
}

// NewsletterInput is the footer signup form.
type NewsletterInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"max=255"`
}

func (in *NewsletterInput) ToModel() *models.NewsletterSubscriber {
	return &models.NewsletterSubscriber{
		Email:  normalizeEmail(in.Email),
		Name:   strings.TrimSpace(in.Name),
		Active: true,
	}
}

// BookingInput requests a demo of one of the studio services.
type BookingInput struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Phone         string `json:"phone" validate:"omitempty,phone"`
	Company       string `json:"company" validate:"max=255"`
	Service       string `json:"service" validate:"required,oneof=virtual_tour 3d_render drone video photography"`
	PreferredDate string `json:"preferred_date" validate:"required,datetime=2006-01-02"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// ToModel assumes the input has been validated.
func (in *BookingInput) ToModel() *models.DemoBooking {
	date, _ := time.Parse(BookingDateLayout, in.PreferredDate)
	return &models.DemoBooking{
		Name:          strings.TrimSpace(in.Name),
		Email:         normalizeEmail(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		Company:       strings.TrimSpace(in.Company),
		Service:       in.Service,
		PreferredDate: date,
		Notes:         strings.TrimSpace(in.Notes),
	}
}

// ProjectInput is the admin portfolio form.
type ProjectInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Slug        string   `json:"slug" validate:"omitempty,slug,max=255"`
	Service     string   `json:"service" validate:"required,oneof=virtual_tour 3d_render drone video photography"`
	Client      string   `json:"client" validate:"max=255"`
	Location    string   `json:"location" validate:"max=255"`
	Description string   `json:"description" validate:"max=10000"`
	Images      []string `json:"images" validate:"max=50,dive,required,max=255,excludesall=/\\"`
	VideoURL    string   `json:"video_url" validate:"omitempty,url,max=500"`
	TourURL     string   `json:"tour_url" validate:"omitempty,url,max=500"`
	Featured    bool     `json:"featured"`
}

func (in *ProjectInput) ToModel() *models.Project {
	p := &models.Project{}
	in.Apply(p)
	return p
}

// Apply copies the form onto an existing project.
func (in *ProjectInput) Apply(p *models.Project) {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = in.Slug
	if p.Slug == "" {
		p.Slug = content.Slugify(p.Title)
	}
	p.Service = in.Service
	p.Client = strings.TrimSpace(in.Client)
	p.Location = strings.TrimSpace(in.Location)
	p.Description = in.Description
	p.Images = imagesJSON(in.Images)
	p.VideoURL = in.VideoURL
	p.TourURL = in.TourURL
	p.Featured = in.Featured
}

// TeamMemberInput is the admin team form.
type TeamMemberInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	Role      string `json:"role" validate:"max=255"`
	Bio       string `json:"bio" validate:"max=5000"`
	Photo     string `json:"photo" validate:"max=500"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

func (in *TeamMemberInput) ToModel() *models.TeamMember {
	m := &models.TeamMember{}
	in.Apply(m)
	return m
}

func (in *TeamMemberInput) Apply(m *models.TeamMember) {
	m.Name = strings.TrimSpace(in.Name)
	m.Role = strings.TrimSpace(in.Role)
	m.Bio = in.Bio
	m.Photo = strings.TrimSpace(in.Photo)
	m.SortOrder = in.SortOrder
}

// BlogPostInput is the admin news form. Content is markdown.
type BlogPostInput struct {
	Title      string `json:"title" validate:"required,max=255"`
	Slug       string `json:"slug" validate:"omitempty,slug,max=255"`
	Excerpt    string `json:"excerpt" validate:"max=1000"`
	Content    string `json:"content" validate:"required"`
	CoverImage string `json:"cover_image" validate:"max=500"`
	Author     string `json:"author" validate:"max=255"`
	SourceURL  string `json:"source_url" validate:"omitempty,url,max=500"`
	Status     string `json:"status" validate:"omitempty,oneof=draft published"`
}

func (in *BlogPostInput) ToModel() *models.BlogPost {
	p := &models.BlogPost{}
	in.Apply(p)
	return p
}

// Apply copies the form onto an existing post. A missing excerpt is taken
// from the body; publishing keeps the first publish date.
func (in *BlogPostInput) Apply(p *models.BlogPost) {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = in.Slug
	if p.Slug == "" {
		p.Slug = content.Slugify(p.Title)
	}
	p.Content = in.Content
	p.Excerpt = strings.TrimSpace(in.Excerpt)
	if p.Excerpt == "" {
		p.Excerpt = content.Excerpt(in.Content, 200)
	}
	p.CoverImage = strings.TrimSpace(in.CoverImage)
	p.Author = strings.TrimSpace(in.Author)
	p.SourceURL = in.SourceURL

	switch models.PostStatus(in.Status) {
	case models.PostStatusPublished:
		p.Publish()
	case models.PostStatusDraft:
		p.Status = models.PostStatusDraft
	}
}

// PropertyInput is the admin listing form.
type PropertyInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Developer   string   `json:"developer" validate:"max=100"`
	Location    string   `json:"location" validate:"max=255"`
	Category    string   `json:"category" validate:"omitempty,oneof=featured residential commercial"`
	Price       *int64   `json:"price" validate:"omitempty,gte=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3,uppercase"`
	Bedrooms    *int     `json:"bedrooms" validate:"omitempty,gte=0,max=50"`
	Bathrooms   *int     `json:"bathrooms" validate:"omitempty,gte=0,max=50"`
	AreaSqm     *float64 `json:"area_sqm" validate:"omitempty,gte=0"`
	Description string   `json:"description" validate:"max=10000"`
	Images      []string `json:"images" validate:"max=50,dive,required,max=255,excludesall=/\\"`
	Featured    bool     `json:"featured"`
	Status      string   `json:"status" validate:"omitempty,oneof=available reserved sold"`
}

func (in *PropertyInput) ToModel() *models.Property {
	p := &models.Property{}
	in.Apply(p)
	return p
}

func (in *PropertyInput) Apply(p *models.Property) {
	p.Title = strings.TrimSpace(in.Title)
	p.Developer = strings.TrimSpace(in.Developer)
	p.Location = strings.TrimSpace(in.Location)
	if in.Category != "" {
		p.Category = in.Category
	}
	p.Price = in.Price
	if in.Currency != "" {
		p.Currency = in.Currency
	}
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.AreaSqm = in.AreaSqm
	p.Description = in.Description
	p.Images = imagesJSON(in.Images)
	p.Featured = in.Featured
	if in.Status != "" {
		p.Status = models.PropertyStatus(in.Status)
	}
}

// InquiryStatusInput moves a contact inquiry through its workflow.
type InquiryStatusInput struct {
	Status string `json:"status" validate:"required,oneof=new contacted archived"`
}

// BookingStatusInput moves a demo booking through its workflow.
type BookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

// LoginInput is the passcode form.
type LoginInput struct {
	Passcode string `json:"passcode" validate:"required,max=64"`
}

// CredentialsInput is the username/password form.
type CredentialsInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

// LinkPreviewInput asks for the preview card of a press article.
type LinkPreviewInput struct {
	URL string `json:"url" validate:"required,url,max=2000"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func imagesJSON(images []string) datatypes.JSON {
	clean := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			clean = append(clean, img)
		}
	}
	data, _ := json.Marshal(clean)
	return datatypes.JSON(data)
}
