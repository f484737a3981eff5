// Package catalog joins listings and portfolio rows with their media.
//
// Media is looked up in a fixed order: the stored binding for the row's
// id, then the registry entry under the bound title, then the registry
// entry under the row's current title, then the row's own images column.
package catalog

import (
	"errors"

	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/media"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/registry"
	"gorm.io/gorm"
)

// Media sources, reported so the admin can see which rows still run on
// title matching
const (
	SourceBinding  = "binding"
	SourceRegistry = "registry"
	SourceRow      = "row"
)

// Media is the resolved gallery of one row
type Media struct {
	Gallery         []string                `json:"gallery"`
	Thumbnails      []string                `json:"thumbnails"`
	Video           *registry.PropertyVideo `json:"video,omitempty"`
	DeveloperFolder string                  `json:"developer_folder,omitempty"`
	Source          string                  `json:"media_source"`
}

// Cover is the first gallery image
func (m Media) Cover() string {
	if len(m.Gallery) == 0 {
		return media.DefaultPlaceholder
	}
	return m.Gallery[0]
}

type Service struct {
	db  *database.GormDB
	reg *registry.Registry
}

func NewService(db *database.GormDB, reg *registry.Registry) *Service {
	return &Service{db: db, reg: reg}
}

// Registry returns the registry the service resolves against
func (s *Service) Registry() *registry.Registry {
	return s.reg
}

// PropertyMedia resolves the media of one listing
func (s *Service) PropertyMedia(p *models.Property) (Media, error) {
	binding, err := s.binding(p.ID)
	if err != nil {
		return Media{}, err
	}
	return s.propertyMedia(p, binding), nil
}

// PropertiesMedia resolves media for a page of listings with one binding
// query
func (s *Service) PropertiesMedia(props []models.Property) (map[string]Media, error) {
	ids := make([]string, len(props))
	for i := range props {
		ids[i] = props[i].ID
	}
	bindings, err := s.db.GetBindings(ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Media, len(props))
	for i := range props {
		out[props[i].ID] = s.propertyMedia(&props[i], bindings[props[i].ID])
	}
	return out, nil
}

func (s *Service) propertyMedia(p *models.Property, binding *models.PropertyMediaBinding) Media {
	if binding != nil {
		if m, ok := s.fromRegistry(binding.Title); ok {
			m.Source = SourceBinding
			return m
		}
	}
	if m, ok := s.fromRegistry(p.Title); ok {
		m.Source = SourceRegistry
		return m
	}

	category := p.Category
	return Media{
		Gallery:         media.ResolvePropertyImages(p.Images, media.ResolveConfig{Category: category}),
		Thumbnails:      media.ResolvePropertyImages(p.Images, media.ResolveConfig{Category: category, UseThumbnail: true}),
		Video:           s.videoFor(binding, p.Title),
		DeveloperFolder: registry.FallbackFolder,
		Source:          SourceRow,
	}
}

// ProjectMedia resolves the media of a portfolio entry. Projects without
// a registry entry resolve under the featured folder.
func (s *Service) ProjectMedia(project *models.Project) (Media, error) {
	binding, err := s.binding(project.ID)
	if err != nil {
		return Media{}, err
	}
	if binding != nil {
		if m, ok := s.fromRegistry(binding.Title); ok {
			m.Source = SourceBinding
			return m, nil
		}
	}
	if m, ok := s.fromRegistry(project.Title); ok {
		m.Source = SourceRegistry
		return m, nil
	}
	return Media{
		Gallery:    media.ResolvePropertyImages(project.Images, media.ResolveConfig{Category: media.CategoryFeatured}),
		Thumbnails: media.ResolvePropertyImages(project.Images, media.ResolveConfig{UseThumbnail: true}),
		Video:      s.videoFor(binding, project.Title),
		Source:     SourceRow,
	}, nil
}

// binding returns nil without error for unbound rows
func (s *Service) binding(id string) (*models.PropertyMediaBinding, error) {
	binding, err := s.db.GetBinding(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return binding, err
}

func (s *Service) fromRegistry(title string) (Media, bool) {
	cfg := s.reg.GetPropertyImageConfig(title)
	if cfg == nil {
		return Media{}, false
	}
	return Media{
		Gallery:         s.reg.PropertyImageURLs(title, false),
		Thumbnails:      s.reg.PropertyImageURLs(title, true),
		Video:           s.reg.GetPropertyVideo(title),
		DeveloperFolder: cfg.Folder,
	}, true
}

// videoFor covers titles that have a video but no gallery entry
func (s *Service) videoFor(binding *models.PropertyMediaBinding, title string) *registry.PropertyVideo {
	if binding != nil {
		if v := s.reg.GetPropertyVideo(binding.Title); v != nil {
			return v
		}
	}
	return s.reg.GetPropertyVideo(title)
}
