package catalog

import (
	"context"
	"fmt"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/search"
)

// Rebuilder replaces the whole search corpus
type Rebuilder interface {
	Rebuild(properties []search.PropertyDocument, news []search.NewsDocument) error
}

// IndexStats counts the documents of a rebuild
type IndexStats struct {
	Properties int `json:"properties"`
	News       int `json:"news"`
}

// PropertyDocument builds the search document of p with its resolved cover
func (s *Service) PropertyDocument(p *models.Property) (search.PropertyDocument, error) {
	m, err := s.PropertyMedia(p)
	if err != nil {
		return search.PropertyDocument{}, err
	}
	return search.NewPropertyDocument(p, m.Cover()), nil
}

// Reindex loads every listing and published post and rebuilds the index
func (s *Service) Reindex(ctx context.Context, index Rebuilder) (*IndexStats, error) {
	props, err := s.db.GetAllProperties()
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	mediaByID, err := s.PropertiesMedia(props)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media: %w", err)
	}

	propDocs := make([]search.PropertyDocument, 0, len(props))
	for i := range props {
		propDocs = append(propDocs, search.NewPropertyDocument(&props[i], mediaByID[props[i].ID].Cover()))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts, err := s.db.GetPublishedPosts()
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	newsDocs := make([]search.NewsDocument, 0, len(posts))
	for i := range posts {
		newsDocs = append(newsDocs, search.NewNewsDocument(&posts[i]))
	}

	if err := index.Rebuild(propDocs, newsDocs); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}
	return &IndexStats{Properties: len(propDocs), News: len(newsDocs)}, nil
}
