package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

const (
	PropertiesIndex = "properties"
	NewsIndex       = "news"
)

// Searcher is the part of the search client the HTTP layer uses
type Searcher interface {
	SearchProperties(params FilterParams) (*PropertyResult, error)
	SearchNews(query string, limit int64) (*NewsResult, error)
	IndexProperties(docs []PropertyDocument) error
	DeleteProperty(id string) error
	IndexNews(docs []NewsDocument) error
	DeleteNews(id string) error
}

type SearchClient struct {
	client *meilisearch.Client
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	return &SearchClient{client: client}
}

type indexSettings struct {
	searchable []string
	filterable []string
	sortable   []string
}

var settings = map[string]indexSettings{
	PropertiesIndex: {
		searchable: []string{"title", "developer", "location", "description"},
		filterable: []string{"id", "category", "developer", "status", "price", "bedrooms", "featured"},
		sortable:   []string{"price", "bedrooms", "featured", "created_at"},
	},
	NewsIndex: {
		searchable: []string{"title", "excerpt", "content", "author"},
		filterable: []string{"id", "author"},
		sortable:   []string{"published_at"},
	},
}

// InitIndexes creates both indexes and applies their attribute settings
func (s *SearchClient) InitIndexes() error {
	for uid, cfg := range settings {
		_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        uid,
			PrimaryKey: "id",
		})
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("create index %s: %w", uid, err)
		}

		index := s.client.Index(uid)
		if _, err := index.UpdateSearchableAttributes(&cfg.searchable); err != nil {
			return fmt.Errorf("searchable attributes %s: %w", uid, err)
		}
		if _, err := index.UpdateFilterableAttributes(&cfg.filterable); err != nil {
			return fmt.Errorf("filterable attributes %s: %w", uid, err)
		}
		if _, err := index.UpdateSortableAttributes(&cfg.sortable); err != nil {
			return fmt.Errorf("sortable attributes %s: %w", uid, err)
		}
	}
	return nil
}

// IndexProperties adds or replaces property documents
func (s *SearchClient) IndexProperties(docs []PropertyDocument) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.client.Index(PropertiesIndex).AddDocuments(docs)
	return err
}

func (s *SearchClient) DeleteProperty(id string) error {
	_, err := s.client.Index(PropertiesIndex).DeleteDocument(id)
	return err
}

// IndexNews adds or replaces post documents
func (s *SearchClient) IndexNews(docs []NewsDocument) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.client.Index(NewsIndex).AddDocuments(docs)
	return err
}

func (s *SearchClient) DeleteNews(id string) error {
	_, err := s.client.Index(NewsIndex).DeleteDocument(id)
	return err
}

// Rebuild empties both indexes and loads the given documents
func (s *SearchClient) Rebuild(properties []PropertyDocument, news []NewsDocument) error {
	if _, err := s.client.Index(PropertiesIndex).DeleteAllDocuments(); err != nil {
		return fmt.Errorf("clear %s: %w", PropertiesIndex, err)
	}
	if _, err := s.client.Index(NewsIndex).DeleteAllDocuments(); err != nil {
		return fmt.Errorf("clear %s: %w", NewsIndex, err)
	}
	if err := s.IndexProperties(properties); err != nil {
		return err
	}
	return s.IndexNews(news)
}

// PropertyResult represents property search results with facets
type PropertyResult struct {
	Hits           []PropertyDocument     `json:"hits"`
	TotalHits      int64                  `json:"total_hits"`
	Facets         map[string]interface{} `json:"facets,omitempty"`
	ProcessingTime int64                  `json:"processing_time_ms"`
}

type NewsResult struct {
	Hits      []NewsDocument `json:"hits"`
	TotalHits int64          `json:"total_hits"`
}

// SearchProperties runs a filtered search over listings
func (s *SearchClient) SearchProperties(params FilterParams) (*PropertyResult, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
		Facets: []string{"category", "developer", "status"},
	}
	if filters := BuildFilter(params); len(filters) > 0 {
		searchReq.Filter = strings.Join(filters, " AND ")
	}
	if sort := SortFor(params.SortBy); sort != nil {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(PropertiesIndex).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	hits, err := decodeHits[PropertyDocument](searchRes.Hits)
	if err != nil {
		return nil, err
	}

	var facets map[string]interface{}
	if searchRes.FacetDistribution != nil {
		facets, _ = searchRes.FacetDistribution.(map[string]interface{})
	}

	return &PropertyResult{
		Hits:           hits,
		TotalHits:      searchRes.EstimatedTotalHits,
		Facets:         facets,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}

// SearchNews runs a full text search over published posts
func (s *SearchClient) SearchNews(query string, limit int64) (*NewsResult, error) {
	if limit <= 0 {
		limit = 10
	}
	searchRes, err := s.client.Index(NewsIndex).Search(query, &meilisearch.SearchRequest{
		Limit: limit,
		Sort:  []string{"published_at:desc"},
	})
	if err != nil {
		return nil, err
	}
	hits, err := decodeHits[NewsDocument](searchRes.Hits)
	if err != nil {
		return nil, err
	}
	return &NewsResult{Hits: hits, TotalHits: searchRes.EstimatedTotalHits}, nil
}

// decodeHits converts raw hits through their JSON form
func decodeHits[T any](raw []interface{}) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, hit := range raw {
		data, err := json.Marshal(hit)
		if err != nil {
			return nil, fmt.Errorf("encode hit: %w", err)
		}
		var doc T
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode hit: %w", err)
		}
		out = append(out, doc)
	}
	return out, nil
}
