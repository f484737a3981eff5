package search

import (
	"testing"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilter(t *testing.T) {
	minPrice := int64(100_000_000)
	maxPrice := int64(900_000_000)
	beds := 2
	featured := true

	tests := []struct {
		name   string
		params FilterParams
		want   []string
	}{
		{name: "empty", params: FilterParams{}, want: nil},
		{
			name:   "category and status",
			params: FilterParams{Category: "commercial", Status: "available"},
			want:   []string{`category = "commercial"`, `status = "available"`},
		},
		{
			name:   "developers are ORed",
			params: FilterParams{Developers: []string{"VAAL", "Comfort Homes"}},
			want:   []string{`(developer = "VAAL" OR developer = "Comfort Homes")`},
		},
		{
			name:   "ranges",
			params: FilterParams{MinPrice: &minPrice, MaxPrice: &maxPrice, MinBedrooms: &beds, Featured: &featured},
			want:   []string{"price >= 100000000", "price <= 900000000", "bedrooms >= 2", "featured = true"},
		},
		{
			name:   "quotes are escaped",
			params: FilterParams{Developers: []string{`Say "Hi"`}},
			want:   []string{`(developer = "Say \"Hi\"")`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilter(tt.params))
		})
	}
}

func TestSortFor(t *testing.T) {
	assert.Equal(t, []string{"price:asc"}, SortFor("price_asc"))
	assert.Equal(t, []string{"created_at:desc"}, SortFor("newest"))
	assert.Nil(t, SortFor("rent"))
	assert.Nil(t, SortFor(""))
}

func TestDocuments(t *testing.T) {
	price := int64(450_000_000)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &models.Property{
		ID:        "01J00000000000000000000000",
		Title:     "VAAL Kololo Gardens",
		Developer: "VAAL",
		Category:  "residential",
		Status:    models.PropertyStatusReserved,
		Price:     &price,
		CreatedAt: created,
	}
	doc := NewPropertyDocument(p, "/images/properties/vaal/a.jpg")
	assert.Equal(t, "reserved", doc.Status)
	assert.Equal(t, created.Unix(), doc.CreatedAt)
	assert.Equal(t, "/images/properties/vaal/a.jpg", doc.Thumbnail)

	post := &models.BlogPost{ID: "p1", Slug: "launch", Title: "Launch"}
	assert.Zero(t, NewNewsDocument(post).PublishedAt)
	post.Publish()
	assert.NotZero(t, NewNewsDocument(post).PublishedAt)
}

func TestDecodeHits(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{"id": "a", "title": "A", "price": float64(5), "featured": true},
		map[string]interface{}{"id": "b", "title": "B"},
	}
	docs, err := decodeHits[PropertyDocument](raw)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.NotNil(t, docs[0].Price)
	assert.EqualValues(t, 5, *docs[0].Price)
	assert.True(t, docs[0].Featured)
	assert.Nil(t, docs[1].Price)
}
