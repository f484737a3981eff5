package search

import (
	"fmt"
	"strings"
)

type FilterParams struct {
	Query       string
	Category    string
	Developers  []string
	Status      string
	MinPrice    *int64
	MaxPrice    *int64
	MinBedrooms *int
	Featured    *bool
	SortBy      string
	Limit       int64
	Offset      int64
}

var sortOptions = map[string]string{
	"price_asc":   "price:asc",
	"price_desc":  "price:desc",
	"newest":      "created_at:desc",
	"bedrooms":    "bedrooms:desc",
	"featured":    "featured:desc",
	"created_asc": "created_at:asc",
}

// BuildFilter turns params into Meilisearch filter expressions joined
// with AND
func BuildFilter(params FilterParams) []string {
	var filters []string

	if params.Category != "" {
		filters = append(filters, fmt.Sprintf("category = %s", quote(params.Category)))
	}
	if params.Status != "" {
		filters = append(filters, fmt.Sprintf("status = %s", quote(params.Status)))
	}

	// Developer filter
	if len(params.Developers) > 0 {
		devFilters := make([]string, len(params.Developers))
		for i, dev := range params.Developers {
			devFilters[i] = fmt.Sprintf("developer = %s", quote(dev))
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(devFilters, " OR ")))
	}

	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %d", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %d", *params.MaxPrice))
	}

	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}
	if params.Featured != nil {
		filters = append(filters, fmt.Sprintf("featured = %t", *params.Featured))
	}

	return filters
}

// SortFor maps a public sort option to a Meilisearch sort rule
func SortFor(option string) []string {
	if rule, ok := sortOptions[option]; ok {
		return []string{rule}
	}
	return nil
}

func quote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}
