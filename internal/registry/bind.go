package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Match is a stored row whose title equals a registry title.
type Match struct {
	EntityType string
	EntityID   string
}

// TitleLookup finds stored rows by exact title.
type TitleLookup interface {
	MatchTitle(title string) ([]Match, error)
}

// Binding ties a registry entry to a stored row id.
type Binding struct {
	EntityType   string
	EntityID     string
	Title        string
	Developer    string
	Folder       string
	VideoEmbedID string
}

// UnmatchedTitlesError is returned when a registry title has no row, or
// more than one.
type UnmatchedTitlesError struct {
	Unmatched []string
	Ambiguous map[string][]Match
}

func (e *UnmatchedTitlesError) Error() string {
	var parts []string
	if len(e.Unmatched) > 0 {
		parts = append(parts, fmt.Sprintf("%d unmatched title(s): %s", len(e.Unmatched), strings.Join(e.Unmatched, ", ")))
	}
	if len(e.Ambiguous) > 0 {
		titles := make([]string, 0, len(e.Ambiguous))
		for t := range e.Ambiguous {
			titles = append(titles, t)
		}
		sort.Strings(titles)
		parts = append(parts, fmt.Sprintf("%d ambiguous title(s): %s", len(titles), strings.Join(titles, ", ")))
	}
	return "media binding failed: " + strings.Join(parts, "; ")
}

// Titles returns every title referenced by either table, sorted.
func (r *Registry) Titles() []string {
	seen := make(map[string]bool, len(r.images)+len(r.videos))
	for t := range r.images {
		seen[t] = true
	}
	for t := range r.videos {
		seen[t] = true
	}
	titles := make([]string, 0, len(seen))
	for t := range seen {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Bind resolves every registry title to exactly one stored row. It is all
// or nothing: any title without a unique match fails the whole run and no
// bindings are returned.
func (r *Registry) Bind(lookup TitleLookup) ([]Binding, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var (
		bindings  []Binding
		unmatched []string
		ambiguous = make(map[string][]Match)
	)

	for _, title := range r.Titles() {
		matches, err := lookup.MatchTitle(title)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %q: %w", title, err)
		}
		switch len(matches) {
		case 0:
			unmatched = append(unmatched, title)
			continue
		case 1:
		default:
			ambiguous[title] = matches
			continue
		}

		b := Binding{
			EntityType: matches[0].EntityType,
			EntityID:   matches[0].EntityID,
			Title:      title,
		}
		if cfg := r.images[title]; cfg != nil {
			b.Developer = cfg.Developer
			b.Folder = cfg.Folder
		}
		if v := r.videos[title]; v != nil {
			b.VideoEmbedID = v.EmbedID
		}
		bindings = append(bindings, b)
	}

	if len(unmatched) > 0 || len(ambiguous) > 0 {
		if len(ambiguous) == 0 {
			ambiguous = nil
		}
		return nil, &UnmatchedTitlesError{Unmatched: unmatched, Ambiguous: ambiguous}
	}
	return bindings, nil
}
