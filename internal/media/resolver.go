// Package media turns stored image references into servable URLs and keeps
// the derived thumbnail folder up to date.
package media

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

const (
	// PropertiesPath is the URL prefix every resolved image lives under.
	PropertiesPath  = "/images/properties"
	ThumbnailFolder = "thumbnails"

	DefaultPlaceholderWidth  = 400
	DefaultPlaceholderHeight = 300
)

// Categories double as the image folder when no developer folder applies.
const (
	CategoryFeatured    = "featured"
	CategoryResidential = "residential"
	CategoryCommercial  = "commercial"
)

// Categories lists the generic category folders.
var Categories = []string{CategoryFeatured, CategoryResidential, CategoryCommercial}

// ResolveConfig selects the folder a filename resolves under. Category may
// also be a developer folder slug.
type ResolveConfig struct {
	Category     string
	UseThumbnail bool
}

func (c ResolveConfig) folder() string {
	if c.UseThumbnail {
		return ThumbnailFolder
	}
	if cat := strings.TrimSpace(c.Category); cat != "" {
		return cat
	}
	return CategoryResidential
}

func firstConfig(cfg []ResolveConfig) ResolveConfig {
	if len(cfg) > 0 {
		return cfg[0]
	}
	return ResolveConfig{}
}

// PlaceholderURL returns the synthetic placeholder path for the given size.
func PlaceholderURL(width, height int) string {
	return fmt.Sprintf("/api/placeholder/%d/%d", width, height)
}

// DefaultPlaceholder is the path returned for anything unresolvable.
var DefaultPlaceholder = PlaceholderURL(DefaultPlaceholderWidth, DefaultPlaceholderHeight)

const quoteAndSpace = " \t\r\n\"'`"

// CleanFilename strips surrounding quote characters and whitespace.
func CleanFilename(filename string) string {
	return strings.Trim(filename, quoteAndSpace)
}

// IsPlainFilename reports whether a cleaned name stays inside its folder:
// non-empty, no path separators, not a dot entry.
func IsPlainFilename(clean string) bool {
	return clean != "" && clean != "." && clean != ".." && !strings.ContainsAny(clean, `/\`)
}

// ResolveImageURL maps a raw filename to /images/properties/<folder>/<file>.
// An empty filename, or one that would leave its folder, yields the 400x300
// placeholder.
func ResolveImageURL(filename string, cfg ...ResolveConfig) string {
	clean := CleanFilename(filename)
	if !IsPlainFilename(clean) {
		return DefaultPlaceholder
	}
	return PropertiesPath + "/" + firstConfig(cfg).folder() + "/" + clean
}

// ResolvePropertyImages accepts whatever the images column holds (nil, a
// slice, a JSON array string, a bare filename, or raw JSON bytes) and
// resolves every non-blank entry. It never fails: input with nothing
// usable yields a one-element placeholder list.
func ResolvePropertyImages(images any, cfg ...ResolveConfig) []string {
	names := ImageNames(images)

	urls := make([]string, 0, len(names))
	for _, name := range names {
		if CleanFilename(name) == "" {
			continue
		}
		urls = append(urls, ResolveImageURL(name, cfg...))
	}
	if len(urls) == 0 {
		return []string{DefaultPlaceholder}
	}
	return urls
}

// CleanImageNames returns the sanitized, non-blank filenames of images.
func CleanImageNames(images any) []string {
	names := ImageNames(images)
	clean := make([]string, 0, len(names))
	for _, name := range names {
		if c := CleanFilename(name); c != "" {
			clean = append(clean, c)
		}
	}
	return clean
}

// ImageNames normalizes the images value into a list of raw filenames.
// Blank entries are kept; callers filter them.
func ImageNames(images any) []string {
	switch v := images.(type) {
	case nil:
		return nil
	case string:
		return parseImageText(v, 0)
	case *string:
		if v == nil {
			return nil
		}
		return parseImageText(*v, 0)
	case []string:
		return v
	case []any:
		return stringsOf(v)
	case json.RawMessage:
		return parseImageText(string(v), 0)
	case datatypes.JSON:
		return parseImageText(string(v), 0)
	case []byte:
		return parseImageText(string(v), 0)
	default:
		return nil
	}
}

// parseImageText treats text as a JSON array of filenames. A JSON string is
// unwrapped once, since older rows hold a double-encoded array. Anything
// that is not JSON is a single filename.
func parseImageText(text string, depth int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return []string{trimmed}
	}

	switch d := decoded.(type) {
	case nil:
		return nil
	case []any:
		return stringsOf(d)
	case string:
		if depth > 0 {
			return []string{d}
		}
		return parseImageText(d, depth+1)
	default:
		return []string{trimmed}
	}
}

func stringsOf(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
