// Package registry holds the static property media and video tables.
//
// The tables are embedded YAML and read-only at runtime. Lookups are exact
// title matches; Bind resolves titles to row ids once so that serving
// paths can join on ids instead.
package registry

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/dlomaxw/shinebebright-sub001/internal/media"
	"gopkg.in/yaml.v3"
)

// FallbackFolder is returned for titles without a registry entry.
const FallbackFolder = "general"

//go:embed property_media.yaml
var propertyMediaYAML []byte

//go:embed property_videos.yaml
var propertyVideosYAML []byte

// Developer owns exactly one media folder.
type Developer struct {
	Name   string `yaml:"name" json:"name"`
	Folder string `yaml:"folder" json:"folder"`
}

// PropertyImageConfig is the gallery of one listing.
type PropertyImageConfig struct {
	PropertyTitle string   `yaml:"title" json:"property_title"`
	Developer     string   `yaml:"developer" json:"developer"`
	Folder        string   `yaml:"folder" json:"folder"`
	Images        []string `yaml:"images" json:"images"`
}

// PropertyVideo is a demo video. Sibling listings share one descriptor.
type PropertyVideo struct {
	EmbedID     string   `yaml:"embed_id" json:"embed_id"`
	Title       string   `yaml:"title" json:"title"`
	URL         string   `yaml:"url" json:"url"`
	Description string   `yaml:"description" json:"description"`
	Properties  []string `yaml:"properties" json:"-"`
}

type mediaFile struct {
	Developers []Developer            `yaml:"developers"`
	Properties []*PropertyImageConfig `yaml:"properties"`
}

type videoFile struct {
	Videos []*PropertyVideo `yaml:"videos"`
}

// Registry is an immutable view over the media and video tables. Returned
// configs and videos are shared and must not be modified.
type Registry struct {
	developers []Developer
	entries    []*PropertyImageConfig
	images     map[string]*PropertyImageConfig
	videos     map[string]*PropertyVideo
	videoList  []*PropertyVideo

	// titles that appeared more than once; the last entry wins
	duplicateImages []string
	duplicateVideos []string
}

// Load parses the two tables.
func Load(mediaData, videoData []byte) (*Registry, error) {
	var mf mediaFile
	if err := yaml.Unmarshal(mediaData, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse property media table: %w", err)
	}
	var vf videoFile
	if err := yaml.Unmarshal(videoData, &vf); err != nil {
		return nil, fmt.Errorf("failed to parse property video table: %w", err)
	}

	r := &Registry{
		developers: mf.Developers,
		images:     make(map[string]*PropertyImageConfig, len(mf.Properties)),
		videos:     make(map[string]*PropertyVideo),
	}

	for _, entry := range mf.Properties {
		if entry == nil {
			continue
		}
		if _, exists := r.images[entry.PropertyTitle]; exists {
			r.duplicateImages = append(r.duplicateImages, entry.PropertyTitle)
		}
		r.images[entry.PropertyTitle] = entry
		r.entries = append(r.entries, entry)
	}

	for _, video := range vf.Videos {
		if video == nil {
			continue
		}
		r.videoList = append(r.videoList, video)
		for _, title := range video.Properties {
			if _, exists := r.videos[title]; exists {
				r.duplicateVideos = append(r.duplicateVideos, title)
			}
			r.videos[title] = video
		}
	}

	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded tables.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(propertyMediaYAML, propertyVideosYAML)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// GetPropertyImageConfig returns the entry for title, or nil.
func (r *Registry) GetPropertyImageConfig(title string) *PropertyImageConfig {
	return r.images[title]
}

// GetPropertyDeveloperFolder returns the folder for title, or FallbackFolder.
func (r *Registry) GetPropertyDeveloperFolder(title string) string {
	if cfg := r.images[title]; cfg != nil {
		return cfg.Folder
	}
	return FallbackFolder
}

// GetPropertyVideo returns the video for title, or nil.
func (r *Registry) GetPropertyVideo(title string) *PropertyVideo {
	return r.videos[title]
}

// PropertyImageURLs resolves the gallery of title under its developer
// folder, or under the thumbnail folder when thumbnails is set. Unknown
// titles yield nil so callers can fall back to the row's own images.
func (r *Registry) PropertyImageURLs(title string, thumbnails bool) []string {
	cfg := r.images[title]
	if cfg == nil {
		return nil
	}
	return media.ResolvePropertyImages(cfg.Images, media.ResolveConfig{
		Category:     cfg.Folder,
		UseThumbnail: thumbnails,
	})
}

// Entries returns the image entries in table order.
func (r *Registry) Entries() []*PropertyImageConfig {
	return r.entries
}

// Videos returns the video descriptors in table order.
func (r *Registry) Videos() []*PropertyVideo {
	return r.videoList
}

// Developers returns the declared developers.
func (r *Registry) Developers() []Developer {
	return r.developers
}

// Folders returns the distinct developer folders.
func (r *Registry) Folders() []string {
	seen := make(map[string]bool)
	var folders []string
	for _, d := range r.developers {
		if d.Folder != "" && !seen[d.Folder] {
			seen[d.Folder] = true
			folders = append(folders, d.Folder)
		}
	}
	for _, e := range r.entries {
		if e.Folder != "" && !seen[e.Folder] {
			seen[e.Folder] = true
			folders = append(folders, e.Folder)
		}
	}
	return folders
}

// GetPropertyImageConfig looks title up in the embedded table.
func GetPropertyImageConfig(title string) *PropertyImageConfig {
	return Default().GetPropertyImageConfig(title)
}

// GetPropertyDeveloperFolder looks title up in the embedded table.
func GetPropertyDeveloperFolder(title string) string {
	return Default().GetPropertyDeveloperFolder(title)
}

// GetPropertyVideo looks title up in the embedded table.
func GetPropertyVideo(title string) *PropertyVideo {
	return Default().GetPropertyVideo(title)
}
