package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlomaxw/shinebebright-sub001/internal/media"
)

// ConfigError lists every inconsistency found in the tables.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("media registry has %d problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

func reservedFolder(folder string) bool {
	if folder == media.ThumbnailFolder || folder == FallbackFolder {
		return true
	}
	for _, c := range media.Categories {
		if folder == c {
			return true
		}
	}
	return false
}

// Validate checks the invariants the runtime lookups rely on. It is meant
// for tests and the build-time check; lookups never branch on it.
func (r *Registry) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	// developer <-> folder must be one-to-one
	folderOf := make(map[string]string)
	ownerOf := make(map[string]string)
	for _, d := range r.developers {
		switch {
		case d.Name == "" || d.Folder == "":
			add("developer %q has an empty name or folder", d.Name)
			continue
		case reservedFolder(d.Folder):
			add("developer %q uses reserved folder %q", d.Name, d.Folder)
		}
		if prev, ok := folderOf[d.Name]; ok && prev != d.Folder {
			add("developer %q declared with folders %q and %q", d.Name, prev, d.Folder)
		}
		if prev, ok := ownerOf[d.Folder]; ok && prev != d.Name {
			add("folder %q shared by developers %q and %q", d.Folder, prev, d.Name)
		}
		folderOf[d.Name] = d.Folder
		ownerOf[d.Folder] = d.Name
	}

	for _, title := range r.duplicateImages {
		add("duplicate image entry for title %q", title)
	}
	for _, title := range r.duplicateVideos {
		add("title %q is assigned more than one video", title)
	}

	fileFolder := make(map[string]string)
	for _, e := range r.entries {
		if strings.TrimSpace(e.PropertyTitle) == "" {
			add("image entry with an empty title")
		}
		want, known := folderOf[e.Developer]
		switch {
		case !known:
			add("%q: developer %q is not declared", e.PropertyTitle, e.Developer)
		case e.Folder != want:
			add("%q: folder %q does not belong to developer %q (expected %q)", e.PropertyTitle, e.Folder, e.Developer, want)
		}
		if len(e.Images) == 0 {
			add("%q: no images", e.PropertyTitle)
		}
		for _, img := range e.Images {
			clean := media.CleanFilename(img)
			if !media.IsPlainFilename(clean) {
				add("%q: invalid image filename %q", e.PropertyTitle, img)
				continue
			}
			if prev, ok := fileFolder[clean]; ok && prev != e.Folder {
				add("image %q appears in folders %q and %q", clean, prev, e.Folder)
			}
			fileFolder[clean] = e.Folder
		}
	}

	for _, v := range r.videoList {
		if v.EmbedID == "" {
			add("video %q has no embed id", v.Title)
		}
		if len(v.Properties) == 0 {
			add("video %q is not assigned to any title", v.Title)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &ConfigError{Problems: problems}
}
