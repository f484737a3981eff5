package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

var thumbnailExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ThumbnailGenerator fills <root>/thumbnails from the source folders.
// The thumbnail folder is flat, so a filename present in two source
// folders is reported as a conflict, never written, and any thumbnail
// left from an earlier run under that name is removed.
type ThumbnailGenerator struct {
	root    string
	width   int
	height  int
	workers int
}

// ThumbnailResult summarizes a generation run
type ThumbnailResult struct {
	Scanned   int64         `json:"scanned"`
	Generated int64         `json:"generated"`
	Skipped   int64         `json:"skipped"`
	Failed    int64         `json:"failed"`
	Removed   int64         `json:"removed"`
	Conflicts []string      `json:"conflicts,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
}

func NewThumbnailGenerator(root string, width, height, workers int) *ThumbnailGenerator {
	if width <= 0 {
		width = DefaultPlaceholderWidth
	}
	if height <= 0 {
		height = DefaultPlaceholderHeight
	}
	if workers <= 0 {
		workers = 1
	}
	return &ThumbnailGenerator{root: root, width: width, height: height, workers: workers}
}

type thumbnailJob struct {
	src string
	dst string
}

// Generate creates missing or stale thumbnails for every image in folders.
func (g *ThumbnailGenerator) Generate(ctx context.Context, folders []string) (*ThumbnailResult, error) {
	start := time.Now()
	result := &ThumbnailResult{}

	jobs, conflicts, err := g.collect(folders)
	if err != nil {
		return nil, err
	}
	result.Conflicts = conflicts
	result.Scanned = int64(len(jobs))

	if err := os.MkdirAll(filepath.Join(g.root, ThumbnailFolder), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail folder: %w", err)
	}

	for _, name := range conflicts {
		dst := filepath.Join(g.root, ThumbnailFolder, name)
		err := os.Remove(dst)
		switch {
		case err == nil:
			result.Removed++
			log.Warn().Str("file", name).Msg("removed thumbnail for conflicting filename")
		case !os.IsNotExist(err):
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("failed to remove %s: %v", dst, err))
		}
	}

	var (
		generated, skipped, failed atomic.Int64
		mu                         sync.Mutex
	)

	pool := pond.NewPool(g.workers, pond.WithContext(ctx))
	for _, job := range jobs {
		pool.Submit(func() {
			if fresh(job.src, job.dst) {
				skipped.Add(1)
				return
			}
			if err := g.render(job.src, job.dst); err != nil {
				failed.Add(1)
				mu.Lock()
				result.Errors = append(result.Errors, err.Error())
				mu.Unlock()
				log.Warn().Err(err).Str("source", job.src).Msg("thumbnail failed")
				return
			}
			generated.Add(1)
		})
	}
	pool.StopAndWait()

	result.Generated = generated.Load()
	result.Skipped = skipped.Load()
	result.Failed += failed.Load()
	result.Duration = time.Since(start)

	log.Info().
		Int64("scanned", result.Scanned).
		Int64("generated", result.Generated).
		Int64("skipped", result.Skipped).
		Int64("failed", result.Failed).
		Int64("removed", result.Removed).
		Int("conflicts", len(result.Conflicts)).
		Dur("duration", result.Duration).
		Msg("thumbnail run complete")

	return result, ctx.Err()
}

// collect lists the source images. Folders that do not exist yet are
// skipped: a developer folder may be registered before its photos arrive.
func (g *ThumbnailGenerator) collect(folders []string) ([]thumbnailJob, []string, error) {
	owners := make(map[string]string)
	conflicted := make(map[string]bool)
	var jobs []thumbnailJob

	for _, folder := range folders {
		if folder == "" || folder == ThumbnailFolder {
			continue
		}
		dir := filepath.Join(g.root, folder)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !thumbnailExtensions[strings.ToLower(filepath.Ext(name))] {
				continue
			}
			if owner, seen := owners[name]; seen {
				if owner != folder {
					conflicted[name] = true
				}
				continue
			}
			owners[name] = folder
			jobs = append(jobs, thumbnailJob{
				src: filepath.Join(dir, name),
				dst: filepath.Join(g.root, ThumbnailFolder, name),
			})
		}
	}

	if len(conflicted) == 0 {
		return jobs, nil, nil
	}

	kept := jobs[:0]
	for _, job := range jobs {
		if !conflicted[filepath.Base(job.src)] {
			kept = append(kept, job)
		}
	}
	conflicts := make([]string, 0, len(conflicted))
	for name := range conflicted {
		conflicts = append(conflicts, name)
	}
	sort.Strings(conflicts)
	return kept, conflicts, nil
}

func (g *ThumbnailGenerator) render(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	thumb := imaging.Fill(img, g.width, g.height, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(82)); err != nil {
		return fmt.Errorf("failed to save %s: %w", dst, err)
	}
	return nil
}

// fresh reports whether dst exists and is not older than src
func fresh(src, dst string) bool {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	return !dstInfo.ModTime().Before(srcInfo.ModTime())
}
