package scheduler

import (
	"context"
	"fmt"

	"github.com/dlomaxw/shinebebright-sub001/internal/catalog"
	"github.com/dlomaxw/shinebebright-sub001/internal/cleanup"
	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/media"
)

// Job names
const (
	JobThumbnails = "thumbnails"
	JobReindex    = "search_reindex"
	JobCleanup    = "lead_cleanup"
)

// ThumbnailJob regenerates thumbnails for the registry folders and the
// generic category folders
func ThumbnailJob(cfg config.MediaConfig, gen *media.ThumbnailGenerator, folders []string) Job {
	all := append(append([]string{}, folders...), media.Categories...)
	return Job{
		Name:    JobThumbnails,
		RunTime: cfg.DailyRunTime,
		Enabled: cfg.DailyRunEnabled,
		Run: func(ctx context.Context) error {
			result, err := gen.Generate(ctx, all)
			if err != nil {
				return err
			}
			if result.Failed > 0 || len(result.Conflicts) > 0 {
				return fmt.Errorf("%d thumbnails failed, %d filename conflicts", result.Failed, len(result.Conflicts))
			}
			return nil
		},
	}
}

// ReindexJob rebuilds the search index from the database
func ReindexJob(cfg config.SearchConfig, cat *catalog.Service, index catalog.Rebuilder) Job {
	return Job{
		Name:    JobReindex,
		RunTime: cfg.ReindexRunTime,
		Enabled: cfg.Enabled && cfg.DailyReindex,
		Run: func(ctx context.Context) error {
			_, err := cat.Reindex(ctx, index)
			return err
		},
	}
}

// CleanupJob purges closed leads past retention
func CleanupJob(cfg config.LeadsConfig, svc *cleanup.Service) Job {
	return Job{
		Name:    JobCleanup,
		RunTime: cfg.CleanupRunTime,
		Enabled: cfg.CleanupEnabled,
		Run: func(ctx context.Context) error {
			result, err := svc.PhysicallyDelete(cleanup.CleanupConfig{
				RetentionDays:    cfg.RetentionDays,
				MaxDeletionCount: cfg.MaxDeletionCount,
			})
			if err != nil {
				return err
			}
			if result.ErrorCount > 0 {
				return fmt.Errorf("%d of %d deletions failed", result.ErrorCount, result.TargetCount)
			}
			return nil
		},
	}
}
