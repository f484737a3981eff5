package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/catalog"
	"github.com/dlomaxw/shinebebright-sub001/internal/cleanup"
	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/history"
	"github.com/dlomaxw/shinebebright-sub001/internal/linkpreview"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/notify"
	"github.com/dlomaxw/shinebebright-sub001/internal/registry"
	"github.com/dlomaxw/shinebebright-sub001/internal/scheduler"
	"github.com/dlomaxw/shinebebright-sub001/internal/schema"
	"github.com/dlomaxw/shinebebright-sub001/internal/search"
	"github.com/gin-gonic/gin"
)

// SearchIndex is the search client as seen by the admin handler
type SearchIndex interface {
	search.Searcher
	catalog.Rebuilder
}

// AdminDeps wires the admin handler. Index, Scheduler, Outbox and Previews
// are optional; their endpoints answer 503 when unset.
type AdminDeps struct {
	DB        *database.GormDB
	Catalog   *catalog.Service
	Index     SearchIndex
	Scheduler *scheduler.Scheduler
	Outbox    *notify.OutboxWorker
	Previews  *linkpreview.Fetcher
	Leads     config.LeadsConfig
}

// AdminHandler handles back-office requests
type AdminHandler struct {
	db        *database.GormDB
	catalog   *catalog.Service
	index     SearchIndex
	scheduler *scheduler.Scheduler
	outbox    *notify.OutboxWorker
	previews  *linkpreview.Fetcher
	leads     config.LeadsConfig

	history *history.Service
	cleanup *cleanup.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(deps AdminDeps) *AdminHandler {
	return &AdminHandler{
		db:        deps.DB,
		catalog:   deps.Catalog,
		index:     deps.Index,
		scheduler: deps.Scheduler,
		outbox:    deps.Outbox,
		previews:  deps.Previews,
		leads:     deps.Leads,
		history:   history.NewService(deps.DB.DB()),
		cleanup:   cleanup.NewService(deps.DB.DB()),
	}
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not enabled"})
}

// GetStats returns dashboard statistics. Sections that fail are logged and
// left out.
func (h *AdminHandler) GetStats(c *gin.Context) {
	logger := logging.FromGin(c)
	stats := make(map[string]interface{})

	var rows []struct {
		Status string
		Count  int64
	}
	if err := h.db.DB().Model(&models.Property{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		respondError(c, err)
		return
	}
	byStatus := map[string]int64{
		string(models.PropertyStatusAvailable): 0,
		string(models.PropertyStatusReserved):  0,
		string(models.PropertyStatusSold):      0,
	}
	var total int64
	for _, r := range rows {
		byStatus[r.Status] = r.Count
		total += r.Count
	}
	stats["properties"] = gin.H{"by_status": byStatus, "total": total}

	if changes, err := h.history.CountSince(time.Now().AddDate(0, 0, -7)); err != nil {
		logger.Warn().Err(err).Msg("failed to count recent changes")
	} else {
		stats["changes"] = gin.H{"last_7_days": changes}
	}

	leads := gin.H{}
	if _, n, err := h.db.ListInquiries(string(models.InquiryStatusNew), 1, 0); err == nil {
		leads["new_inquiries"] = n
	}
	if _, n, err := h.db.ListBookings(string(models.BookingStatusPending), 1, 0); err == nil {
		leads["pending_bookings"] = n
	}
	if _, n, err := h.db.ListSubscribers(true, 1, 0); err == nil {
		leads["active_subscribers"] = n
	}
	stats["leads"] = leads

	if deletions, err := h.cleanup.GetDeleteStats(h.leads.RetentionDays); err != nil {
		logger.Warn().Err(err).Msg("failed to get delete stats")
	} else {
		stats["deletions"] = deletions
	}

	if h.outbox != nil {
		if queue, err := h.outbox.GetQueueStats(); err != nil {
			logger.Warn().Err(err).Msg("failed to get outbox stats")
		} else {
			stats["outbox"] = queue
		}
	}

	if runs, err := h.db.ListJobRuns(); err != nil {
		logger.Warn().Err(err).Msg("failed to list job runs")
	} else {
		stats["jobs"] = runs
	}

	if h.previews != nil {
		stats["link_preview"] = h.previews.BreakerStatus()
	}

	c.JSON(http.StatusOK, stats)
}

// RunCleanup purges closed leads past their retention period
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int  `json:"retention_days"`
		MaxDeletionCount int  `json:"max_deletion_count"`
		DryRun           bool `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := cleanup.DefaultCleanupConfig()
	if h.leads.RetentionDays > 0 {
		cfg.RetentionDays = h.leads.RetentionDays
	}
	if h.leads.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = h.leads.MaxDeletionCount
	}
	if req.RetentionDays > 0 {
		cfg.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = req.MaxDeletionCount
	}
	cfg.DryRun = req.DryRun

	logger := logging.FromGin(c)
	logger.Info().
		Int("retention_days", cfg.RetentionDays).
		Int("max_deletion_count", cfg.MaxDeletionCount).
		Bool("dry_run", cfg.DryRun).
		Msg("running lead cleanup")

	result, err := h.cleanup.PhysicallyDelete(cfg)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info().Int("deleted", result.DeletedCount).Int("targets", result.TargetCount).Msg("lead cleanup finished")
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	logs, err := h.cleanup.GetRecentDeleteLogs(queryInt(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// GetPropertyHistory returns the change log of one listing
func (h *AdminHandler) GetPropertyHistory(c *gin.Context) {
	propertyID := c.Param("id")
	changes, err := h.history.GetPropertyHistory(propertyID, queryInt(c, "limit", 30))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"property_id": propertyID,
		"changes":     changes,
		"count":       len(changes),
	})
}

func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	changes, err := h.history.GetRecentChanges(queryInt(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": changes, "count": len(changes)})
}

// RunThumbnails starts the thumbnail job in the background
func (h *AdminHandler) RunThumbnails(c *gin.Context) {
	if h.scheduler == nil {
		unavailable(c, "scheduler")
		return
	}
	switch err := h.scheduler.RunNowAsync(scheduler.JobThumbnails); {
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		respondError(c, err)
	default:
		c.JSON(http.StatusAccepted, gin.H{"job": scheduler.JobThumbnails, "status": "running"})
	}
}

// ValidateRegistry reports every inconsistency in the media tables
func (h *AdminHandler) ValidateRegistry(c *gin.Context) {
	err := h.catalog.Registry().Validate()
	var cerr *registry.ConfigError
	switch {
	case errors.As(err, &cerr):
		c.JSON(http.StatusOK, gin.H{"valid": false, "problems": cerr.Problems})
	case err != nil:
		respondError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"valid": true, "problems": []string{}})
	}
}

type bindingView struct {
	Title      string `json:"title"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Folder     string `json:"folder,omitempty"`
	Video      string `json:"video_embed_id,omitempty"`
}

type matchView struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// BindRegistry resolves every registry title to a row id and stores the
// bindings. Any unmatched or ambiguous title fails the whole run; with
// ?dry_run=true nothing is stored.
func (h *AdminHandler) BindRegistry(c *gin.Context) {
	bindings, err := h.catalog.Registry().Bind(h.db.TitleIndex())
	if err != nil {
		var (
			uerr *registry.UnmatchedTitlesError
			cerr *registry.ConfigError
		)
		switch {
		case errors.As(err, &uerr):
			ambiguous := make(map[string][]matchView, len(uerr.Ambiguous))
			for title, matches := range uerr.Ambiguous {
				for _, m := range matches {
					ambiguous[title] = append(ambiguous[title], matchView{EntityType: m.EntityType, EntityID: m.EntityID})
				}
			}
			c.JSON(http.StatusConflict, gin.H{
				"error":     uerr.Error(),
				"unmatched": uerr.Unmatched,
				"ambiguous": ambiguous,
			})
		case errors.As(err, &cerr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cerr.Error(), "problems": cerr.Problems})
		default:
			respondError(c, err)
		}
		return
	}

	dryRun := false
	if v := queryBool(c, "dry_run"); v != nil {
		dryRun = *v
	}
	if !dryRun {
		if err := h.db.SaveBindings(bindings); err != nil {
			respondError(c, err)
			return
		}
		logging.FromGin(c).Info().Int("bindings", len(bindings)).Msg("media bindings stored")
	}

	views := make([]bindingView, 0, len(bindings))
	for _, b := range bindings {
		views = append(views, bindingView{
			Title:      b.Title,
			EntityType: b.EntityType,
			EntityID:   b.EntityID,
			Folder:     b.Folder,
			Video:      b.VideoEmbedID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"bindings": views, "count": len(views), "dry_run": dryRun})
}

// PreviewLink fetches the preview card of a press article
func (h *AdminHandler) PreviewLink(c *gin.Context) {
	if h.previews == nil {
		unavailable(c, "link preview")
		return
	}
	var in schema.LinkPreviewInput
	if !bindJSON(c, &in) {
		return
	}

	preview, err := h.previews.Fetch(c.Request.Context(), in.URL)
	var serr *linkpreview.StatusError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, preview)
	case errors.Is(err, linkpreview.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, linkpreview.ErrBreakerOpen):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &serr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "upstream_status": serr.StatusCode})
	default:
		logging.FromGin(c).Warn().Err(err).Str("url", in.URL).Msg("link preview failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// Reindex rebuilds the search index from the database
func (h *AdminHandler) Reindex(c *gin.Context) {
	if h.index == nil {
		unavailable(c, "search")
		return
	}
	stats, err := h.catalog.Reindex(c.Request.Context(), h.index)
	if err != nil {
		respondError(c, err)
		return
	}
	logging.FromGin(c).Info().Int("properties", stats.Properties).Int("news", stats.News).Msg("search index rebuilt")
	c.JSON(http.StatusOK, stats)
}
