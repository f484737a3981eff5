// Package cleanup purges closed leads once their retention period ends.
package cleanup

import (
	"fmt"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Service handles physical deletion of closed leads
type Service struct {
	db     *gorm.DB
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now, logger: logging.Component("cleanup")}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // days a closed lead is kept
	MaxDeletionCount int  // abort the run when more rows would be deleted
	DryRun           bool // only report what would be deleted
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    180,
		MaxDeletionCount: 5000,
		DryRun:           false,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	ErrorCount   int       `json:"error_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	DeletedIDs   []string  `json:"deleted_ids"`
	Errors       []string  `json:"errors,omitempty"`
}

// candidate is one lead row eligible for deletion
type candidate struct {
	entityType string
	id         string
	summary    string
	closedAt   time.Time
	model      any
}

func (s *Service) cutoff(retentionDays int) time.Time {
	return s.now().AddDate(0, 0, -retentionDays)
}

// findExpired returns archived inquiries and completed or cancelled
// bookings closed before the retention cutoff
func (s *Service) findExpired(retentionDays int) ([]candidate, error) {
	cutoff := s.cutoff(retentionDays)

	var inquiries []models.ContactInquiry
	if err := s.db.Where("status = ? AND closed_at < ?", models.InquiryStatusArchived, cutoff).
		Order("closed_at ASC").Find(&inquiries).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired inquiries: %w", err)
	}

	var bookings []models.DemoBooking
	if err := s.db.Where("status IN ? AND closed_at < ?",
		[]models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled}, cutoff).
		Order("closed_at ASC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired bookings: %w", err)
	}

	candidates := make([]candidate, 0, len(inquiries)+len(bookings))
	for i := range inquiries {
		inq := &inquiries[i]
		candidates = append(candidates, candidate{
			entityType: models.EntityContactInquiry,
			id:         inq.ID,
			summary:    fmt.Sprintf("%s <%s>: %s", inq.Name, inq.Email, inq.Subject),
			closedAt:   *inq.ClosedAt,
			model:      inq,
		})
	}
	for i := range bookings {
		b := &bookings[i]
		candidates = append(candidates, candidate{
			entityType: models.EntityDemoBooking,
			id:         b.ID,
			summary:    fmt.Sprintf("%s <%s>: %s on %s (%s)", b.Name, b.Email, b.Service, b.PreferredDate.Format("2006-01-02"), b.Status),
			closedAt:   *b.ClosedAt,
			model:      b,
		})
	}

	s.logger.Info().
		Int("inquiries", len(inquiries)).
		Int("bookings", len(bookings)).
		Str("cutoff", cutoff.Format("2006-01-02")).
		Msg("found expired leads")
	return candidates, nil
}

// PhysicallyDelete deletes expired leads, writing a DeleteLog row for each
// in the same transaction
func (s *Service) PhysicallyDelete(config CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     config.DryRun,
		ExecutedAt: s.now(),
	}

	expired, err := s.findExpired(config.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expired)
	if result.TargetCount == 0 {
		return result, nil
	}

	// Safety check: abort if too many rows would be deleted
	if config.MaxDeletionCount > 0 && result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d leads exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	for _, c := range expired {
		if config.DryRun {
			s.logger.Info().Str("entity", c.entityType).Str("id", c.id).Msg("[DRY-RUN] would delete")
			result.DeletedIDs = append(result.DeletedIDs, c.id)
			result.DeletedCount++
			continue
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			deleteLog := models.DeleteLog{
				EntityType: c.entityType,
				EntityID:   c.id,
				Summary:    c.summary,
				ClosedAt:   c.closedAt,
				Reason:     models.DeleteReasonExpired,
			}
			if err := tx.Create(&deleteLog).Error; err != nil {
				return fmt.Errorf("failed to create delete log: %w", err)
			}
			if err := tx.Delete(c.model).Error; err != nil {
				return fmt.Errorf("failed to delete: %w", err)
			}
			return nil
		})
		if err != nil {
			msg := fmt.Sprintf("%s %s: %v", c.entityType, c.id, err)
			s.logger.Error().Err(err).Str("entity", c.entityType).Str("id", c.id).Msg("cleanup failed")
			result.Errors = append(result.Errors, msg)
			result.ErrorCount++
			continue
		}

		result.DeletedIDs = append(result.DeletedIDs, c.id)
		result.DeletedCount++
	}

	s.logger.Info().
		Int("deleted", result.DeletedCount).
		Int("target", result.TargetCount).
		Int("errors", result.ErrorCount).
		Bool("dry_run", config.DryRun).
		Msg("cleanup completed")

	return result, nil
}

// DeleteStats summarizes the delete log
type DeleteStats struct {
	TotalDeleted    int64            `json:"total_deleted"`
	ByReason        map[string]int64 `json:"by_reason"`
	ByEntity        map[string]int64 `json:"by_entity"`
	DeletedLast30   int64            `json:"deleted_last_30_days"`
	ExpiredReadyNow int              `json:"expired_ready_for_deletion"`
	RetentionDays   int              `json:"retention_days"`
}

// GetDeleteStats returns statistics about deleted leads
func (s *Service) GetDeleteStats(retentionDays int) (*DeleteStats, error) {
	stats := &DeleteStats{
		ByReason:      make(map[string]int64),
		ByEntity:      make(map[string]int64),
		RetentionDays: retentionDays,
	}

	if err := s.db.Model(&models.DeleteLog{}).Count(&stats.TotalDeleted).Error; err != nil {
		return nil, err
	}

	var groups []struct {
		Label string
		Count int64
	}
	if err := s.db.Model(&models.DeleteLog{}).
		Select("reason as label, count(*) as count").
		Group("reason").
		Scan(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		stats.ByReason[g.Label] = g.Count
	}

	groups = nil
	if err := s.db.Model(&models.DeleteLog{}).
		Select("entity_type as label, count(*) as count").
		Group("entity_type").
		Scan(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		stats.ByEntity[g.Label] = g.Count
	}

	if err := s.db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", s.now().AddDate(0, 0, -30)).
		Count(&stats.DeletedLast30).Error; err != nil {
		return nil, err
	}

	expired, err := s.findExpired(retentionDays)
	if err != nil {
		return nil, err
	}
	stats.ExpiredReadyNow = len(expired)

	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
