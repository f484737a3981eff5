package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// OutboxWorker drains notification_outbox on a fixed interval
type OutboxWorker struct {
	db           *gorm.DB
	mailer       Mailer
	pollInterval time.Duration
	batchSize    int
	workers      int
	now          func() time.Time
	logger       zerolog.Logger

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}
}

func NewOutboxWorker(db *gorm.DB, mailer Mailer, cfg config.EmailConfig) *OutboxWorker {
	w := &OutboxWorker{
		db:           db,
		mailer:       mailer,
		pollInterval: cfg.GetPollInterval(),
		batchSize:    cfg.BatchSize,
		workers:      cfg.Workers,
		now:          time.Now,
		logger:       logging.Component("outbox"),
	}
	if w.batchSize <= 0 {
		w.batchSize = 10
	}
	if w.workers <= 0 {
		w.workers = 1
	}
	return w
}

// Start starts the worker loop
func (w *OutboxWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		w.logger.Warn().Msg("already running")
		return
	}
	w.isRunning = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.logger.Info().Dur("poll_interval", w.pollInterval).Int("workers", w.workers).Msg("started")

	go w.run()
}

// Stop stops the loop and waits for the current batch
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	close(w.stopChan)
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info().Msg("stopped")
}

func (w *OutboxWorker) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-w.stopChan
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				w.logger.Error().Err(err).Msg("batch failed")
			}
		}
	}
}

// ProcessBatch sends due notifications and returns how many were sent
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	batch, err := w.claim()
	if err != nil || len(batch) == 0 {
		return 0, err
	}

	var (
		mu   sync.Mutex
		sent int
	)
	pool := pond.NewPool(w.workers, pond.WithContext(ctx))
	for i := range batch {
		n := &batch[i]
		pool.Submit(func() {
			err := w.mailer.Send(ctx, Message{
				To:      strings.Split(n.Recipients, ","),
				ReplyTo: n.ReplyTo,
				Subject: n.Subject,
				HTML:    n.HTMLBody,
			})
			w.finish(n, err)
			if err == nil {
				mu.Lock()
				sent++
				mu.Unlock()
			}
		})
	}
	pool.StopAndWait()

	w.logger.Debug().Int("claimed", len(batch)).Int("sent", sent).Msg("batch done")
	return sent, nil
}

// claim moves due rows to processing so a second worker cannot pick them
func (w *OutboxWorker) claim() ([]models.Notification, error) {
	var batch []models.Notification
	now := w.now()
	err := w.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("status = ?", models.NotificationPending).
			Or("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", models.NotificationFailed, now).
			Order("created_at ASC").
			Order("id ASC").
			Limit(w.batchSize).
			Find(&batch).Error
		if err != nil || len(batch) == 0 {
			return err
		}

		ids := make([]int64, len(batch))
		for i := range batch {
			ids[i] = batch[i].ID
			batch[i].Status = models.NotificationProcessing
		}
		return tx.Model(&models.Notification{}).
			Where("id IN ?", ids).
			Update("status", models.NotificationProcessing).Error
	})
	return batch, err
}

func (w *OutboxWorker) finish(n *models.Notification, sendErr error) {
	n.Attempts++
	now := w.now()

	switch {
	case sendErr == nil:
		n.Status = models.NotificationSent
		n.SentAt = &now
		n.LastError = ""
		n.NextRetryAt = nil
	case n.Attempts >= models.MaxSendAttempts:
		n.Status = models.NotificationPermanentFail
		n.LastError = sendErr.Error()
		n.NextRetryAt = nil
		w.logger.Error().Err(sendErr).Int64("id", n.ID).Int("attempts", n.Attempts).Msg("giving up on notification")
	default:
		next := now.Add(models.NextRetryDelay(n.Attempts - 1))
		n.Status = models.NotificationFailed
		n.LastError = sendErr.Error()
		n.NextRetryAt = &next
		w.logger.Warn().Err(sendErr).Int64("id", n.ID).Time("next_retry_at", next).Msg("send failed, will retry")
	}

	if err := w.db.Save(n).Error; err != nil {
		w.logger.Error().Err(err).Int64("id", n.ID).Msg("failed to save notification status")
	}
}

// RequeueStuck returns rows left in processing (after a crash) to pending
func (w *OutboxWorker) RequeueStuck(olderThan time.Duration) (int64, error) {
	result := w.db.Model(&models.Notification{}).
		Where("status = ? AND updated_at < ?", models.NotificationProcessing, w.now().Add(-olderThan)).
		Update("status", models.NotificationPending)
	return result.RowsAffected, result.Error
}

// GetQueueStats returns counts per status
func (w *OutboxWorker) GetQueueStats() (map[string]interface{}, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := w.db.Model(&models.Notification{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := map[string]interface{}{
		models.NotificationPending:       int64(0),
		models.NotificationProcessing:    int64(0),
		models.NotificationSent:          int64(0),
		models.NotificationFailed:        int64(0),
		models.NotificationPermanentFail: int64(0),
	}
	for _, r := range rows {
		stats[r.Status] = r.Count
	}
	w.mu.Lock()
	stats["is_running"] = w.isRunning
	w.mu.Unlock()
	return stats, nil
}
