package database

import (
	"errors"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"gorm.io/gorm"
)

// BeginJobRun marks the named job as running
func (gdb *GormDB) BeginJobRun(name string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		run, err := loadJobRun(tx, name)
		if err != nil {
			return err
		}
		run.Begin(time.Now())
		return tx.Save(run).Error
	})
}

// FinishJobRun records the outcome of the named job
func (gdb *GormDB) FinishJobRun(name string, runErr error) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		run, err := loadJobRun(tx, name)
		if err != nil {
			return err
		}
		run.Finish(time.Now(), runErr)
		return tx.Save(run).Error
	})
}

// ListJobRuns returns the state of every job that has run at least once
func (gdb *GormDB) ListJobRuns() ([]models.JobRun, error) {
	var runs []models.JobRun
	err := gdb.db.Order("name ASC").Find(&runs).Error
	return runs, err
}

func loadJobRun(tx *gorm.DB, name string) (*models.JobRun, error) {
	var run models.JobRun
	err := tx.Where("name = ?", name).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.JobRun{Name: name, LastAttempt: time.Now()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
