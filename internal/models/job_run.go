package models

import "time"

// JobRun tracks the last outcome of a scheduled job
type JobRun struct {
	Name         string     `gorm:"type:varchar(50);primaryKey" json:"name"`
	IsRunning    bool       `gorm:"not null;default:false" json:"is_running"`
	LastAttempt  time.Time  `gorm:"not null" json:"last_attempt"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastError    string     `gorm:"type:text" json:"last_error,omitempty"`
	FailureCount int        `gorm:"not null;default:0" json:"failure_count"`
	SuccessCount int        `gorm:"not null;default:0" json:"success_count"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (JobRun) TableName() string {
	return "job_runs"
}

// Begin marks the start of a run
func (j *JobRun) Begin(now time.Time) {
	j.IsRunning = true
	j.LastAttempt = now
}

// Finish records the outcome of a run
func (j *JobRun) Finish(now time.Time, err error) {
	j.IsRunning = false
	if err != nil {
		j.FailureCount++
		j.LastError = err.Error()
		return
	}
	j.SuccessCount++
	j.LastSuccess = &now
	j.LastError = ""
}
