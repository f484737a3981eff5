// Package scheduler runs the daily maintenance jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownJob     = errors.New("unknown job")
	ErrAlreadyRunning = errors.New("job is already running")
)

// JobFunc is the body of a job
type JobFunc func(ctx context.Context) error

// Job is a named task run daily at RunTime ("HH:MM") when Enabled
type Job struct {
	Name    string
	RunTime string
	Enabled bool
	Run     JobFunc
}

// RunRecorder persists the outcome of each run
type RunRecorder interface {
	BeginJobRun(name string) error
	FinishJobRun(name string, runErr error) error
}

// Scheduler handles the daily jobs and manual triggers
type Scheduler struct {
	cron     *cron.Cron
	recorder RunRecorder
	logger   zerolog.Logger

	mu        sync.Mutex
	jobs      map[string]Job
	running   map[string]bool
	isRunning bool
	inflight  sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler creates a new scheduler. recorder may be nil.
func NewScheduler(recorder RunRecorder) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(),
		recorder: recorder,
		logger:   logging.Component("scheduler"),
		jobs:     make(map[string]Job),
		running:  make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register adds a job. Disabled jobs can still be triggered with RunNow.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a function")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q registered twice", job.Name)
	}
	s.jobs[job.Name] = job

	if !job.Enabled {
		s.logger.Info().Str("job", job.Name).Msg("daily run disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(job.RunTime)
	name := job.Name
	if _, err := s.cron.AddFunc(cronSpec, func() {
		if err := s.run(name); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Error().Err(err).Str("job", name).Msg("scheduled run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.logger.Info().Str("job", name).Str("run_time", job.RunTime).Str("cron", cronSpec).Msg("job scheduled")
	return nil
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("started")
}

// Stop stops the cron loop, cancels running jobs and waits for them
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()
	if wasRunning {
		<-s.cron.Stop().Done()
	}
	s.inflight.Wait()
	if wasRunning {
		s.logger.Info().Msg("stopped")
	}
}

// RunNow immediately executes the named job
func (s *Scheduler) RunNow(name string) error {
	s.logger.Info().Str("job", name).Msg("manual trigger")
	return s.run(name)
}

// RunNowAsync starts the named job in the background. It fails only if the
// job is unknown or already running.
func (s *Scheduler) RunNowAsync(name string) error {
	s.mu.Lock()
	_, ok := s.jobs[name]
	busy := s.running[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if busy {
		return ErrAlreadyRunning
	}

	go func() {
		if err := s.RunNow(name); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Error().Err(err).Str("job", name).Msg("manual run failed")
		}
	}()
	return nil
}

// Jobs lists the registered job names
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) run(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if s.running[name] {
		s.mu.Unlock()
		s.logger.Warn().Str("job", name).Msg("previous run still in progress, skipping")
		return ErrAlreadyRunning
	}
	s.running[name] = true
	s.inflight.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, name)
		s.mu.Unlock()
		s.inflight.Done()
	}()

	if s.recorder != nil {
		if err := s.recorder.BeginJobRun(name); err != nil {
			s.logger.Warn().Err(err).Str("job", name).Msg("failed to record job start")
		}
	}

	start := time.Now()
	err := job.Run(s.ctx)

	if s.recorder != nil {
		if recErr := s.recorder.FinishJobRun(name, err); recErr != nil {
			s.logger.Warn().Err(recErr).Str("job", name).Msg("failed to record job outcome")
		}
	}

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Error().Err(err)
	}
	event.Str("job", name).Dur("duration", time.Since(start)).Msg("job finished")
	return err
}

// parseDailyRunTime converts HH:MM format to a cron expression
// Example: "02:00" -> "0 2 * * *"
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.logger.Warn().Str("run_time", timeStr).Msg("failed to parse run time, using default 02:00")
	return "0 2 * * *"
}
