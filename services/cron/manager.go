package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/model"
)

var ErrUnknownJob = errors.New("unknown cron job")

// RunLog persists one row per job run
type RunLog interface {
	Begin(ctx context.Context, job string) (uint, error)
	Finish(ctx context.Context, id uint, status model.CronJobStatus, message, errMsg string, took time.Duration) error
}

// Job is a named unit of scheduled work. Run returns a short summary for
// the run log.
type Job struct {
	Name     string
	Schedule string // six fields, seconds first
	Timeout  time.Duration
	Run      func(ctx context.Context) (string, error)
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	runs RunLog
	log  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]Job
}

// NewCronManager creates a new cron manager with seconds precision. A job
// still running when its next tick arrives is skipped.
func NewCronManager(runs RunLog, logger zerolog.Logger) *CronManager {
	log := logger.With().Str("component", "cron").Logger()
	adapter := cronLogger{log: log}
	return &CronManager{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		runs: runs,
		log:  log,
		jobs: make(map[string]Job),
	}
}

// Register schedules job
func (m *CronManager) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("invalid cron job %q", job.Name)
	}
	if job.Timeout <= 0 {
		job.Timeout = 5 * time.Minute
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.jobs[job.Name]; dup {
		return fmt.Errorf("cron job %q registered twice", job.Name)
	}
	if _, err := m.cron.AddFunc(job.Schedule, func() {
		_ = m.execute(context.Background(), job)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", job.Name, err)
	}
	m.jobs[job.Name] = job
	return nil
}

// Start starts the scheduler
func (m *CronManager) Start() {
	m.cron.Start()
	m.log.Info().Int("jobs", len(m.jobs)).Msg("cron jobs started")
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	<-m.cron.Stop().Done()
	m.log.Info().Msg("cron jobs stopped")
}

// RunNow runs a registered job immediately, outside the schedule
func (m *CronManager) RunNow(ctx context.Context, name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return m.execute(ctx, job)
}

func (m *CronManager) execute(ctx context.Context, job Job) error {
	start := time.Now()
	m.log.Info().Str("job", job.Name).Msg("starting job")

	id, logErr := m.runs.Begin(ctx, job.Name)
	if logErr != nil {
		m.log.Warn().Err(logErr).Str("job", job.Name).Msg("failed to record job start")
	}

	runCtx, cancel := context.WithTimeout(ctx, job.Timeout)
	message, err := job.Run(runCtx)
	cancel()
	took := time.Since(start)

	status, errMsg := model.CronJobCompleted, ""
	if err != nil {
		status, errMsg = model.CronJobFailed, err.Error()
		m.log.Error().Err(err).Str("job", job.Name).Dur("took", took).Msg("job failed")
	} else {
		m.log.Info().Str("job", job.Name).Dur("took", took).Str("result", message).Msg("job completed")
	}

	if logErr == nil {
		if err := m.runs.Finish(context.WithoutCancel(ctx), id, status, message, errMsg, took); err != nil {
			m.log.Warn().Err(err).Str("job", job.Name).Msg("failed to record job result")
		}
	}
	return err
}

// cronLogger routes robfig/cron's internal logging into zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
