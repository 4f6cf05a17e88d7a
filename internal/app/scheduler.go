package app

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/simp-lee/blogapi/internal/config"
)

// Scheduler runs periodic background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler creates a scheduler using standard five-field cron specs
// (descriptors such as "@every 1m" are accepted). Every job is wrapped with
// panic recovery and execution logging, and a run is skipped while the
// previous run of the same job is still in progress.
func NewScheduler(base *slog.Logger) *Scheduler {
	logger := config.ComponentLogger(base, "cron")
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger{logger: logger})),
		logger: logger,
	}
}

// AddJob registers job to run on spec.
func (s *Scheduler) AddJob(spec string, job cron.Job) error {
	name := jobName(job)
	wrapped := cron.NewChain(
		recoverJob(s.logger, name),
		logJob(s.logger, name),
		cron.SkipIfStillRunning(cronLogger{logger: s.logger}),
	).Then(job)

	if _, err := s.cron.AddJob(spec, wrapped); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job registered", slog.String("job_name", name), slog.String("schedule", spec))
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling new runs and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func logJob(logger *slog.Logger, name string) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			jobLogger := logger.With(
				slog.String("job_name", name),
				slog.String("execution_id", uuid.New().String()),
			)

			start := time.Now()
			jobLogger.Debug("job started")
			j.Run()
			jobLogger.Info("job finished", slog.Duration("duration", time.Since(start)))
		})
	}
}

func recoverJob(logger *slog.Logger, name string) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("job panicked",
						slog.String("job_name", name),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
				}
			}()
			j.Run()
		})
	}
}

func jobName(j cron.Job) string {
	if named, ok := j.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", j)
}

// cronLogger adapts slog to cron.Logger. cron reports routine activity at
// info level, which is demoted to debug here.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
